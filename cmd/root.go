// file: cmd/root.go
// version: 2.0.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/oovz/calibre-changpei/internal/config"
	"github.com/oovz/calibre-changpei/internal/logging"
	"github.com/oovz/calibre-changpei/internal/metadata"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "changpei",
	Short: "Look up book metadata and covers on Changpei (gongzicp.com)",
	Long: `changpei queries the Changpei catalog web API by book id or title,
prints candidate metadata records, and downloads cover images.

It can also serve the same lookups over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.changpei.yaml)")
	rootCmd.PersistentFlags().String("base-url", metadata.DefaultBaseURL, "catalog API base URL")
	rootCmd.PersistentFlags().Duration("timeout", metadata.DefaultTimeout, "per-request timeout (e.g. 30s, 1m)")
	rootCmd.PersistentFlags().String("user-agent", "", "User-Agent sent to the catalog")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().String("format", "json", "output format: json or yaml")

	viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("user_agent", rootCmd.PersistentFlags().Lookup("user-agent"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("format"))

	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(coverCmd)
	rootCmd.AddCommand(urlCmd)
	rootCmd.AddCommand(idFromURLCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".changpei")
	}

	viper.SetEnvPrefix("changpei")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	config.InitConfig()
}

// newSource builds the catalog source from the loaded configuration.
func newSource() *metadata.Changpei {
	client := metadata.NewStdHTTPClient(&http.Client{}, config.AppConfig.UserAgent)
	return metadata.NewChangpei(client, config.AppConfig.BaseURL)
}

// newLogger builds the diagnostics logger for a command. Output goes to the
// command's error stream so stdout stays machine readable.
func newLogger(cmd *cobra.Command) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), config.AppConfig.LogLevel, config.AppConfig.LogFormat)
}

// identifyRequest collects the command line identifiers into a request.
func identifyRequest(id, title, author string, timeout time.Duration) metadata.IdentifyRequest {
	req := metadata.IdentifyRequest{
		Title:       title,
		Identifiers: map[string]string{},
		Timeout:     timeout,
	}
	if id != "" {
		req.Identifiers[metadata.ProviderID] = id
	}
	if author != "" {
		req.Authors = []string{author}
	}
	return req
}
