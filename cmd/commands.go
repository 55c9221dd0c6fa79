// file: cmd/commands.go
// version: 1.1.0
// guid: 2d9c4e7a-6f1b-4c8e-a3d5-9b7f0e2c4a16

package cmd

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/oovz/calibre-changpei/internal/config"
	"github.com/oovz/calibre-changpei/internal/metadata"
	"github.com/oovz/calibre-changpei/internal/server"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	bookID     string
	bookTitle  string
	bookAuthor string
	plainText  bool
)

// startServer runs srv until shutdown.
var startServer = func(srv *server.Server, cfg config.ServerConfig) error {
	return srv.Start(cfg)
}

// identifyCmd represents the identify command
var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Print candidate metadata records",
	Long: `Look up a book by Changpei id, or search by title when no id is given.
Records are printed in upstream order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bookID == "" && bookTitle == "" {
			return fmt.Errorf("either --id or --title is required")
		}

		q := metadata.NewQueue[metadata.CandidateRecord]()
		req := identifyRequest(bookID, bookTitle, bookAuthor, config.AppConfig.Timeout)
		newSource().Identify(cmd.Context(), newLogger(cmd), q, req)

		records := q.Drain()
		if records == nil {
			records = []metadata.CandidateRecord{}
		}
		if plainText {
			for i := range records {
				records[i].Comments = metadata.PlainText(records[i].Comments)
			}
		}
		return writeOutput(cmd.OutOrStdout(), config.AppConfig.Output, records)
	},
}

// coverCmd represents the cover command
var coverCmd = &cobra.Command{
	Use:   "cover",
	Short: "Download a cover image",
	Long: `Download the cover of a book and save it as DIR/covers/{id}.{ext}.
When only --title is given the first search result is used. Existing covers
are left untouched; with --id they are detected before anything is downloaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bookID == "" && bookTitle == "" {
			return fmt.Errorf("either --id or --title is required")
		}

		dir := config.AppConfig.CoverDir
		if bookID != "" {
			if existing := metadata.CoverPathForBook(dir, bookID); existing != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Cover already exists: %s\n", existing)
				return nil
			}
		}

		covers := metadata.NewQueue[metadata.Cover]()
		req := identifyRequest(bookID, bookTitle, bookAuthor, config.AppConfig.Timeout)
		newSource().DownloadCover(cmd.Context(), newLogger(cmd), covers, req)
		got := covers.Drain()
		if len(got) == 0 {
			if bookID == "" {
				return fmt.Errorf("no cover found for title %q", bookTitle)
			}
			return fmt.Errorf("no cover found for book %s", bookID)
		}
		id, data := got[0].BookID, got[0].Data

		if existing := metadata.CoverPathForBook(dir, id); existing != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Cover already exists: %s\n", existing)
			return nil
		}

		bar := progressbar.NewOptions64(int64(len(data)),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("writing cover"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(65*time.Millisecond),
		)
		path, err := metadata.SaveCover(data, dir, id, bar)
		if err != nil {
			return fmt.Errorf("failed to save cover: %w", err)
		}
		_ = bar.Finish()

		fmt.Fprintf(cmd.OutOrStdout(), "Saved cover: %s\n", path)
		return nil
	},
}

// urlCmd represents the url command
var urlCmd = &cobra.Command{
	Use:   "url ID",
	Short: "Print the canonical book page URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, url, ok := newSource().GetBookURL(map[string]string{metadata.ProviderID: args[0]})
		if !ok {
			return fmt.Errorf("invalid book id %q", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

// idFromURLCmd represents the id-from-url command
var idFromURLCmd = &cobra.Command{
	Use:   "id-from-url URL",
	Short: "Extract a book id from a book page URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, ok := newSource().IDFromURL(args[0])
		if !ok {
			return fmt.Errorf("no book id found in %s", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the source descriptor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeOutput(cmd.OutOrStdout(), config.AppConfig.Output, newSource().Descriptor())
	},
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serve identify and cover lookups over HTTP, with Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		srv := server.NewServer(newSource(), logger, config.AppConfig.Timeout)
		// Reloads rewrite AppConfig from the watcher goroutine; listener
		// settings are read once, before watching starts.
		serverCfg := config.AppConfig.Server

		if config.Watch(func(e fsnotify.Event) {
			srv.SetTimeout(config.AppConfig.Timeout)
			logger.Info("config reloaded", "file", e.Name, "timeout", config.AppConfig.Timeout)
		}) {
			logger.Info("watching config file", "file", viper.ConfigFileUsed())
		}

		return startServer(srv, serverCfg)
	},
}

func init() {
	for _, c := range []*cobra.Command{identifyCmd, coverCmd} {
		c.Flags().StringVar(&bookID, "id", "", "Changpei book id")
		c.Flags().StringVar(&bookTitle, "title", "", "book title to search for")
		c.Flags().StringVar(&bookAuthor, "author", "", "book author")
	}
	identifyCmd.Flags().BoolVar(&plainText, "plain", false, "convert HTML comments to plain text")

	coverCmd.Flags().String("dir", ".", "directory that receives covers/{id}.{ext}")
	viper.BindPFlag("cover_dir", coverCmd.Flags().Lookup("dir"))

	serveCmd.Flags().String("host", "localhost", "host to bind the web server to")
	serveCmd.Flags().String("port", "8080", "port to run the web server on")
	serveCmd.Flags().Duration("read-timeout", 15*time.Second, "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().Duration("write-timeout", 60*time.Second, "write timeout (e.g. 15s, 1m)")
	serveCmd.Flags().Duration("idle-timeout", 60*time.Second, "idle timeout (e.g. 60s, 2m)")
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.read_timeout", serveCmd.Flags().Lookup("read-timeout"))
	viper.BindPFlag("server.write_timeout", serveCmd.Flags().Lookup("write-timeout"))
	viper.BindPFlag("server.idle_timeout", serveCmd.Flags().Lookup("idle-timeout"))
}
