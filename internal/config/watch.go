// file: internal/config/watch.go
// version: 1.0.0
// guid: 6c1e8a3f-2d5b-4f9e-b7a4-0d3c9e5f1a82

package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch re-reads AppConfig whenever the loaded config file changes and then
// calls onChange with the file event. It is a no-op when no file was loaded.
func Watch(onChange func(fsnotify.Event)) bool {
	if viper.ConfigFileUsed() == "" {
		return false
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		InitConfig()
		if onChange != nil {
			onChange(e)
		}
	})
	viper.WatchConfig()
	return true
}
