package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// LibraryFile is the path of the CSV collection file
	LibraryFile string
	// CoversDir is the directory holding cached cover images
	CoversDir string
	// AutoConfirm skips the interactive confirmation gate when adding books
	AutoConfirm bool
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("library.file", "library_collection.csv")
	viper.SetDefault("library.coversdir", "covers")
	viper.SetDefault("cache.dbfile", "./cache.db")
	viper.SetDefault("cache.ttl", "720h")

	// Get values from viper
	LibraryFile = viper.GetString("library.file")
	CoversDir = viper.GetString("library.coversdir")
}

// SetLibraryFile sets the collection file path
func SetLibraryFile(path string) {
	LibraryFile = path
}

// SetCoversDir sets the covers directory
func SetCoversDir(dir string) {
	CoversDir = dir
}

// SetAutoConfirm sets the AutoConfirm flag
func SetAutoConfirm(yes bool) {
	AutoConfirm = yes
}
