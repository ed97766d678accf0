package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestInitConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	InitConfig()

	assert.Equal(t, "library_collection.csv", LibraryFile)
	assert.Equal(t, "covers", CoversDir)
	assert.Equal(t, "720h", viper.GetString("cache.ttl"))
}

func TestInitConfigReadsViperValues(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("library.file", "/tmp/books.csv")
	viper.Set("library.coversdir", "/tmp/covers")

	InitConfig()

	assert.Equal(t, "/tmp/books.csv", LibraryFile)
	assert.Equal(t, "/tmp/covers", CoversDir)
}

func TestSetters(t *testing.T) {
	SetLibraryFile("x.csv")
	SetCoversDir("y")
	SetAutoConfirm(true)

	assert.Equal(t, "x.csv", LibraryFile)
	assert.Equal(t, "y", CoversDir)
	assert.True(t, AutoConfirm)
}
