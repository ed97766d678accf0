package export

import (
	"stacks/internal/fileutil"
	"stacks/internal/library"
)

// JSON writes the whole collection to a single JSON file.
// Returns true if the file was written, false if it was skipped.
func JSON(books []library.Book, filePath string, overwrite bool) (bool, error) {
	return fileutil.WriteJSONFile(books, filePath, overwrite)
}
