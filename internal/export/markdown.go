// Package export writes collection snapshots into secondary formats:
// markdown notes, JSON, and a SQLite database. Exports are read-only views
// of the collection; the CSV file stays the source of truth.
package export

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"stacks/internal/fileutil"
	"stacks/internal/library"
)

// Markdown writes one note per book into directory, YAML frontmatter plus a
// small body. Existing notes are skipped unless overwrite is set.
// Returns the number of notes written.
func Markdown(books []library.Book, directory string, overwrite bool) (int, error) {
	written := 0
	for _, b := range books {
		ok, err := writeBookNote(b, directory, overwrite)
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
	}
	return written, nil
}

func writeBookNote(b library.Book, directory string, overwrite bool) (bool, error) {
	title := b.Title
	if title == "" {
		// Books without a title still get a note, keyed by ISBN
		title = b.ISBN
	}
	filePath := fileutil.NotePath(title, directory)

	fm := map[string]any{
		"isbn":       b.ISBN,
		"title":      b.Title,
		"type":       "book",
		"date_added": b.DateAdded,
		"read":       b.Read,
	}
	if b.Author != "" {
		fm["author"] = b.Author
	}
	if b.Publisher != "" {
		fm["publisher"] = b.Publisher
	}
	if b.PublishedDate != "" {
		fm["published"] = b.PublishedDate
	}
	if b.CoverPath != "" {
		fm["cover"] = b.CoverPath
	}

	fmBytes, err := yaml.Marshal(fm)
	if err != nil {
		return false, fmt.Errorf("failed to marshal frontmatter for %s: %w", b.ISBN, err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(fmBytes)
	sb.WriteString("---\n\n")
	sb.WriteString(noteBody(b))

	wrote, err := fileutil.WriteFileWithOverwrite(filePath, []byte(sb.String()), 0644, overwrite)
	if err != nil {
		return false, fmt.Errorf("failed to write note for %s: %w", b.ISBN, err)
	}
	if !wrote {
		slog.Debug("Note already exists, skipping", "path", filePath)
	}
	return wrote, nil
}

func noteBody(b library.Book) string {
	var sb strings.Builder

	heading := b.Title
	if heading == "" {
		heading = b.ISBN
	}
	sb.WriteString("# " + heading + "\n\n")

	if b.Author != "" {
		sb.WriteString(fmt.Sprintf("by %s\n\n", b.Author))
	}
	if b.CoverPath != "" {
		sb.WriteString(fmt.Sprintf("![cover](%s)\n", b.CoverPath))
	}

	return sb.String()
}
