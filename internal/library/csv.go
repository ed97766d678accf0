package library

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column order of the collection file. CoverPath is not persisted: cover
// files are keyed by normalized ISBN in the covers directory, so the path is
// derivable and its absence is never an error.
var csvHeader = []string{
	"ISBN", "Title", "Author", "Publisher", "PublishedDate",
	"DateAdded", "ReadStatus",
}

func writeRecords(w io.Writer, books []Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, b := range books {
		row := []string{
			b.ISBN, b.Title, b.Author, b.Publisher, b.PublishedDate,
			b.DateAdded, strconv.FormatBool(b.Read),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %s: %w", b.ISBN, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func readRecords(r io.Reader) ([]Book, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var books []Book
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid record: %w", err)
		}

		read, err := parseReadStatus(row[6])
		if err != nil {
			return nil, fmt.Errorf("invalid read status %q for ISBN %s: %w", row[6], row[0], err)
		}

		books = append(books, Book{
			ISBN:          row[0],
			Title:         row[1],
			Author:        row[2],
			Publisher:     row[3],
			PublishedDate: row[4],
			DateAdded:     row[5],
			Read:          read,
		})
	}

	return books, nil
}

func validateHeader(header []string) error {
	if len(header) != len(csvHeader) {
		return fmt.Errorf("header has %d fields, want %d", len(header), len(csvHeader))
	}
	for i, want := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("unexpected header field %q, want %q", header[i], want)
		}
	}
	return nil
}

// parseReadStatus accepts Go boolean literals plus the Yes/No values written
// by older collection files.
func parseReadStatus(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes":
		return true, nil
	case "no", "":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(value))
}
