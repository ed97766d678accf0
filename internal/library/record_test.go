package library

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestNormalizeISBN(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain digits",
			input: "9780134685991",
			want:  "9780134685991",
		},
		{
			name:  "hyphenated",
			input: "978-0-13-468599-1",
			want:  "9780134685991",
		},
		{
			name:  "spaces",
			input: "978 0 13 468599 1",
			want:  "9780134685991",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "only separators",
			input:   "- -",
			wantErr: true,
		},
		{
			name:    "letters",
			input:   "97801346859ab",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeISBN(tc.input)
			if tc.wantErr {
				assert.IsError(t, err, ErrInvalidISBN)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeISBNEquivalence(t *testing.T) {
	a, err := NormalizeISBN("978-0-13-468599-1")
	assert.NoError(t, err)
	b, err := NormalizeISBN("9780134685991")
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMergePreservesUserFields(t *testing.T) {
	existing := Book{
		ISBN:      "9780134685991",
		Title:     "Old Title",
		Author:    "Old Author",
		CoverPath: "covers/9780134685991.jpg",
		DateAdded: "2023-01-01 10:00:00",
		Read:      true,
	}
	incoming := Book{
		ISBN:          "9780134685991",
		Title:         "New Title",
		Author:        "New Author",
		Publisher:     "New Publisher",
		PublishedDate: "2018",
		DateAdded:     "2025-06-01 12:00:00",
		Read:          false,
	}

	merged := Merge(existing, incoming)

	assert.Equal(t, "New Title", merged.Title)
	assert.Equal(t, "New Author", merged.Author)
	assert.Equal(t, "New Publisher", merged.Publisher)
	assert.Equal(t, "2018", merged.PublishedDate)
	assert.Equal(t, "2023-01-01 10:00:00", merged.DateAdded)
	assert.True(t, merged.Read)
	// incoming has no cover, so the existing one survives
	assert.Equal(t, "covers/9780134685991.jpg", merged.CoverPath)
}

func TestMergeTakesIncomingCover(t *testing.T) {
	existing := Book{ISBN: "1", CoverPath: "covers/old.jpg"}
	incoming := Book{ISBN: "1", CoverPath: "covers/new.jpg"}

	merged := Merge(existing, incoming)
	assert.Equal(t, "covers/new.jpg", merged.CoverPath)
}

func TestMergeIsPure(t *testing.T) {
	existing := Book{ISBN: "1", Title: "A", Read: true}
	incoming := Book{ISBN: "1", Title: "B"}

	_ = Merge(existing, incoming)

	assert.Equal(t, "A", existing.Title)
	assert.Equal(t, "B", incoming.Title)
	assert.False(t, incoming.Read)
}

func TestBookMatches(t *testing.T) {
	b := Book{
		ISBN:      "9780134685991",
		Title:     "The Go Programming Language",
		Author:    "Alan Donovan",
		Publisher: "Addison-Wesley",
	}

	assert.True(t, b.Matches("go programming"))
	assert.True(t, b.Matches("DONOVAN"))
	assert.True(t, b.Matches("0134685"))
	assert.True(t, b.Matches("addison"))
	assert.False(t, b.Matches("rust"))
}
