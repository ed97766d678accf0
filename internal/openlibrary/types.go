package openlibrary

// Edition mirrors the subset of the OpenLibrary "jscmd=data" response that
// maps onto a collection record. Missing fields decode to their zero values;
// absence of data is not an error.
type Edition struct {
	Title       string `json:"title"`
	PublishDate string `json:"publish_date"`
	Authors     []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
	Cover struct {
		Small  string `json:"small"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"cover"`
}

// CoverURL returns the best available cover image URL, or "" when
// OpenLibrary has none for this edition.
func (e *Edition) CoverURL() string {
	if e.Cover.Medium != "" {
		return e.Cover.Medium
	}
	if e.Cover.Large != "" {
		return e.Cover.Large
	}
	return e.Cover.Small
}
