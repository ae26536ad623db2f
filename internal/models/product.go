// Package models defines the records passed between pipeline stages.
package models

// RawItem is one feed entry as found in the source, keyed by element name.
// Vendor-prefixed names keep their prefix, e.g. "g:price".
type RawItem map[string]string

// Get returns the trimmed value of a field, or "" when absent.
func (r RawItem) Get(field string) string {
	return r[field]
}

// Product is the canonical record written to every artifact.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	URL         string `json:"url"`
	Price       string `json:"price"`
}

// SearchIndexEntry is the reduced view of a Product used for client-side search.
type SearchIndexEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
