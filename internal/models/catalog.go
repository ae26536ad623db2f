package models

import "time"

// Category names, one per price band plus the fallback for unparseable prices.
const (
	CategoryBudget   = "budget"
	CategoryStandard = "standard"
	CategoryPremium  = "premium"
	CategoryLuxury   = "luxury"
	CategoryOther    = "other"
)

// Fixed artifact file names.
const (
	FileAll         = "products.json"
	FileSample      = "sample-products.json"
	FileSearchIndex = "search-index.json"
	FileManifest    = "index.json"
)

// CategoryFile returns the artifact name for a category bucket.
func CategoryFile(name string) string {
	return name + "-products.json"
}

// CategoryBucket groups products of one price band in sorted order.
type CategoryBucket struct {
	Name     string
	Products []Product
}

// File returns the artifact name this bucket is written to.
func (b CategoryBucket) File() string {
	return CategoryFile(b.Name)
}

// Manifest describes every artifact produced by a run.
type Manifest struct {
	LastUpdated   ManifestTime       `json:"lastUpdated"`
	TotalProducts int                `json:"totalProducts"`
	Categories    []ManifestCategory `json:"categories"`
	Files         ManifestFiles      `json:"files"`
}

// ManifestCategory is one non-empty category bucket.
type ManifestCategory struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	File  string `json:"file"`
}

// ManifestFiles names the primary artifacts.
type ManifestFiles struct {
	All         string `json:"all"`
	Sample      string `json:"sample"`
	SearchIndex string `json:"searchIndex"`
}

// ManifestTimeLayout is RFC 3339 in UTC with millisecond precision.
const ManifestTimeLayout = "2006-01-02T15:04:05.000Z"

// ManifestTime marshals as a UTC timestamp with millisecond precision.
type ManifestTime time.Time

// MarshalText implements encoding.TextMarshaler.
func (t ManifestTime) MarshalText() ([]byte, error) {
	return []byte(time.Time(t).UTC().Format(ManifestTimeLayout)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ManifestTime) UnmarshalText(b []byte) error {
	parsed, err := time.Parse(time.RFC3339Nano, string(b))
	if err != nil {
		return err
	}

	*t = ManifestTime(parsed)

	return nil
}

// Catalog is the complete partitioned result of one run.
type Catalog struct {
	Products    []Product
	Sample      []Product
	SearchIndex []SearchIndexEntry
	Buckets     []CategoryBucket
	Manifest    Manifest
}
