package catalog

import (
	"time"

	"feedsync/internal/models"
	"feedsync/pkg/utils"
)

// Options controls the derived views.
type Options struct {
	Now              func() time.Time
	SampleSize       int
	DescriptionLimit int
}

// Build derives the sample, search index, category buckets and manifest
// from an already sorted product list. The product list itself is kept as is.
func Build(sorted []models.Product, opts Options) models.Catalog {
	if sorted == nil {
		sorted = []models.Product{}
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	buckets := Buckets(sorted)

	return models.Catalog{
		Products:    sorted,
		Sample:      Sample(sorted, opts.SampleSize),
		SearchIndex: SearchIndex(sorted, opts.DescriptionLimit),
		Buckets:     buckets,
		Manifest:    NewManifest(now(), len(sorted), buckets),
	}
}

// Sample returns the first n products, or all of them if there are fewer.
func Sample(products []models.Product, n int) []models.Product {
	if n > len(products) {
		n = len(products)
	}

	if n < 0 {
		n = 0
	}

	sample := make([]models.Product, n)
	copy(sample, products)

	return sample
}

// SearchIndex builds one entry per product with the description cut to limit characters.
func SearchIndex(products []models.Product, limit int) []models.SearchIndexEntry {
	strs := utils.NewStringHelper()

	index := make([]models.SearchIndexEntry, 0, len(products))
	for _, p := range products {
		index = append(index, models.SearchIndexEntry{
			ID:          p.ID,
			Name:        p.Name,
			Description: strs.TruncateRunes(p.Description, limit),
		})
	}

	return index
}

// Buckets groups products by price band in one pass. Buckets appear in the
// order their first member was seen and keep the input order; empty bands
// are omitted.
func Buckets(products []models.Product) []models.CategoryBucket {
	var buckets []models.CategoryBucket

	position := make(map[string]int)

	for _, p := range products {
		name := Category(p.Price)

		i, ok := position[name]
		if !ok {
			i = len(buckets)
			position[name] = i
			buckets = append(buckets, models.CategoryBucket{Name: name})
		}

		buckets[i].Products = append(buckets[i].Products, p)
	}

	return buckets
}

// NewManifest describes the artifacts produced for the given buckets.
func NewManifest(generated time.Time, total int, buckets []models.CategoryBucket) models.Manifest {
	categories := make([]models.ManifestCategory, 0, len(buckets))
	for _, b := range buckets {
		categories = append(categories, models.ManifestCategory{
			Name:  b.Name,
			Count: len(b.Products),
			File:  b.File(),
		})
	}

	return models.Manifest{
		LastUpdated:   models.ManifestTime(generated),
		TotalProducts: total,
		Categories:    categories,
		Files: models.ManifestFiles{
			All:         models.FileAll,
			Sample:      models.FileSample,
			SearchIndex: models.FileSearchIndex,
		},
	}
}
