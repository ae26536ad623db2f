// Package normalizer maps raw feed items to canonical product records.
package normalizer

import "feedsync/internal/models"

// Result is the outcome of normalizing a whole feed.
type Result struct {
	Products    []models.Product
	InvalidURLs int
}

// Processor normalizes every item of a feed in order.
type Processor struct {
	transformer *Transformer
}

// NewProcessor creates a new processor instance.
func NewProcessor(opts Options) *Processor {
	return &Processor{
		transformer: NewTransformer(opts),
	}
}

// Process transforms raw items into products, keeping feed order.
func (p *Processor) Process(items []models.RawItem) Result {
	before := p.transformer.InvalidURLs()

	products := make([]models.Product, 0, len(items))
	for i, item := range items {
		products = append(products, p.transformer.Normalize(item, i))
	}

	return Result{
		Products:    products,
		InvalidURLs: p.transformer.InvalidURLs() - before,
	}
}
