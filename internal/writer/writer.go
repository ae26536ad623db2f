// Package writer serializes catalog artifacts to a storage sink.
package writer

import (
	"context"
	"encoding/json"
	"fmt"

	"feedsync/internal/models"
	"feedsync/pkg/metadata"
)

// Writer marshals each artifact to JSON and stores it through a Sink.
type Writer struct {
	sink   Sink
	pretty bool
}

// New creates a writer. pretty selects indented JSON.
func New(sink Sink, pretty bool) *Writer {
	return &Writer{sink: sink, pretty: pretty}
}

// WriteCatalog writes the full list, sample, search index, every category
// bucket and finally the manifest. It stops at the first failure.
func (w *Writer) WriteCatalog(ctx context.Context, cat models.Catalog) ([]metadata.Artifact, error) {
	type artifact struct {
		value    any
		name     string
		products int
	}

	plan := []artifact{
		{name: models.FileAll, value: cat.Products, products: len(cat.Products)},
		{name: models.FileSample, value: cat.Sample, products: len(cat.Sample)},
		{name: models.FileSearchIndex, value: cat.SearchIndex, products: len(cat.SearchIndex)},
	}

	for _, b := range cat.Buckets {
		plan = append(plan, artifact{name: b.File(), value: b.Products, products: len(b.Products)})
	}

	plan = append(plan, artifact{name: models.FileManifest, value: cat.Manifest})

	written := make([]metadata.Artifact, 0, len(plan))

	for _, a := range plan {
		meta, err := w.WriteJSON(ctx, a.name, a.value, a.products)
		if err != nil {
			return written, err
		}

		written = append(written, meta)
	}

	return written, nil
}

// WriteJSON stores one value under name.
func (w *Writer) WriteJSON(ctx context.Context, name string, value any, products int) (metadata.Artifact, error) {
	data, err := w.marshal(value)
	if err != nil {
		return metadata.Artifact{}, fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	if err := w.sink.Put(ctx, name, data); err != nil {
		return metadata.Artifact{}, fmt.Errorf("failed to write %s: %w", name, err)
	}

	return metadata.Describe(name, data, products), nil
}

// Location reports where an artifact name ends up.
func (w *Writer) Location(name string) string {
	return w.sink.Location(name)
}

func (w *Writer) marshal(value any) ([]byte, error) {
	if w.pretty {
		return json.MarshalIndent(value, "", "  ")
	}

	return json.Marshal(value)
}
