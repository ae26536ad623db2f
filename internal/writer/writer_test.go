package writer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsync/internal/models"
)

type memorySink struct {
	files  map[string][]byte
	order  []string
	failOn string
}

func newMemorySink() *memorySink {
	return &memorySink{files: map[string][]byte{}}
}

func (m *memorySink) Put(_ context.Context, name string, data []byte) error {
	if name == m.failOn {
		return errors.New("disk full")
	}

	m.files[name] = data
	m.order = append(m.order, name)

	return nil
}

func (m *memorySink) Location(name string) string {
	return "mem://" + name
}

func testCatalog() models.Catalog {
	luxury := models.Product{ID: "1", Name: "Wagon", Description: "Big", ImageURL: "/placeholder.svg", URL: "#", Price: "6000"}
	other := models.Product{ID: "2", Name: "N/A", Description: "No description available.", ImageURL: "/placeholder.svg", URL: "#", Price: "N/A"}

	return models.Catalog{
		Products:    []models.Product{luxury, other},
		Sample:      []models.Product{luxury, other},
		SearchIndex: []models.SearchIndexEntry{{ID: "1", Name: "Wagon", Description: "Big"}, {ID: "2", Name: "N/A", Description: "No description available."}},
		Buckets: []models.CategoryBucket{
			{Name: "luxury", Products: []models.Product{luxury}},
			{Name: "other", Products: []models.Product{other}},
		},
		Manifest: models.Manifest{
			LastUpdated:   models.ManifestTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)),
			TotalProducts: 2,
			Categories: []models.ManifestCategory{
				{Name: "luxury", Count: 1, File: "luxury-products.json"},
				{Name: "other", Count: 1, File: "other-products.json"},
			},
			Files: models.ManifestFiles{All: models.FileAll, Sample: models.FileSample, SearchIndex: models.FileSearchIndex},
		},
	}
}

func TestWriter_WriteCatalog(t *testing.T) {
	sink := newMemorySink()

	artifacts, err := New(sink, false).WriteCatalog(context.Background(), testCatalog())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"products.json",
		"sample-products.json",
		"search-index.json",
		"luxury-products.json",
		"other-products.json",
		"index.json",
	}, sink.order, "manifest is written last")

	require.Len(t, artifacts, 6)
	assert.Equal(t, 2, artifacts[0].Products)
	assert.Equal(t, 1, artifacts[3].Products)
	assert.Equal(t, 0, artifacts[5].Products)

	for _, a := range artifacts {
		require.NoError(t, a.Verify(sink.files[a.Name]), a.Name)
		assert.Equal(t, len(sink.files[a.Name]), a.Bytes)
	}

	var products []models.Product
	require.NoError(t, json.Unmarshal(sink.files["products.json"], &products))
	assert.Equal(t, "1", products[0].ID)

	assert.JSONEq(t, `{
		"lastUpdated": "2026-01-02T03:04:05.000Z",
		"totalProducts": 2,
		"categories": [
			{"name": "luxury", "count": 1, "file": "luxury-products.json"},
			{"name": "other", "count": 1, "file": "other-products.json"}
		],
		"files": {"all": "products.json", "sample": "sample-products.json", "searchIndex": "search-index.json"}
	}`, string(sink.files["index.json"]))

	assert.JSONEq(t, `[
		{"id": "1", "name": "Wagon", "description": "Big"},
		{"id": "2", "name": "N/A", "description": "No description available."}
	]`, string(sink.files["search-index.json"]))
}

func TestWriter_PrettyPrint(t *testing.T) {
	sink := newMemorySink()

	_, err := New(sink, true).WriteJSON(context.Background(), "x.json", map[string]int{"a": 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(sink.files["x.json"]))

	_, err = New(sink, false).WriteJSON(context.Background(), "y.json", map[string]int{"a": 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(sink.files["y.json"]))
}

func TestWriter_StopsOnFailure(t *testing.T) {
	sink := newMemorySink()
	sink.failOn = "search-index.json"

	artifacts, err := New(sink, false).WriteCatalog(context.Background(), testCatalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search-index.json")
	assert.Len(t, artifacts, 2)
	assert.NotContains(t, sink.files, "index.json")
}

func TestWriter_MarshalFailure(t *testing.T) {
	_, err := New(newMemorySink(), false).WriteJSON(context.Background(), "bad.json", make(chan int), 0)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to marshal bad.json"))
}

func TestLocalSink_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public", "feeds")
	sink := NewLocalSink(dir)

	artifacts, err := New(sink, false).WriteCatalog(context.Background(), testCatalog())
	require.NoError(t, err)
	require.Len(t, artifacts, 6)

	for _, a := range artifacts {
		data, readErr := os.ReadFile(filepath.Join(dir, a.Name))
		require.NoError(t, readErr)
		require.NoError(t, a.Verify(data))
	}

	assert.Equal(t, filepath.Join(dir, "index.json"), sink.Location("index.json"))
}

func TestLocalSink_UnwritableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	err := NewLocalSink(filepath.Join(file, "out")).Put(context.Background(), "products.json", []byte("[]"))
	assert.Error(t, err)
}

func TestGCSSink_Location(t *testing.T) {
	assert.Equal(t, "gs://catalog/products.json", NewGCSSinkWithClient(nil, "catalog", "").Location("products.json"))
	assert.Equal(t, "gs://catalog/feeds/cz/index.json", NewGCSSinkWithClient(nil, "catalog", "feeds/cz").Location("index.json"))
}
