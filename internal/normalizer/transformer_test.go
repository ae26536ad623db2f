package normalizer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedsync/internal/models"
)

type warning struct {
	msg  string
	args []any
}

func newTestTransformer(warnings *[]warning) *Transformer {
	return NewTransformer(Options{
		AffiliateParam: "aff_id",
		AffiliateID:    "123",
		Warn: func(msg string, args ...any) {
			*warnings = append(*warnings, warning{msg, args})
		},
	})
}

func TestCleanEntities(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Saddle&nbsp;pad", "Saddle pad"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"&lt;b&gt;bold&lt;/b&gt;", "<b>bold</b>"},
		{"&quot;XL&quot;", `"XL"`},
		{"&amp;lt;", "<"},
		{"&amp;amp;", "&amp;"},
		{"&nbsp;&nbsp;", "  "},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanEntities(tt.input), tt.input)
	}
}

func TestCleanEntities_CleanTextUnchanged(t *testing.T) {
	for _, s := range []string{"Plain text", "Žlutý kůň & co", "a < b > c", "50% off!"} {
		assert.Equal(t, s, CleanEntities(s))
		assert.Equal(t, CleanEntities(s), CleanEntities(CleanEntities(s)))
	}
}

func TestTransformer_AffiliateURL(t *testing.T) {
	var warnings []warning

	tr := newTestTransformer(&warnings)

	assert.Equal(t, "https://x.com/p?aff_id=123", tr.AffiliateURL("https://x.com/p"))
	assert.Equal(t, "https://x.com/p?x=1&aff_id=123", tr.AffiliateURL("https://x.com/p?x=1"))
	assert.Equal(t, "#", tr.AffiliateURL("#"))
	assert.Equal(t, "", tr.AffiliateURL(""))
	assert.Empty(t, warnings)
	assert.Equal(t, 0, tr.InvalidURLs())

	assert.Equal(t, "not a url", tr.AffiliateURL("not a url"))
	require.Len(t, warnings, 1)
	assert.Equal(t, "Invalid URL, using as is", warnings[0].msg)
	assert.Contains(t, warnings[0].args, "not a url")
	assert.Equal(t, 1, tr.InvalidURLs())
}

func TestTransformer_AffiliateURL_CustomParam(t *testing.T) {
	tr := NewTransformer(Options{AffiliateParam: "ref", AffiliateID: "shop-9"})

	assert.Equal(t, "https://x.com/p?ref=shop-9", tr.AffiliateURL("https://x.com/p"))
	assert.Equal(t, "bad link", tr.AffiliateURL("bad link"), "nil warning func is allowed")
}

func TestTransformer_Normalize(t *testing.T) {
	var warnings []warning

	tr := newTestTransformer(&warnings)

	item := models.RawItem{
		FieldID:          "SKU-1",
		FieldTitle:       "Saddle &amp; bridle",
		FieldDescription: "Leather&nbsp;saddle &lt;new&gt;",
		FieldImageLink:   "https://cdn.example.com/1.jpg",
		FieldLink:        "https://shop.example.com/p/1",
		FieldPrice:       "1 299,00 CZK",
	}

	got := tr.Normalize(item, 4)

	assert.Equal(t, models.Product{
		ID:          "SKU-1",
		Name:        "Saddle & bridle",
		Description: "Leather saddle <new>",
		ImageURL:    "https://cdn.example.com/1.jpg",
		URL:         "https://shop.example.com/p/1?aff_id=123",
		Price:       "1 299,00 CZK",
	}, got)
}

func TestTransformer_Normalize_Defaults(t *testing.T) {
	var warnings []warning

	tr := newTestTransformer(&warnings)

	for i, item := range []models.RawItem{{}, {FieldID: "", FieldTitle: "", FieldLink: ""}} {
		got := tr.Normalize(item, i)

		assert.Equal(t, models.Product{
			ID:          fmt.Sprintf("product-%d", i),
			Name:        DefaultName,
			Description: DefaultDescription,
			ImageURL:    DefaultImageURL,
			URL:         DefaultURL,
			Price:       DefaultPrice,
		}, got)
	}

	assert.Empty(t, warnings)
}

func TestTransformer_Normalize_EachFieldDefaultsIndependently(t *testing.T) {
	var warnings []warning

	tr := newTestTransformer(&warnings)

	full := models.RawItem{
		FieldID:          "id",
		FieldTitle:       "title",
		FieldDescription: "desc",
		FieldImageLink:   "img.jpg",
		FieldLink:        "#",
		FieldPrice:       "10",
	}

	check := func(field string, pick func(models.Product) string, want string) {
		t.Helper()

		item := models.RawItem{}
		for k, v := range full {
			if k != field {
				item[k] = v
			}
		}

		assert.Equal(t, want, pick(tr.Normalize(item, 9)), field)
	}

	check(FieldID, func(p models.Product) string { return p.ID }, "product-9")
	check(FieldTitle, func(p models.Product) string { return p.Name }, DefaultName)
	check(FieldDescription, func(p models.Product) string { return p.Description }, DefaultDescription)
	check(FieldImageLink, func(p models.Product) string { return p.ImageURL }, DefaultImageURL)
	check(FieldLink, func(p models.Product) string { return p.URL }, DefaultURL)
	check(FieldPrice, func(p models.Product) string { return p.Price }, DefaultPrice)
}

func TestTransformer_Normalize_InvalidLinkKept(t *testing.T) {
	var warnings []warning

	tr := newTestTransformer(&warnings)

	got := tr.Normalize(models.RawItem{FieldLink: "shop/p/1"}, 0)

	assert.Equal(t, "shop/p/1", got.URL)
	assert.Len(t, warnings, 1)
}
