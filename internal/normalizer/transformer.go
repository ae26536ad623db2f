package normalizer

import (
	"strconv"
	"strings"

	"feedsync/internal/models"
)

// Raw feed fields read by the transformer.
const (
	FieldID          = "g:id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldImageLink   = "g:image_link"
	FieldLink        = "link"
	FieldPrice       = "g:price"
)

// Values used when the feed omits a field.
const (
	DefaultName        = "N/A"
	DefaultDescription = "No description available."
	DefaultImageURL    = "/placeholder.svg"
	DefaultURL         = "#"
	DefaultPrice       = "N/A"
	DefaultIDPrefix    = "product-"
)

// entityReplacements are applied one after another, in this order.
var entityReplacements = []struct{ entity, literal string }{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
}

// WarningFunc receives recoverable problems found while normalizing.
// Its signature matches (*logger.Logger).Warn.
type WarningFunc func(msg string, args ...any)

// Options configures the transformer.
type Options struct {
	Warn           WarningFunc
	AffiliateParam string
	AffiliateID    string
}

// Transformer maps raw feed items to products.
type Transformer struct {
	validator      *Validator
	warn           WarningFunc
	affiliateParam string
	affiliateID    string
	invalidURLs    int
}

// NewTransformer creates a new transformer instance.
func NewTransformer(opts Options) *Transformer {
	return &Transformer{
		validator:      NewValidator(),
		warn:           opts.Warn,
		affiliateParam: opts.AffiliateParam,
		affiliateID:    opts.AffiliateID,
	}
}

// CleanEntities decodes &nbsp;, &amp;, &lt;, &gt; and &quot; in that order.
func CleanEntities(text string) string {
	for _, r := range entityReplacements {
		text = strings.ReplaceAll(text, r.entity, r.literal)
	}

	return text
}

// AffiliateURL appends the affiliate parameter to a product link.
// Empty links and "#" are returned as is. Links that are not absolute URLs
// are reported through the warning func and returned unchanged.
func (t *Transformer) AffiliateURL(link string) string {
	if link == "" || link == DefaultURL {
		return link
	}

	if err := t.validator.ValidateURL(link); err != nil {
		t.invalidURLs++
		if t.warn != nil {
			t.warn("Invalid URL, using as is", "url", link, "error", err)
		}

		return link
	}

	separator := "?"
	if strings.Contains(link, "?") {
		separator = "&"
	}

	return link + separator + t.affiliateParam + "=" + t.affiliateID
}

// Normalize converts one raw item at position index into a product.
// Every field falls back to its default when missing or empty.
func (t *Transformer) Normalize(item models.RawItem, index int) models.Product {
	return models.Product{
		ID:          orDefault(item.Get(FieldID), DefaultIDPrefix+strconv.Itoa(index)),
		Name:        orDefault(CleanEntities(item.Get(FieldTitle)), DefaultName),
		Description: orDefault(CleanEntities(item.Get(FieldDescription)), DefaultDescription),
		ImageURL:    orDefault(item.Get(FieldImageLink), DefaultImageURL),
		URL:         orDefault(t.AffiliateURL(item.Get(FieldLink)), DefaultURL),
		Price:       orDefault(item.Get(FieldPrice), DefaultPrice),
	}
}

// InvalidURLs returns how many links failed validation so far.
func (t *Transformer) InvalidURLs() int {
	return t.invalidURLs
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
