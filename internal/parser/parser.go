// Package parser turns an RSS product feed into raw item records.
package parser

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"feedsync/internal/models"
)

// Feed structure errors.
var (
	ErrMalformedFeed = errors.New("malformed feed")
	ErrNoItems       = fmt.Errorf("%w: channel contains no items", ErrMalformedFeed)
)

// Element path of a feed item.
const (
	elemRSS     = "rss"
	elemChannel = "channel"
	elemItem    = "item"
)

// Parser reads RSS 2.0 feeds.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses feed text.
func (p *Parser) ParseString(feed string) ([]models.RawItem, error) {
	return p.Parse(strings.NewReader(feed))
}

// Parse reads rss/channel/item entries. Each item becomes a map of child
// element name to its trimmed text; attributes are ignored and the first
// occurrence of a repeated field wins.
func (p *Parser) Parse(r io.Reader) ([]models.RawItem, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.CharsetReader = charset.NewReaderLabel

	var (
		stack      []string
		items      []models.RawItem
		current    models.RawItem
		field      string
		text       strings.Builder
		sawChannel bool
	)

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedFeed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := qualifiedName(t.Name)
			stack = append(stack, name)

			switch {
			case pathIs(stack, elemRSS, elemChannel):
				sawChannel = true
			case pathIs(stack, elemRSS, elemChannel, elemItem):
				current = models.RawItem{}
			case current != nil && len(stack) == 4:
				field = name
				text.Reset()
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unexpected closing tag </%s>", ErrMalformedFeed, qualifiedName(t.Name))
			}

			switch {
			case current != nil && len(stack) == 4 && field != "":
				if _, seen := current[field]; !seen {
					current[field] = strings.TrimSpace(text.String())
				}

				field = ""
			case pathIs(stack, elemRSS, elemChannel, elemItem):
				items = append(items, current)
				current = nil
			}

			stack = stack[:len(stack)-1]

		case xml.CharData:
			if field != "" {
				text.Write(t)
			}
		}
	}

	if !sawChannel {
		return nil, fmt.Errorf("%w: missing rss/channel", ErrMalformedFeed)
	}

	if len(items) == 0 {
		return nil, ErrNoItems
	}

	return items, nil
}

// qualifiedName keeps the literal namespace prefix, e.g. "g:price".
func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}

	return n.Space + ":" + n.Local
}

func pathIs(stack []string, path ...string) bool {
	if len(stack) != len(path) {
		return false
	}

	for i := range path {
		if stack[i] != path[i] {
			return false
		}
	}

	return true
}
