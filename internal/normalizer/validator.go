package normalizer

import (
	"errors"
	"fmt"

	"feedsync/pkg/utils"
)

// ErrInvalidURL marks a destination link that is not a well-formed absolute URL.
var ErrInvalidURL = errors.New("invalid URL")

// Validator checks product links before they are augmented.
type Validator struct {
	http *utils.HTTPHelper
}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{http: utils.NewHTTPHelper()}
}

// ValidateURL returns an error wrapping ErrInvalidURL if raw is not absolute.
func (v *Validator) ValidateURL(raw string) error {
	if !v.http.IsValidURL(raw) {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	return nil
}
