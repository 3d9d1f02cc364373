package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyOutput is returned when the provider reply carries no text.
	ErrEmptyOutput = errors.New("empty response from generation API")

	// ErrNoImage is returned when an image reply carries no image payload.
	ErrNoImage = errors.New("no image data found in generation response")
)

// InvalidOutputError is returned when the provider reply does not parse or
// validate as a structured article.
type InvalidOutputError struct {
	Reason string
	Raw    string
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("invalid article format: %s", e.Reason)
}
