// Package textsource provides practice passages.
package textsource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/speedtype/internal/model"
)

// ErrEmptyText is returned when a passage is blank after trimming.
var ErrEmptyText = errors.New("text is empty")

// Source supplies random practice passages.
type Source interface {
	FetchRandomText(ctx context.Context) (model.Quote, error)
}

// NewQuote builds a Quote with its rune length filled in.
func NewQuote(content, author, source string) model.Quote {
	return model.Quote{
		Content: content,
		Author:  author,
		Length:  utf8.RuneCountInString(content),
		Source:  source,
	}
}

// Custom turns caller-provided text into a passage, trimming surrounding whitespace.
func Custom(raw string) (model.Quote, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return model.Quote{}, ErrEmptyText
	}
	return NewQuote(text, "", model.SourceCustom), nil
}

// FromFile reads a custom passage from path.
func FromFile(path string) (model.Quote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to read text file: %w", err)
	}
	return Custom(string(data))
}

// Fixed always returns the same passage.
type Fixed struct {
	Quote model.Quote
}

// FetchRandomText implements Source.
func (f Fixed) FetchRandomText(ctx context.Context) (model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return model.Quote{}, err
	}
	if f.Quote.Content == "" {
		return model.Quote{}, ErrEmptyText
	}
	return f.Quote, nil
}
