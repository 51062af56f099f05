package textsource

import (
	"context"
	"errors"

	"github.com/verte-zerg/speedtype/internal/generator"
	"github.com/verte-zerg/speedtype/internal/model"
)

var builtinPassages = []model.Quote{
	NewQuote("The quick brown fox jumps over the lazy dog. This pangram contains every letter of the alphabet and is commonly used for typing practice. It helps develop muscle memory and accuracy across all keys on the keyboard.", "Traditional", model.SourceFallback),
	NewQuote("To be or not to be, that is the question. Whether 'tis nobler in the mind to suffer the slings and arrows of outrageous fortune, or to take arms against a sea of troubles and by opposing end them.", "William Shakespeare", model.SourceFallback),
	NewQuote("It was the best of times, it was the worst of times, it was the age of wisdom, it was the age of foolishness. It was the epoch of belief, it was the epoch of incredulity, it was the season of Light.", "Charles Dickens", model.SourceFallback),
}

// BuiltinPassages returns a copy of the offline passages.
func BuiltinPassages() []model.Quote {
	out := make([]model.Quote, len(builtinPassages))
	copy(out, builtinPassages)
	return out
}

// Fallback serves from a primary source and substitutes a uniformly chosen
// built-in passage when the primary fails.
type Fallback struct {
	primary    Source
	passages   []model.Quote
	gen        *generator.Generator
	onFallback func(error)
}

// FallbackOption customizes a Fallback.
type FallbackOption func(*Fallback)

// WithPassages replaces the built-in passages.
func WithPassages(passages []model.Quote) FallbackOption {
	return func(f *Fallback) {
		f.passages = passages
	}
}

// WithGenerator sets the random source used to pick passages.
func WithGenerator(gen *generator.Generator) FallbackOption {
	return func(f *Fallback) {
		f.gen = gen
	}
}

// OnFallback registers a callback invoked with the primary error.
func OnFallback(fn func(error)) FallbackOption {
	return func(f *Fallback) {
		f.onFallback = fn
	}
}

// NewFallback wraps primary. A nil primary always serves fallback passages.
func NewFallback(primary Source, opts ...FallbackOption) *Fallback {
	f := &Fallback{
		primary:  primary,
		passages: BuiltinPassages(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.gen == nil {
		f.gen = generator.New()
	}
	return f
}

// FetchRandomText implements Source.
func (f *Fallback) FetchRandomText(ctx context.Context) (model.Quote, error) {
	if f.primary != nil {
		q, err := f.primary.FetchRandomText(ctx)
		if err == nil {
			return q, nil
		}
		if errors.Is(err, context.Canceled) {
			return model.Quote{}, err
		}
		if f.onFallback != nil {
			f.onFallback(err)
		}
	}
	if len(f.passages) == 0 {
		return model.Quote{}, ErrEmptyText
	}
	q := f.passages[f.gen.Intn(len(f.passages))]
	q.Source = model.SourceFallback
	return q, nil
}
