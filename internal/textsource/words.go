package textsource

import (
	"context"

	"github.com/verte-zerg/speedtype/internal/generator"
	"github.com/verte-zerg/speedtype/internal/model"
)

// Words generates passages from a word list.
type Words struct {
	words []string
	opts  generator.Options
	gen   *generator.Generator
}

// NewWords builds a word-list source. A nil gen uses a time-seeded generator.
func NewWords(words []string, opts generator.Options, gen *generator.Generator) *Words {
	if gen == nil {
		gen = generator.New()
	}
	return &Words{words: words, opts: opts, gen: gen}
}

// FetchRandomText implements Source.
func (w *Words) FetchRandomText(ctx context.Context) (model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return model.Quote{}, err
	}
	text := w.gen.Passage(w.words, w.opts)
	if text == "" {
		return model.Quote{}, ErrEmptyText
	}
	return NewQuote(text, "", model.SourceWords), nil
}
