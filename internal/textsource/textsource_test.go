package textsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/speedtype/internal/generator"
	"github.com/verte-zerg/speedtype/internal/model"
)

func TestQuotableObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":" Stay hungry, stay foolish. ","author":"Steve Jobs","length":24}`))
	}))
	defer srv.Close()

	q, err := NewQuotable(QuotableOptions{URL: srv.URL}).FetchRandomText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Stay hungry, stay foolish.", q.Content)
	assert.Equal(t, "Steve Jobs", q.Author)
	assert.Equal(t, 26, q.Length)
	assert.Equal(t, model.SourceQuote, q.Source)
}

func TestQuotableArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"content":"héllo","author":"A"}]`))
	}))
	defer srv.Close()

	q, err := NewQuotable(QuotableOptions{URL: srv.URL}).FetchRandomText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "héllo", q.Content)
	assert.Equal(t, 5, q.Length)
}

func TestQuotableErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		},
		"empty content": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"content":"   "}`))
		},
		"empty array": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()
			_, err := NewQuotable(QuotableOptions{URL: srv.URL}).FetchRandomText(context.Background())
			require.Error(t, err)
		})
	}
}

func TestQuotableRateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"content":"ok"}`))
	}))
	defer srv.Close()

	q := NewQuotable(QuotableOptions{URL: srv.URL, RatePerSecond: 0.001, Burst: 1})
	_, err := q.FetchRandomText(context.Background())
	require.NoError(t, err)
	_, err = q.FetchRandomText(context.Background())
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(1), hits.Load())
}

type failingSource struct {
	err error
}

func (f failingSource) FetchRandomText(ctx context.Context) (model.Quote, error) {
	return model.Quote{}, f.err
}

func TestFallbackUsesPrimary(t *testing.T) {
	primary := Fixed{Quote: NewQuote("primary text", "me", model.SourceQuote)}
	q, err := NewFallback(primary).FetchRandomText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "primary text", q.Content)
	assert.Equal(t, model.SourceQuote, q.Source)
}

func TestFallbackOnPrimaryFailure(t *testing.T) {
	var seen error
	upstream := errors.New("offline")
	f := NewFallback(failingSource{err: upstream},
		WithGenerator(generator.NewSeeded(1)),
		OnFallback(func(err error) { seen = err }))

	q, err := f.FetchRandomText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, q.Source)
	assert.Contains(t, contents(BuiltinPassages()), q.Content)
	assert.ErrorIs(t, seen, upstream)
}

func TestFallbackPropagatesCancel(t *testing.T) {
	f := NewFallback(failingSource{err: context.Canceled})
	_, err := f.FetchRandomText(context.Background())
	require.ErrorIs(t, err, context.Canceled)
}

func TestFallbackCoversAllPassages(t *testing.T) {
	f := NewFallback(nil, WithGenerator(generator.NewSeeded(7)))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		q, err := f.FetchRandomText(context.Background())
		require.NoError(t, err)
		seen[q.Content] = true
	}
	assert.Len(t, seen, len(BuiltinPassages()))
}

func TestFallbackEmptyPassages(t *testing.T) {
	f := NewFallback(nil, WithPassages(nil))
	_, err := f.FetchRandomText(context.Background())
	require.ErrorIs(t, err, ErrEmptyText)
}

func TestBuiltinPassageLengths(t *testing.T) {
	for _, q := range BuiltinPassages() {
		assert.Equal(t, len([]rune(q.Content)), q.Length)
		assert.NotEmpty(t, q.Author)
	}
}

func TestCustom(t *testing.T) {
	q, err := Custom("  hello world \n")
	require.NoError(t, err)
	assert.Equal(t, "hello world", q.Content)
	assert.Equal(t, model.SourceCustom, q.Source)
	assert.Equal(t, 11, q.Length)

	_, err = Custom(" \t\n")
	require.ErrorIs(t, err, ErrEmptyText)
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.txt")
	require.NoError(t, os.WriteFile(path, []byte("from a file\n"), 0o644))
	q, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from a file", q.Content)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestFixedRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Fixed{Quote: NewQuote("x", "", model.SourceCustom)}.FetchRandomText(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWords(t *testing.T) {
	w := NewWords([]string{"alpha", "beta"}, generator.Options{Count: 4}, generator.NewSeeded(3))
	q, err := w.FetchRandomText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SourceWords, q.Source)
	assert.Len(t, strings.Fields(q.Content), 4)

	_, err = NewWords(nil, generator.Options{Count: 4}, nil).FetchRandomText(context.Background())
	require.ErrorIs(t, err, ErrEmptyText)
}

func contents(qs []model.Quote) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Content)
	}
	return out
}
