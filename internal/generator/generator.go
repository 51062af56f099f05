// Package generator builds randomized practice text.
package generator

import (
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Options controls word passage generation.
type Options struct {
	Count    int
	CapsPct  float64
	PunctPct float64
	PunctSet []rune
}

// Generator produces randomized choices and passages. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Intn returns a uniform index in [0,n). n must be positive.
func (g *Generator) Intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Intn(n)
}

// Passage joins opts.Count uniformly chosen words with caps/punctuation applied.
func (g *Generator) Passage(words []string, opts Options) string {
	if len(words) == 0 || opts.Count <= 0 {
		return ""
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		word := words[g.rnd.Intn(len(words))]
		word = applyCaps(g.rnd, word, opts.CapsPct)
		word = applyPunct(g.rnd, word, opts.PunctPct, opts.PunctSet)
		out = append(out, word)
	}
	return strings.Join(out, " ")
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 || rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 || rnd.Float64() > punctPct {
		return word
	}
	return word + string(punctSet[rnd.Intn(len(punctSet))])
}
