package wordlist

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSanitize(t *testing.T) {
	got := Sanitize([]string{"hello", "hello", "two words", "tab\there", "", "naïve", "bell\a"})
	want := []string{"hello", "naïve"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLoadWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	content := "# comment\nalpha\n\n  beta  \nalpha\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write word list: %v", err)
	}
	words, err := LoadWords(path)
	if err != nil {
		t.Fatalf("load words: %v", err)
	}
	if !reflect.DeepEqual(words, []string{"alpha", "beta"}) {
		t.Fatalf("unexpected words %v", words)
	}
}

func TestLoadWordsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("\n# only comments\n"), 0o644); err != nil {
		t.Fatalf("write word list: %v", err)
	}
	if _, err := LoadWords(path); err == nil {
		t.Fatalf("expected error for empty word list")
	}
}
