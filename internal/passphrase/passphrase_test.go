package passphrase

import (
	"regexp"
	"strings"
	"testing"
)

var phrasePattern = regexp.MustCompile(`^[a-z]+(-[a-z]+)*-\d{2}$`)

func TestGenerateFormat(t *testing.T) {
	phrase, err := Generate(2)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !phrasePattern.MatchString(phrase) {
		t.Fatalf("unexpected phrase format: %q", phrase)
	}
	if got := strings.Count(phrase, "-"); got != 2 {
		t.Fatalf("expected 2 separators, got %d in %q", got, phrase)
	}
}

func TestGenerateDefaultsWordCount(t *testing.T) {
	phrase, err := Generate(0)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got := strings.Count(phrase, "-"); got != DefaultWords {
		t.Fatalf("expected %d separators, got %d in %q", DefaultWords, got, phrase)
	}
}

func TestGenerateVaries(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		phrase, err := Generate(3)
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		seen[phrase] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatalf("expected varying phrases, got %d unique of 20", len(seen))
	}
}
