package keywords

import (
	"slices"
	"testing"
)

func TestExtractFrenchScenario(t *testing.T) {
	got := Extract("Les chats sont incroyables et jouent toute la journée", 3)
	want := []string{"incroyables", "journée", "jouent"}
	if !slices.Equal(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
	for _, excluded := range []string{"les", "sont", "et", "toute", "la"} {
		if slices.Contains(got, excluded) {
			t.Fatalf("stop word %q leaked into %v", excluded, got)
		}
	}
}

func TestExtractRanksFrequencyBeforeLength(t *testing.T) {
	text := "Ocean waves. Ocean breeze! The ocean, the sunset, the extraordinary sunset."
	got := Extract(text, 3)
	want := []string{"ocean", "sunset", "extraordinary"}
	if !slices.Equal(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
}

func TestExtractTieBreaksByFirstAppearance(t *testing.T) {
	got := Extract("bird lamp tree", 3)
	want := []string{"bird", "lamp", "tree"}
	if !slices.Equal(got, want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	text := "Montagne, rivière, forêt et montagne: la nature sauvage des montagnes."
	first := Extract(text, 5)
	for range 20 {
		if got := Extract(text, 5); !slices.Equal(got, first) {
			t.Fatalf("non-deterministic output: %v vs %v", got, first)
		}
	}
}

func TestExtractDropsShortTokensAndStopWords(t *testing.T) {
	for _, kw := range Extract("The cat sat on the mat with those very big dogs", 10) {
		if IsStopWord(kw) {
			t.Fatalf("stop word %q returned", kw)
		}
		if len([]rune(kw)) < 4 {
			t.Fatalf("short token %q returned", kw)
		}
	}
}

func TestExtractCountsRunesNotBytes(t *testing.T) {
	// "été" is 3 runes but 5 bytes.
	if got := Extract("été", 3); len(got) != 0 {
		t.Fatalf("expected no keywords, got %v", got)
	}
	if got := Extract("ÉLÉPHANT", 3); !slices.Equal(got, []string{"éléphant"}) {
		t.Fatalf("expected unicode lowercasing, got %v", got)
	}
}

func TestExtractOrFallback(t *testing.T) {
	got := ExtractOrFallback("le la les", 3)
	if !slices.Equal(got, []string{"abstract", "background"}) {
		t.Fatalf("expected fallback pair, got %v", got)
	}
	got[0] = "mutated"
	if Fallback[0] != "abstract" {
		t.Fatal("fallback slice must not be shared")
	}
}

func TestExtractDefaultMax(t *testing.T) {
	got := Extract("alpha bravo charlie delta echoes foxtrot", 0)
	if len(got) != DefaultMax {
		t.Fatalf("expected %d keywords, got %v", DefaultMax, got)
	}
}
