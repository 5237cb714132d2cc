package captions

import (
	"strings"
	"time"
)

// Word is a transcribed word with known boundaries.
type Word struct {
	Text  string
	Start time.Duration
	End   time.Duration
}

// Cue is one subtitle block.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Group packs words into cues of style.WordsPerCue() words, flushing the
// final partial group. Cue indices start at 1. Words with blank text are
// dropped before grouping.
func Group(words []Word, style Style) []Cue {
	size := style.WordsPerCue()
	cues := make([]Cue, 0, len(words)/size+1)
	batch := make([]Word, 0, size)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		texts := make([]string, len(batch))
		for i, w := range batch {
			texts[i] = w.Text
		}
		cues = append(cues, Cue{
			Index: len(cues) + 1,
			Start: batch[0].Start,
			End:   batch[len(batch)-1].End,
			Text:  strings.Join(texts, " "),
		})
		batch = batch[:0]
	}

	for _, w := range words {
		w.Text = strings.TrimSpace(w.Text)
		if w.Text == "" {
			continue
		}
		batch = append(batch, w)
		if len(batch) == size {
			flush()
		}
	}
	flush()
	return cues
}

// secondsToDuration converts fractional seconds, truncating below a millisecond.
func secondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(int64(seconds*1000)) * time.Millisecond
}
