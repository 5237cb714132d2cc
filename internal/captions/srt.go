package captions

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FormatTimestamp renders d as HH:MM:SS,mmm, truncating to the millisecond.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// ParseTimestamp reads an HH:MM:SS,mmm value. A '.' separator is accepted.
func ParseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(strings.Replace(value, ".", ",", 1))
	clock, millis, ok := strings.Cut(value, ",")
	if !ok {
		return 0, fmt.Errorf("timestamp %q: missing milliseconds", value)
	}
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timestamp %q: expected HH:MM:SS", value)
	}
	var fields [4]int
	for i, raw := range append(parts, millis) {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("timestamp %q: invalid field %q", value, raw)
		}
		fields[i] = n
	}
	return time.Duration(fields[0])*time.Hour +
		time.Duration(fields[1])*time.Minute +
		time.Duration(fields[2])*time.Second +
		time.Duration(fields[3])*time.Millisecond, nil
}

// WriteSRT writes cues as SRT blocks separated by blank lines.
func WriteSRT(w io.Writer, cues []Cue) error {
	bw := bufio.NewWriter(w)
	for i, cue := range cues {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n",
			cue.Index, FormatTimestamp(cue.Start), FormatTimestamp(cue.End), cue.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSRTFile writes cues to path, creating parent directories.
func WriteSRTFile(path string, cues []Cue) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure subtitle dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create subtitle file: %w", err)
	}
	if err := WriteSRT(file, cues); err != nil {
		file.Close()
		return fmt.Errorf("write subtitle file: %w", err)
	}
	return file.Close()
}

// ParseSRT reads SRT blocks. Multi-line cue text is joined with newlines.
func ParseSRT(r io.Reader) ([]Cue, error) {
	scanner := bufio.NewScanner(r)
	var (
		cues  []Cue
		cur   *Cue
		lines []string
		state int // 0 index, 1 timing, 2 text
	)
	finish := func() {
		if cur != nil {
			cur.Text = strings.Join(lines, "\n")
			cues = append(cues, *cur)
		}
		cur, lines, state = nil, nil, 0
	}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		switch state {
		case 0:
			if strings.TrimSpace(line) == "" {
				continue
			}
			idx, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid cue index %q", lineNo, line)
			}
			cur = &Cue{Index: idx}
			state = 1
		case 1:
			startRaw, endRaw, ok := strings.Cut(line, "-->")
			if !ok {
				return nil, fmt.Errorf("line %d: missing timing arrow", lineNo)
			}
			start, err := ParseTimestamp(startRaw)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			end, err := ParseTimestamp(endRaw)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			cur.Start, cur.End = start, end
			state = 2
		case 2:
			if strings.TrimSpace(line) == "" {
				finish()
				continue
			}
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if state == 1 {
		return nil, fmt.Errorf("line %d: cue %d has no timing", lineNo, cur.Index)
	}
	finish()
	return cues, nil
}
