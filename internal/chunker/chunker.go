// Package chunker splits raw document text into bounded, overlapping
// segments for indexing. It has no dependencies on the rest of the core.
package chunker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParams indicates a parameter combination the chunker rejects
// before producing any segment.
var ErrInvalidParams = errors.New("invalid chunking parameters")

// Scanner walks a text and yields one segment per Scan call. The sequence
// is lazy and finite; constructing a new Scanner over the same inputs
// restarts it and yields an identical sequence.
//
// Split points are chosen at or before maxSize characters from the cursor,
// preferring the last paragraph boundary ("\n\n") inside the window, then
// the last sentence boundary (". ", "! " or "? "), then a hard cut at
// exactly maxSize. No segment ever exceeds maxSize.
type Scanner struct {
	text    string
	maxSize int
	overlap int

	start int
	pos   int
	cur   string
	done  bool
}

// New validates the parameters and returns a Scanner positioned before the
// first segment. overlap >= maxSize or non-positive sizes are rejected
// immediately so a misconfiguration can never loop.
func New(text string, maxSize, overlap int) (*Scanner, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: max_size must be positive, got %d", ErrInvalidParams, maxSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidParams, overlap)
	}
	if overlap >= maxSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than max_size %d", ErrInvalidParams, overlap, maxSize)
	}
	return &Scanner{text: text, maxSize: maxSize, overlap: overlap}, nil
}

// Scan advances to the next segment. It returns false once the text is
// exhausted; empty input yields no segments at all.
func (s *Scanner) Scan() bool {
	if s.done || s.start >= len(s.text) {
		s.done = true
		s.cur = ""
		return false
	}

	end := s.start + s.maxSize
	if end >= len(s.text) {
		// Final window: take everything that remains.
		s.cur = s.text[s.start:]
		s.pos = s.start
		s.start = len(s.text)
		s.done = true
		return true
	}

	cut := s.cutPoint(s.start, end)
	s.cur = s.text[s.start:cut]
	s.pos = s.start

	// The next window backs up by the overlap, clamped so it never moves
	// behind the window we just emitted.
	next := cut - s.overlap
	if next <= s.start {
		next = s.start + 1
	}
	s.start = next
	return true
}

// Text returns the segment produced by the last successful Scan.
func (s *Scanner) Text() string {
	return s.cur
}

// Pos returns the offset of the last segment within the original text.
func (s *Scanner) Pos() int {
	return s.pos
}

// cutPoint picks the split position inside [start, end) by boundary
// preference. end is always a valid fallback since end-start == maxSize.
func (s *Scanner) cutPoint(start, end int) int {
	window := s.text[start:end]

	if p := strings.LastIndex(window, "\n\n"); p > 0 {
		return start + p
	}

	sentence := strings.LastIndex(window, ". ")
	if q := strings.LastIndex(window, "! "); q > sentence {
		sentence = q
	}
	if q := strings.LastIndex(window, "? "); q > sentence {
		sentence = q
	}
	if sentence > 0 {
		// Keep the punctuation with the finished sentence.
		return start + sentence + 1
	}

	return end
}

// Split runs a Scanner to completion and collects the segments.
func Split(text string, maxSize, overlap int) ([]string, error) {
	sc, err := New(text, maxSize, overlap)
	if err != nil {
		return nil, err
	}
	var segments []string
	for sc.Scan() {
		segments = append(segments, sc.Text())
	}
	return segments, nil
}
