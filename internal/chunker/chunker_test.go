package chunker

import (
	"errors"
	"strings"
	"testing"
)

func TestNew_InvalidParams(t *testing.T) {
	tests := []struct {
		name    string
		maxSize int
		overlap int
	}{
		{"zero max size", 0, 0},
		{"negative max size", -5, 0},
		{"negative overlap", 10, -1},
		{"overlap equals max size", 10, 10},
		{"overlap exceeds max size", 10, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("some text", tt.maxSize, tt.overlap)
			if err == nil {
				t.Fatalf("expected error for max_size=%d overlap=%d", tt.maxSize, tt.overlap)
			}
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestSplit_EmptyText(t *testing.T) {
	segments, err := Split("", 100, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("expected no segments for empty text, got %d", len(segments))
	}
}

func TestSplit_ShortText(t *testing.T) {
	text := "short text"
	segments, err := Split(text, 100, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected exactly one segment, got %d", len(segments))
	}
	if segments[0] != text {
		t.Errorf("expected segment %q, got %q", text, segments[0])
	}
}

func TestSplit_SentenceBoundaries(t *testing.T) {
	segments, err := Split("AAAA. BBBB. CCCC.", 10, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"AAAA.", "A. BBBB.", "B. CCCC."}
	if len(segments) != len(expected) {
		t.Fatalf("expected %d segments, got %d: %q", len(expected), len(segments), segments)
	}
	for i, want := range expected {
		if segments[i] != want {
			t.Errorf("segment %d: expected %q, got %q", i, want, segments[i])
		}
		if len(segments[i]) > 10 {
			t.Errorf("segment %d exceeds max size: %d chars", i, len(segments[i]))
		}
	}
}

func TestSplit_ParagraphBoundaryPreferred(t *testing.T) {
	text := "First para. More text.\n\nSecond paragraph continues here."
	segments, err := Split(text, 30, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The first window contains the paragraph break, which wins over the
	// sentence break inside it.
	if !strings.HasSuffix(segments[0], "More text.") {
		t.Errorf("expected first segment to end at the paragraph boundary, got %q", segments[0])
	}
}

func TestSplit_HardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("x", 25)
	segments, err := Split(text, 10, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, seg := range segments {
		if len(seg) > 10 {
			t.Errorf("segment %d exceeds max size: %d chars", i, len(seg))
		}
	}
	if len(segments[0]) != 10 {
		t.Errorf("expected hard cut at exactly 10 chars, got %d", len(segments[0]))
	}
}

func TestScanner_RoundTrip(t *testing.T) {
	texts := []string{
		"AAAA. BBBB. CCCC.",
		"Single short sentence.",
		strings.Repeat("no boundaries at all ", 40),
		"Para one.\n\nPara two has more text in it.\n\nPara three! Done? Yes. ",
	}

	for _, text := range texts {
		sc, err := New(text, 32, 6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Reconstruct the original by dropping each segment's overlap with
		// its predecessor, using the segment offsets.
		var rebuilt strings.Builder
		prevEnd := 0
		for sc.Scan() {
			seg, pos := sc.Text(), sc.Pos()
			if len(seg) > 32 {
				t.Fatalf("segment exceeds max size: %d chars", len(seg))
			}
			if text[pos:pos+len(seg)] != seg {
				t.Fatalf("segment does not match its reported offset")
			}
			if pos > prevEnd {
				t.Fatalf("gap between segments at offset %d", pos)
			}
			rebuilt.WriteString(seg[prevEnd-pos:])
			prevEnd = pos + len(seg)
		}

		if rebuilt.String() != text {
			t.Errorf("round trip failed:\nwant %q\ngot  %q", text, rebuilt.String())
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := "Deploy with docker. Then configure the server! Is it running? Yes.\n\nSecond part."
	first, err := Split(text, 20, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Split(text, 20, 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d segments, first run produced %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j] != first[j] {
				t.Errorf("run %d segment %d differs: %q vs %q", i, j, again[j], first[j])
			}
		}
	}
}

func TestScanner_Restartable(t *testing.T) {
	text := "One. Two. Three. Four. Five."
	collect := func() []string {
		sc, err := New(text, 12, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var out []string
		for sc.Scan() {
			out = append(out, sc.Text())
		}
		return out
	}

	a, b := collect(), collect()
	if len(a) != len(b) {
		t.Fatalf("restarted scanner produced different count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("segment %d differs after restart: %q vs %q", i, a[i], b[i])
		}
	}
}
