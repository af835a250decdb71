package tokenizer

import (
	"testing"

	"github.com/aleister1102/leakscout/internal/config"
)

func TestNewTokenizer_UsesConfiguredLineLimit(t *testing.T) {
	tok := NewTokenizer()
	if tok.maxLineLength != config.DefaultScannerMaxLineLength {
		t.Errorf("maxLineLength = %d, want %d", tok.maxLineLength, config.DefaultScannerMaxLineLength)
	}
}

func TestTokenizer_Tokenize(t *testing.T) {
	tok := NewTokenizer()

	tests := []struct {
		name        string
		content     string
		wantLines   []string
		wantOffsets []int
	}{
		{
			name:        "single line without newline",
			content:     "hello world",
			wantLines:   []string{"hello world"},
			wantOffsets: []int{0},
		},
		{
			name:        "multiple lines",
			content:     "first\nsecond\nthird",
			wantLines:   []string{"first", "second", "third"},
			wantOffsets: []int{0, 6, 13},
		},
		{
			name:        "trailing newline produces no empty unit",
			content:     "one\ntwo\n",
			wantLines:   []string{"one", "two"},
			wantOffsets: []int{0, 4},
		},
		{
			name:        "CRLF endings are stripped without shifting offsets",
			content:     "alpha\r\nbeta\r\n",
			wantLines:   []string{"alpha", "beta"},
			wantOffsets: []int{0, 7},
		},
		{
			name:        "empty interior line is kept",
			content:     "a\n\nb",
			wantLines:   []string{"a", "", "b"},
			wantOffsets: []int{0, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			units, err := tok.Tokenize("test.txt", []byte(tt.content))
			if err != nil {
				t.Fatalf("Tokenize() returned error: %v", err)
			}
			if len(units) != len(tt.wantLines) {
				t.Fatalf("Tokenize() returned %d units, want %d", len(units), len(tt.wantLines))
			}
			for i, unit := range units {
				if unit.Content != tt.wantLines[i] {
					t.Errorf("unit %d content = %q, want %q", i, unit.Content, tt.wantLines[i])
				}
				if unit.ByteOffset != tt.wantOffsets[i] {
					t.Errorf("unit %d offset = %d, want %d", i, unit.ByteOffset, tt.wantOffsets[i])
				}
				if unit.LineNumber != i+1 {
					t.Errorf("unit %d line number = %d, want %d", i, unit.LineNumber, i+1)
				}
				if unit.Path != "test.txt" {
					t.Errorf("unit %d path = %q, want %q", i, unit.Path, "test.txt")
				}
			}
		})
	}
}

func TestTokenizer_EmptyContent(t *testing.T) {
	units, err := NewTokenizer().Tokenize("empty.txt", nil)
	if err != nil {
		t.Fatalf("Tokenize() returned error: %v", err)
	}
	if len(units) != 0 {
		t.Errorf("Tokenize() returned %d units for empty content, want 0", len(units))
	}
}

func TestTokenizer_RejectsBinaryContent(t *testing.T) {
	_, err := NewTokenizer().Tokenize("blob.bin", []byte{0x41, 0x00, 0x42})
	if err == nil {
		t.Fatal("Tokenize() accepted content with NUL bytes")
	}
}

func TestTokenizer_RejectsOverlongLine(t *testing.T) {
	tok := &Tokenizer{maxLineLength: 16}
	_, err := tok.Tokenize("minified.js", []byte("this line is definitely longer than sixteen bytes"))
	if err == nil {
		t.Fatal("Tokenize() accepted a line over the length limit")
	}
}
