package tokenizer

import (
	"bytes"

	"github.com/aleister1102/leakscout/internal/common/errorwrapper"
	"github.com/aleister1102/leakscout/internal/config"
	"github.com/aleister1102/leakscout/internal/models"
)

// Tokenizer splits file content into addressable line units that all
// detectors consume uniformly. Lines are capped: minified bundles can pack
// an entire file on one line, and anything beyond the limit is unscannable.
type Tokenizer struct {
	maxLineLength int
}

// NewTokenizer creates a tokenizer with the default line length limit.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{maxLineLength: config.DefaultScannerMaxLineLength}
}

// Tokenize splits content into one TextUnit per line. Line numbers are
// 1-based and byte offsets address the line start within the file. A trailing
// newline does not produce an empty final unit.
func (t *Tokenizer) Tokenize(path string, content []byte) ([]models.TextUnit, error) {
	if len(content) == 0 {
		return nil, nil
	}
	if bytes.IndexByte(content, 0x00) >= 0 {
		return nil, errorwrapper.NewError("content of %s contains NUL bytes, refusing to tokenize binary data", path)
	}

	units := make([]models.TextUnit, 0, bytes.Count(content, []byte{'\n'})+1)
	offset := 0
	lineNumber := 0

	for offset <= len(content) {
		rest := content[offset:]
		if len(rest) == 0 {
			break
		}

		end := bytes.IndexByte(rest, '\n')
		lineLen := end
		advance := end + 1
		if end < 0 {
			lineLen = len(rest)
			advance = len(rest)
		}
		if lineLen > t.maxLineLength {
			return nil, errorwrapper.NewError("line %d of %s exceeds maximum length of %d bytes", lineNumber+1, path, t.maxLineLength)
		}

		line := rest[:lineLen]
		// Normalize CRLF endings without shifting byte offsets.
		line = bytes.TrimSuffix(line, []byte{'\r'})

		lineNumber++
		units = append(units, models.TextUnit{
			Path:       path,
			LineNumber: lineNumber,
			ByteOffset: offset,
			Content:    string(line),
		})

		offset += advance
	}

	return units, nil
}
