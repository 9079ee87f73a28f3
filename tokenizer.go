package sfinspect

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const (
	// csvDelimiter separates fields of an input line
	csvDelimiter = ','
	// leftSmartQuote and rightSmartQuote are accepted in place of '"'
	leftSmartQuote  = '\u201C'
	rightSmartQuote = '\u201D'

	utf8BOM = "\uFEFF"
)

// isQuote reports whether r opens or closes a quoted span.
func isQuote(r rune) bool {
	return r == '"' || r == leftSmartQuote || r == rightSmartQuote
}

// SplitLine splits one line on commas that are not inside a quoted span.
//
// Quote characters (straight or typographic double quotes) toggle the quoted
// state and are not part of the value. Whitespace between fields is dropped,
// whitespace inside a quoted or already started field is kept. The last field
// is trimmed and dropped when nothing is left. Unbalanced quotes never fail: an
// open quote runs to the end of the line.
//
// A blank line yields an empty, non-nil Record.
func SplitLine(line string) Record {
	fields := make(Record, 0, riskFields)

	var (
		word     strings.Builder
		inQuotes bool
		inField  bool
	)
	for _, r := range line {
		switch {
		case isQuote(r):
			inQuotes = !inQuotes
			inField = inQuotes
		case unicode.IsSpace(r):
			if inQuotes || inField {
				word.WriteRune(r)
			}
		case r == csvDelimiter:
			if inQuotes {
				word.WriteRune(r)
				continue
			}
			inField = false
			fields = append(fields, word.String())
			word.Reset()
		default:
			word.WriteRune(r)
			inField = true
		}
	}

	if last := strings.TrimSpace(word.String()); last != "" {
		fields = append(fields, last)
	}
	return fields
}

// LineReader reads lines from an io.Reader and tokenizes each with SplitLine.
type LineReader struct {
	reader *bufio.Reader
	line   int
}

// maxLineSize bounds a single input line
const maxLineSize = 1024 * 1024

// NewLineReader creates a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: bufio.NewReaderSize(r, 64*1024)}
}

// Read returns the fields of the next line. io.EOF means there is no further
// line, which is distinct from a line with zero fields.
//
// A line longer than maxLineSize is consumed and reported as ErrLineTooLong;
// the next Read continues with the following line.
func (lr *LineReader) Read() (Record, error) {
	var (
		buf  []byte
		size int
	)
	for {
		chunk, err := lr.reader.ReadSlice('\n')
		size += len(chunk)
		// room for the line plus "\r\n"
		if size <= maxLineSize+2 {
			buf = append(buf, chunk...)
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) {
			if size == 0 {
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			return nil, err
		}
		break
	}
	lr.line++

	text := strings.TrimSuffix(strings.TrimSuffix(string(buf), "\n"), "\r")
	if size > len(buf) || len(text) > maxLineSize {
		return nil, fmt.Errorf("%w: line %d exceeds %d bytes", ErrLineTooLong, lr.line, maxLineSize)
	}
	if lr.line == 1 {
		text = strings.TrimPrefix(text, utf8BOM)
	}
	return SplitLine(text), nil
}

// Line returns the 1-based number of the line last returned by Read.
func (lr *LineReader) Line() int {
	return lr.line
}
