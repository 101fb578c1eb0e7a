package pem

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/kochabx/webpush/errors"
)

// Parser extracts the binary payload of a PEM text with a fixed label.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	label         string
	beginBoundary string
	endBoundary   string
}

// NewParser creates a parser for texts framed by "-----BEGIN <label>-----" and
// "-----END <label>-----".
func NewParser(label string) (*Parser, error) {
	if err := ValidateLabel(label); err != nil {
		return nil, err
	}
	return &Parser{
		label:         label,
		beginBoundary: fmt.Sprintf(beginBoundaryFormat, label),
		endBoundary:   fmt.Sprintf(endBoundaryFormat, label),
	}, nil
}

// Parse is a shorthand for NewParser(label) followed by Parse(text).
func Parse(text, label string) ([]byte, error) {
	p, err := NewParser(label)
	if err != nil {
		return nil, err
	}
	return p.Parse(text)
}

// Label returns the label this parser expects.
func (p *Parser) Label() string {
	return p.label
}

// parseState tracks the position of the scanner inside the grammar.
type parseState struct {
	beginMatched   bool // "-----BEGIN <label>-----" seen
	beginLineEnded bool // line terminator after the BEGIN boundary seen
	textStarted    bool // first base64 character seen
	lineStarted    bool // current line still accepts base64 characters
	padStarted     bool // first '=' seen
	padCount       int
	endMatched     bool
}

// Parse returns the decoded payload. CRLF and CR line terminators are normalized to LF.
func (p *Parser) Parse(text string) ([]byte, error) {
	content := strings.ReplaceAll(text, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var (
		body    strings.Builder
		st      parseState
		skipEnd = -1
		lineNo  = 1
	)

scan:
	for i := 0; i < len(content); i++ {
		c := content[i]
		if c == '\n' {
			lineNo++
		}
		if i <= skipEnd {
			continue
		}

		if !st.beginMatched {
			skipEnd = matchAt(content, p.beginBoundary, i)
			st.beginMatched = skipEnd >= 0
			continue
		}

		if !st.beginLineEnded {
			if c == '\n' {
				st.beginLineEnded = true
				continue
			}
			if isWSP(c) {
				continue
			}
			return nil, errors.PEMFormat("the line of the '-----BEGIN' encapsulation boundary contains an illegal character after %q: %q", p.beginBoundary, c).
				WithMetadata(p.metadata(lineNo))
		}

		if !st.textStarted {
			switch {
			case isWSP(c) || c == '\n':
				continue
			case isBase64Char(c):
				body.WriteByte(c)
				st.textStarted = true
				st.lineStarted = true
				continue
			case p.atEndBoundary(content, endBoundaryPrefix, i):
				st.endMatched = p.atEndBoundary(content, p.endBoundary, i)
				break scan
			}
			return nil, p.invalidBase64(lineNo)
		}

		prev := content[i-1]
		if !st.padStarted {
			switch {
			case isBase64Char(c):
				if !st.lineStarted {
					return nil, p.invalidBase64(lineNo)
				}
				body.WriteByte(c)
				continue
			case isWSP(c):
				st.lineStarted = false
				continue
			case c == '\n':
				// A blank line is only tolerated directly before the END boundary.
				// Reported on the line that follows it.
				if prev == '\n' && !p.atEndBoundary(content, endBoundaryPrefix, i+1) {
					return nil, p.invalidBase64(lineNo)
				}
				st.lineStarted = true
				continue
			case c == '=' && st.lineStarted:
				st.padStarted = true
				st.padCount++
				body.WriteByte(c)
				continue
			case p.atEndBoundary(content, endBoundaryPrefix, i):
				st.endMatched = p.atEndBoundary(content, p.endBoundary, i)
				break scan
			}
			return nil, p.invalidBase64(lineNo)
		}

		switch {
		case c == '=':
			if !st.lineStarted || st.padCount >= 2 {
				return nil, p.invalidBase64(lineNo)
			}
			st.padCount++
			body.WriteByte(c)
			continue
		case isWSP(c):
			st.lineStarted = false
			continue
		case c == '\n':
			if prev == '\n' && !p.atEndBoundary(content, endBoundaryPrefix, i+1) {
				return nil, p.invalidBase64(lineNo - 1)
			}
			st.lineStarted = true
			continue
		case p.atEndBoundary(content, endBoundaryPrefix, i):
			st.endMatched = p.atEndBoundary(content, p.endBoundary, i)
			break scan
		}
		return nil, p.invalidBase64(lineNo)
	}

	if !st.beginMatched {
		return nil, errors.PEMFormat("a '-----BEGIN' encapsulation boundary doesn't exist or the format is invalid").
			WithMetadata(map[string]string{"label": p.label, "boundary": p.beginBoundary})
	}
	if !st.endMatched {
		return nil, errors.PEMFormat("a '-----END' encapsulation boundary doesn't exist or the format is invalid").
			WithMetadata(map[string]string{"label": p.label, "boundary": p.endBoundary})
	}

	decoded, err := decodeBase64(body.String())
	if err != nil {
		return nil, errors.PEMFormat("the base64 text can't be decoded").
			WithMetadata(map[string]string{"label": p.label}).
			WithCause(err)
	}
	return decoded, nil
}

// atEndBoundary reports whether boundary starts at index i at the beginning of a line.
func (p *Parser) atEndBoundary(content, boundary string, i int) bool {
	if i <= 0 || i > len(content) || content[i-1] != '\n' {
		return false
	}
	return matchAt(content, boundary, i) >= 0
}

func (p *Parser) invalidBase64(lineNo int) error {
	return errors.PEMFormat("the base64 text is malformed or contains an illegal character (line: %d)", lineNo).
		WithMetadata(p.metadata(lineNo))
}

func (p *Parser) metadata(lineNo int) map[string]string {
	return map[string]string{"label": p.label, "line": strconv.Itoa(lineNo)}
}

// matchAt returns the index of the last byte of seq if content contains seq at index i,
// otherwise -1.
func matchAt(content, seq string, i int) int {
	if len(seq) == 0 || i+len(seq) > len(content) {
		return -1
	}
	if content[i:i+len(seq)] != seq {
		return -1
	}
	return i + len(seq) - 1
}

func decodeBase64(s string) ([]byte, error) {
	if strings.HasSuffix(s, "=") {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func isWSP(c byte) bool {
	return c == '\t' || c == ' '
}

func isBase64Char(c byte) bool {
	return c == '+' || c == '/' ||
		('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') ||
		('0' <= c && c <= '9')
}
