package pem

import (
	"github.com/kochabx/webpush/errors"
)

// ValidateLabel checks a label against the RFC 7468 label grammar: printable ASCII,
// with '-' and ' ' allowed only between two other label characters and never doubled.
func ValidateLabel(label string) error {
	afterSpaceOrMinus := false
	for i := 0; i < len(label); i++ {
		c := label[i]
		if isLabelChar(c) {
			afterSpaceOrMinus = false
			continue
		}
		if isSpaceOrMinus(c) && !afterSpaceOrMinus && i != 0 && i != len(label)-1 {
			afterSpaceOrMinus = true
			continue
		}
		return errors.PEMFormat("the label is invalid: %q", label).
			WithMetadata(map[string]string{"label": label})
	}
	return nil
}

func isLabelChar(c byte) bool {
	return (0x21 <= c && c <= 0x2C) || (0x2E <= c && c <= 0x7E)
}

func isSpaceOrMinus(c byte) bool {
	return c == '-' || c == ' '
}
