package pem

import (
	stdpem "encoding/pem"
)

// Encode emits data as PEM text with the given label and 64-character body lines.
func Encode(data []byte, label string) (string, error) {
	if err := ValidateLabel(label); err != nil {
		return "", err
	}
	return string(stdpem.EncodeToMemory(&stdpem.Block{Type: label, Bytes: data})), nil
}
