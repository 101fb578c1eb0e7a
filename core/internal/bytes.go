package internal

// ZeroPad left-pads b with zeros to length. Slices that are already at least
// length bytes long are returned unchanged.
func ZeroPad(b []byte, length int) []byte {
	if len(b) >= length {
		return b
	}

	result := make([]byte, length)
	copy(result[length-len(b):], b)
	return result
}
