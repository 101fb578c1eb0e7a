package ece

import (
	"crypto/rand"
	"testing"
)

// BenchmarkEncrypt benchmarks encryption of a 1 KB payload
func BenchmarkEncrypt(b *testing.B) {
	_, keys := newUserAgent(b)
	plaintext := make([]byte, 1024)
	rand.Read(plaintext)
	engine := NewEngine()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := engine.Encrypt(keys, plaintext); err != nil {
			b.Fatalf("Encryption failed: %v", err)
		}
	}
}

// BenchmarkDecrypt benchmarks decryption of a 1 KB payload
func BenchmarkDecrypt(b *testing.B) {
	priv, keys := newUserAgent(b)
	plaintext := make([]byte, 1024)
	rand.Read(plaintext)
	engine := NewEngine()

	record, err := engine.Encrypt(keys, plaintext)
	if err != nil {
		b.Fatalf("Encryption failed: %v", err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := engine.Decrypt(keys, record, priv); err != nil {
			b.Fatalf("Decryption failed: %v", err)
		}
	}
}
