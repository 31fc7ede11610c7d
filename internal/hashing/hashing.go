package hashing

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
)

// Calculate returns the hex encoded sha512 of data, the hash sawtooth uses for payloads and addresses
func Calculate(data []byte) string {
	h := sha512.Sum512(data)
	return hex.EncodeToString(h[:])
}

func CalculateSHA512(text string) string {
	return Calculate([]byte(text))
}

// CalculateSHA256 is used by the settings family addressing
func CalculateSHA256(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
