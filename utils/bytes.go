// Package utils provides byte-level helpers shared by the cms codec and the
// keystore: PKCS#7 padding and unpadding for SM4-CBC.
package utils

import (
	"crypto/subtle"

	"github.com/pkg/errors"
)

// ErrInvalidPadding is returned by Unpad when the trailing padding bytes of
// a decrypted block don't form a well-formed PKCS#7 pad.
var ErrInvalidPadding = errors.New("utils: invalid PKCS#7 padding")

// Pad appends PKCS#7 padding to data so the result is a multiple of
// blockSize. blockSize must be in [1, 255].
func Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - (len(data) % blockSize)
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// Unpad strips and validates PKCS#7 padding in place, returning the
// plaintext length. The padding bytes are checked with
// subtle.ConstantTimeCompare; the running time still depends on the pad
// length, and out-of-range pad lengths return early.
func Unpad(data []byte, blockSize int) (int, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return 0, ErrInvalidPadding
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return 0, ErrInvalidPadding
	}

	expected := make([]byte, padLen)
	for i := range expected {
		expected[i] = byte(padLen)
	}

	if subtle.ConstantTimeCompare(data[len(data)-padLen:], expected) != 1 {
		return 0, ErrInvalidPadding
	}

	return len(data) - padLen, nil
}
