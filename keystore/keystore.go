// Package keystore protects a signer's SM2 private key at rest for the
// demo command, deriving an SM4 key from an interactively entered
// passphrase. This is demo-only scaffolding, not a core codec component: it
// exists so cmd/example can exercise golang.org/x/term, the SM3/SM4
// primitives and the utils padding helpers end to end. It does not use the
// cms package.
package keystore

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"os"
	"syscall"

	"github.com/emmansun/gmsm/sm2"
	"github.com/emmansun/gmsm/sm3"
	"github.com/emmansun/gmsm/sm4"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/guojiaxincom/gmcms/utils"
)

const ivSize = 16

// deriveKey turns a passphrase into a 16-byte SM4 key via a single SM3
// pass. This is a demo-grade KDF with no iteration count; it is not meant
// to withstand offline brute force and exists only to exercise the sm3 and
// sm4 primitives the core already depends on.
func deriveKey(passphrase []byte) []byte {
	sum := sm3.Sum(passphrase)
	return sum[:16]
}

// Seal encrypts a raw SM2 private key scalar under a key derived from
// passphrase, prefixing the random IV to the ciphertext.
func Seal(passphrase []byte, privKeyDER []byte) ([]byte, error) {
	key := deriveKey(passphrase)

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "keystore: generate IV")
	}

	block, err := sm4.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "keystore: init SM4 cipher")
	}

	padded := utils.Pad(privKeyDER, sm4.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return append(iv, ciphertext...), nil
}

// Open decrypts a blob produced by Seal.
func Open(passphrase []byte, blob []byte) ([]byte, error) {
	if len(blob) < ivSize {
		return nil, errors.New("keystore: blob too short")
	}
	key := deriveKey(passphrase)
	iv, ciphertext := blob[:ivSize], blob[ivSize:]

	block, err := sm4.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "keystore: init SM4 cipher")
	}
	if len(ciphertext) == 0 || len(ciphertext)%sm4.BlockSize != 0 {
		return nil, errors.New("keystore: malformed ciphertext")
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	n, err := utils.Unpad(plaintext, sm4.BlockSize)
	if err != nil {
		return nil, errors.Wrap(err, "keystore: unwrap private key")
	}
	return plaintext[:n], nil
}

// PromptPassphrase reads a passphrase from the controlling terminal without
// echoing it, falling back to a plain newline-terminated read when stdin
// isn't a terminal (e.g. when piped in tests or CI).
func PromptPassphrase(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		pw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, errors.Wrap(err, "keystore: read passphrase")
		}
		return pw, nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return nil, errors.Wrap(err, "keystore: read passphrase")
	}
	return []byte(line), nil
}

// EncodePrivateKey is a thin convenience wrapper so callers don't need to
// import sm2's encoding helpers directly to use Seal/Open.
func EncodePrivateKey(priv *sm2.PrivateKey) ([]byte, error) {
	return priv.D.Bytes(), nil
}
