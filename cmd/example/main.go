// Command example drives every façade of the cms package end to end:
// encrypt/decrypt, seal/open, sign/verify and sign_and_seal/open_and_verify,
// against freshly generated self-signed SM2 certificates.
package main

import (
	"encoding/hex"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/emmansun/gmsm/sm2"
	"github.com/emmansun/gmsm/smx509"
	"github.com/google/uuid"

	"github.com/guojiaxincom/gmcms/certs"
	"github.com/guojiaxincom/gmcms/cms"
	"github.com/guojiaxincom/gmcms/keystore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var (
		message         = flag.String("message", "hello, gm cms", "plaintext to demonstrate the façades with")
		askPassphrase   = flag.Bool("prompt-passphrase", false, "protect the demo signer's key with a passphrase-derived SM4 wrap")
		symmetricKeyHex = flag.String("symmetric-key", "30313233343536373839616263646566", "hex-encoded 16-byte SM4 key for encrypt/decrypt")
	)
	flag.Parse()

	runID := uuid.New().String()
	log := slog.With("run_id", runID)

	alice, err := certs.NewSelfSigned("alice", 1, 365*24*time.Hour)
	if err != nil {
		log.Error("generate alice identity", "error", err)
		os.Exit(1)
	}
	bob, err := certs.NewSelfSigned("bob", 2, 365*24*time.Hour)
	if err != nil {
		log.Error("generate bob identity", "error", err)
		os.Exit(1)
	}

	plaintext := []byte(*message)

	if *askPassphrase {
		if err := demoKeystoreRoundTrip(alice.PrivateKey); err != nil {
			log.Error("keystore round trip", "error", err)
			os.Exit(1)
		}
		log.Info("keystore round trip succeeded")
	}

	key, err := decodeSymmetricKey(*symmetricKeyHex)
	if err != nil {
		log.Error("decode symmetric key", "error", err)
		os.Exit(1)
	}

	runEncryptDecrypt(log, key, plaintext)
	runSealOpen(log, alice, bob, plaintext)
	runSignVerify(log, alice, plaintext)
	runSignAndSealOpenAndVerify(log, alice, bob, plaintext)
}

func decodeSymmetricKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, err
	}
	return key, nil
}

func runEncryptDecrypt(log *slog.Logger, key, plaintext []byte) {
	encrypted, err := cms.Encrypt(key, plaintext)
	if err != nil {
		log.Error("encrypt", "error", err)
		os.Exit(1)
	}
	_, decrypted, err := cms.Decrypt(key, encrypted)
	if err != nil {
		log.Error("decrypt", "error", err)
		os.Exit(1)
	}
	log.Info("encrypt/decrypt round trip", "bytes", len(encrypted), "matched", string(decrypted) == string(plaintext))
}

func runSealOpen(log *slog.Logger, alice, bob *certs.Identity, plaintext []byte) {
	recipients := []*smx509.Certificate{alice.Certificate, bob.Certificate}
	sealed, err := cms.Seal(recipients, plaintext)
	if err != nil {
		log.Error("seal", "error", err)
		os.Exit(1)
	}

	_, opened, err := cms.Open(bob.PrivateKey, bob.Certificate, sealed)
	if err != nil {
		log.Error("open", "error", err)
		os.Exit(1)
	}
	log.Info("seal/open round trip", "bytes", len(sealed), "matched", string(opened) == string(plaintext))

	carol, err := certs.NewSelfSigned("carol", 3, 365*24*time.Hour)
	if err != nil {
		log.Error("generate carol identity", "error", err)
		os.Exit(1)
	}
	if _, _, err := cms.Open(carol.PrivateKey, carol.Certificate, sealed); err != nil {
		log.Info("seal/open rejects unmatched recipient as expected", "error", err)
	}
}

func runSignVerify(log *slog.Logger, alice *certs.Identity, plaintext []byte) {
	signers := []*sm2.PrivateKey{alice.PrivateKey}
	signerCerts := []*smx509.Certificate{alice.Certificate}

	signed, err := cms.Sign(signers, signerCerts, plaintext)
	if err != nil {
		log.Error("sign", "error", err)
		os.Exit(1)
	}

	verified, err := cms.Verify(signed)
	if err != nil {
		log.Error("verify", "error", err)
		os.Exit(1)
	}
	log.Info("sign/verify round trip", "bytes", len(signed), "matched", string(verified) == string(plaintext))
}

func runSignAndSealOpenAndVerify(log *slog.Logger, alice, bob *certs.Identity, plaintext []byte) {
	recipients := []*smx509.Certificate{alice.Certificate, bob.Certificate}
	signers := []*sm2.PrivateKey{alice.PrivateKey}
	signerCerts := []*smx509.Certificate{alice.Certificate}

	sealedSigned, err := cms.SignAndSeal(recipients, signers, signerCerts, plaintext)
	if err != nil {
		log.Error("sign_and_seal", "error", err)
		os.Exit(1)
	}

	openedVerified, err := cms.OpenAndVerify(bob.PrivateKey, bob.Certificate, sealedSigned)
	if err != nil {
		log.Error("open_and_verify", "error", err)
		os.Exit(1)
	}
	log.Info("sign_and_seal/open_and_verify round trip", "bytes", len(sealedSigned), "matched", string(openedVerified) == string(plaintext))
}

// demoKeystoreRoundTrip prompts for a passphrase, wraps alice's private key
// scalar under it, and unwraps it again, exercising the keystore package.
func demoKeystoreRoundTrip(priv *sm2.PrivateKey) error {
	passphrase, err := keystore.PromptPassphrase("passphrase for demo key: ")
	if err != nil {
		return err
	}

	raw, err := keystore.EncodePrivateKey(priv)
	if err != nil {
		return err
	}

	blob, err := keystore.Seal(passphrase, raw)
	if err != nil {
		return err
	}

	_, err = keystore.Open(passphrase, blob)
	return err
}
