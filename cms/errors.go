package cms

import "errors"

// Sentinel errors returned by the codec and façade layers. Callers should
// compare with errors.Is; wrapped context is attached with
// github.com/pkg/errors at the point of failure.
var (
	// ErrMalformedStructure covers DER parse errors, unexpected tags,
	// trailing bytes and missing required fields.
	ErrMalformedStructure = errors.New("cms: malformed structure")

	// ErrUnsupportedAlgorithm is returned when an algorithm identifier
	// falls outside the fixed SM2/SM3/SM4-CBC suite.
	ErrUnsupportedAlgorithm = errors.New("cms: unsupported algorithm")

	// ErrInvalidParameter covers a wrong IV length, version != 1, or an OID
	// arc mismatch.
	ErrInvalidParameter = errors.New("cms: invalid parameter")

	// ErrUnexpectedContentType is returned when a ContentInfo's declared
	// type does not match the façade that parsed it.
	ErrUnexpectedContentType = errors.New("cms: unexpected content type")

	// ErrDecryptionFailure covers SM4 padding failures and SM2 decryption
	// failures.
	ErrDecryptionFailure = errors.New("cms: decryption failure")

	// ErrSignatureInvalid is returned when a SignerInfo fails to verify.
	ErrSignatureInvalid = errors.New("cms: signature invalid")

	// ErrCertificateNotFound is returned when a referenced issuer/serial
	// is absent from the enclosing certificates set, or no RecipientInfo
	// matches the caller's certificate.
	ErrCertificateNotFound = errors.New("cms: certificate not found")

	// ErrCryptoProvider wraps a failure signalled by an underlying SM2,
	// SM3 or SM4 primitive.
	ErrCryptoProvider = errors.New("cms: crypto provider error")
)
