package cms

import "encoding/asn1"

// Algorithm identifiers for the fixed GM suite. These are the only
// AlgorithmIdentifier.Algorithm values the codec accepts; anything else is
// rejected with ErrUnsupportedAlgorithm.
var (
	// OIDSM3 identifies the SM3 digest algorithm (used as SignerInfo's
	// digestAlgorithm).
	OIDSM3 = asn1.ObjectIdentifier{1, 2, 156, 10197, 1, 401}

	// OIDSM2SignWithSM3 identifies the sm2sign-with-sm3 signature
	// algorithm (SignerInfo's digestEncryptionAlgorithm).
	OIDSM2SignWithSM3 = asn1.ObjectIdentifier{1, 2, 156, 10197, 1, 501}

	// OIDSM4CBC identifies SM4 in CBC mode (EncryptedContentInfo's
	// contentEncryptionAlgorithm), parameterized by a 16-byte IV.
	OIDSM4CBC = asn1.ObjectIdentifier{1, 2, 156, 10197, 1, 104, 2}

	// OIDSM2Encrypt identifies SM2 public-key encryption (RecipientInfo's
	// keyEncryptionAlgorithm).
	OIDSM2Encrypt = asn1.ObjectIdentifier{1, 2, 156, 10197, 1, 301, 3}
)

// AlgorithmIdentifier mirrors pkix.AlgorithmIdentifier but keeps Parameters
// as a raw value so absent parameters round-trip as absent rather than as
// an explicit ASN.1 NULL, matching the GM/T encodings observed in
// interoperating implementations.
//
// AlgorithmIdentifier ::= SEQUENCE {
//   algorithm  OBJECT IDENTIFIER,
//   parameters ANY DEFINED BY algorithm OPTIONAL }
type AlgorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.RawValue `asn1:"optional"`
}

func sm3DigestAlgorithm() AlgorithmIdentifier {
	return AlgorithmIdentifier{Algorithm: OIDSM3}
}

func sm2SignatureAlgorithm() AlgorithmIdentifier {
	return AlgorithmIdentifier{Algorithm: OIDSM2SignWithSM3}
}

func sm2KeyEncryptionAlgorithm() AlgorithmIdentifier {
	return AlgorithmIdentifier{Algorithm: OIDSM2Encrypt}
}

// sm4CBCAlgorithm builds the SM4-CBC AlgorithmIdentifier with the IV carried
// as its parameters, which is how GM/T 0010 encodes the mode's IV.
func sm4CBCAlgorithm(iv []byte) (AlgorithmIdentifier, error) {
	ivDER, err := asn1.Marshal(iv)
	if err != nil {
		return AlgorithmIdentifier{}, err
	}
	var raw asn1.RawValue
	if _, err := asn1.Unmarshal(ivDER, &raw); err != nil {
		return AlgorithmIdentifier{}, err
	}
	return AlgorithmIdentifier{Algorithm: OIDSM4CBC, Parameters: raw}, nil
}
