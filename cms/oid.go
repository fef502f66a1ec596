package cms

import (
	"encoding/asn1"

	"github.com/pkg/errors"
)

// ContentType enumerates the six GM/T CMS content types.
type ContentType int

// Content type variants, fixed to the GM arc 1.2.156.10197.6.1.4.2.{1..6}.
const (
	ContentTypeData ContentType = iota + 1
	ContentTypeSignedData
	ContentTypeEnvelopedData
	ContentTypeSignedAndEnvelopedData
	ContentTypeEncryptedData
	ContentTypeKeyAgreementInfo
)

// gmArc is the GM content-type OID prefix; the content type is the
// terminal node, 1 through 6.
var gmArc = asn1.ObjectIdentifier{1, 2, 156, 10197, 6, 1, 4, 2}

var contentTypeNames = map[ContentType]string{
	ContentTypeData:                   "data",
	ContentTypeSignedData:             "signedData",
	ContentTypeEnvelopedData:          "envelopedData",
	ContentTypeSignedAndEnvelopedData: "signedAndEnvelopedData",
	ContentTypeEncryptedData:          "encryptedData",
	ContentTypeKeyAgreementInfo:       "keyAgreementInfo",
}

// String returns the content type's canonical name, or "unknown" if it is
// not one of the six defined variants.
func (ct ContentType) String() string {
	if name, ok := contentTypeNames[ct]; ok {
		return name
	}
	return "unknown"
}

// OID encodes a ContentType as its GM-assigned object identifier.
func (ct ContentType) OID() (asn1.ObjectIdentifier, error) {
	if ct < ContentTypeData || ct > ContentTypeKeyAgreementInfo {
		return nil, errors.Wrapf(ErrInvalidParameter, "content type %d has no OID", ct)
	}
	oid := make(asn1.ObjectIdentifier, len(gmArc)+1)
	copy(oid, gmArc)
	oid[len(gmArc)] = int(ct)
	return oid, nil
}

// ParseContentTypeOID decodes an object identifier into a ContentType,
// failing with ErrInvalidParameter if the arc doesn't match or the
// terminal node isn't in {1..6}.
func ParseContentTypeOID(oid asn1.ObjectIdentifier) (ContentType, error) {
	if len(oid) != len(gmArc)+1 {
		return 0, errors.Wrapf(ErrInvalidParameter, "oid %s: wrong arity", oid)
	}
	for i, n := range gmArc {
		if oid[i] != n {
			return 0, errors.Wrapf(ErrInvalidParameter, "oid %s: not under GM content-type arc", oid)
		}
	}
	v := oid[len(gmArc)]
	if v < int(ContentTypeData) || v > int(ContentTypeKeyAgreementInfo) {
		return 0, errors.Wrapf(ErrInvalidParameter, "oid %s: terminal node %d out of range", oid, v)
	}
	return ContentType(v), nil
}
