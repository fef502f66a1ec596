package cms

import (
	"encoding/asn1"

	"github.com/pkg/errors"
)

// ContentInfo is the outer DER wrapper for every message this library
// produces.
//
// ContentInfo ::= SEQUENCE {
//   contentType ContentType,
//   content     [0] EXPLICIT ANY DEFINED BY contentType }
type ContentInfo struct {
	ContentType asn1.ObjectIdentifier
	Content     asn1.RawValue `asn1:"explicit,tag:0"`
}

// NewContentInfo wraps a container's DER body in a ContentInfo of the given
// type. For ContentTypeData, body is double-wrapped: the explicit [0]
// content is an OCTET STRING holding body directly; for every other content
// type, body is assumed to already be the container's DER SEQUENCE and is
// carried as-is.
func NewContentInfo(ct ContentType, body []byte) (ContentInfo, error) {
	oid, err := ct.OID()
	if err != nil {
		return ContentInfo{}, err
	}

	content := body
	if ct == ContentTypeData {
		octets, err := asn1.Marshal(asn1.RawValue{
			Class: asn1.ClassUniversal,
			Tag:   asn1.TagOctetString,
			Bytes: body,
		})
		if err != nil {
			return ContentInfo{}, errors.Wrap(err, "cms: encode data OCTET STRING")
		}
		content = octets
	}

	return ContentInfo{
		ContentType: oid,
		Content: asn1.RawValue{
			Class:      asn1.ClassContextSpecific,
			Tag:        0,
			IsCompound: true,
			Bytes:      content,
		},
	}, nil
}

// Encode DER-encodes the ContentInfo.
func (ci ContentInfo) Encode() ([]byte, error) {
	return asn1.Marshal(ci)
}

// ParseContentInfo decodes a top-level ContentInfo, rejecting any trailing
// bytes.
func ParseContentInfo(der []byte) (ContentInfo, error) {
	var ci ContentInfo
	rest, err := asn1.Unmarshal(der, &ci)
	if err != nil {
		return ContentInfo{}, errors.Wrap(ErrMalformedStructure, err.Error())
	}
	if len(rest) > 0 {
		return ContentInfo{}, errors.Wrap(ErrMalformedStructure, "trailing bytes after ContentInfo")
	}
	return ci, nil
}

// Type decodes the ContentInfo's declared content type.
func (ci ContentInfo) Type() (ContentType, error) {
	return ParseContentTypeOID(ci.ContentType)
}

// Body returns the container's DER body: for ContentTypeData, the OCTET
// STRING payload with its tag/length peeled off; for every other type, the
// raw bytes handed to the type-specific container decoder.
func (ci ContentInfo) Body() ([]byte, error) {
	ct, err := ci.Type()
	if err != nil {
		return nil, err
	}

	if ct != ContentTypeData {
		return ci.Content.Bytes, nil
	}

	var octets asn1.RawValue
	if _, err := asn1.Unmarshal(ci.Content.Bytes, &octets); err != nil {
		return nil, errors.Wrap(ErrMalformedStructure, "cms: malformed data OCTET STRING")
	}
	if octets.Class != asn1.ClassUniversal || octets.Tag != asn1.TagOctetString {
		return nil, errors.Wrap(ErrMalformedStructure, "cms: data content is not an OCTET STRING")
	}
	return octets.Bytes, nil
}
