package cms

import (
	"encoding/asn1"

	"github.com/pkg/errors"
)

// Attribute is a single authenticated or unauthenticated SignerInfo
// attribute.
//
// Attribute ::= SEQUENCE {
//   attrType   OBJECT IDENTIFIER,
//   attrValues SET OF ANY }
type Attribute struct {
	Type   asn1.ObjectIdentifier
	Values asn1.RawValue `asn1:"set"`
}

// NewAttribute builds a single-valued Attribute by DER-encoding val as the
// attribute's sole SET element.
func NewAttribute(typ asn1.ObjectIdentifier, val interface{}) (Attribute, error) {
	valDER, err := asn1.Marshal(val)
	if err != nil {
		return Attribute{}, errors.Wrap(err, "cms: encode attribute value")
	}
	return Attribute{
		Type: typ,
		Values: asn1.RawValue{
			Class:      asn1.ClassUniversal,
			Tag:        asn1.TagSet,
			IsCompound: true,
			Bytes:      valDER,
		},
	}, nil
}

// Attributes is the common type for a SignerInfo's authenticatedAttrs and
// unauthenticatedAttrs fields.
//
// Attributes ::= SET OF Attribute
type Attributes []Attribute

// MarshaledForSigning DER-encodes attrs as needed for the signature input:
// the wire encoding uses an IMPLICIT [0] tag, but the value fed to the
// signature is the encoding with a universal SET OF tag (0x31) instead.
// This matters: the two forms share their length and content octets but
// differ in the tag byte, and the tag byte is part of the signature input.
func (attrs Attributes) MarshaledForSigning() ([]byte, error) {
	// asn1.Marshal has no direct "top-level SET OF" mode, so we marshal a
	// single-field struct whose field is tagged "set": Go's asn1 emits a
	// SEQUENCE wrapping a universal SET OF Attribute, and we then peel off
	// the outer SEQUENCE and return the SET with its tag and length.
	wrapped, err := asn1.Marshal(struct {
		Attributes `asn1:"set"`
	}{attrs})
	if err != nil {
		return nil, errors.Wrap(err, "cms: encode authenticatedAttributes for signing")
	}

	var outer asn1.RawValue
	if _, err := asn1.Unmarshal(wrapped, &outer); err != nil {
		return nil, errors.Wrap(err, "cms: unwrap authenticatedAttributes encoding")
	}

	// outer is the SEQUENCE wrapper; its content is the lone SET OF
	// Attribute child, tag and length included.
	var set asn1.RawValue
	if _, err := asn1.Unmarshal(outer.Bytes, &set); err != nil {
		return nil, errors.Wrap(err, "cms: unwrap authenticatedAttributes SET")
	}
	if set.Class != asn1.ClassUniversal || set.Tag != asn1.TagSet {
		return nil, errors.Wrap(ErrMalformedStructure, "cms: expected universal SET tag for signature input")
	}
	return outer.Bytes, nil
}

// GetValues returns the decoded values of every Attribute matching oid, in
// wire order. A nil Attributes yields (nil, nil); an Attributes with no
// matching attrType yields an empty, non-nil slice.
func (attrs Attributes) GetValues(oid asn1.ObjectIdentifier) ([]asn1.RawValue, error) {
	if attrs == nil {
		return nil, nil
	}
	vals := []asn1.RawValue{}
	for _, a := range attrs {
		if !a.Type.Equal(oid) {
			continue
		}
		rest := a.Values.Bytes
		for len(rest) > 0 {
			var elem asn1.RawValue
			var err error
			rest, err = asn1.Unmarshal(rest, &elem)
			if err != nil {
				return nil, errors.Wrap(ErrMalformedStructure, "cms: malformed attribute values")
			}
			vals = append(vals, elem)
		}
	}
	return vals, nil
}
