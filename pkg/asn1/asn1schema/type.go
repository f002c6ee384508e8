// Package asn1schema describes ASN.1 types as an immutable tree that the BER
// engines walk. The set of variants is closed: every Type is one of the
// structs in this package, and the engines switch over them exhaustively.
package asn1schema

import (
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
)

type Type interface {
	// Tags lists every tag that may introduce a value of this type on the
	// wire. CHOICE, tagged and referenced types compute this from their
	// children.
	Tags() []asn1core.Tag
	// TypeName is the ASN.1 notation used in error messages.
	TypeName() string

	sealed()
}

func universal(number uint32) []asn1core.Tag {
	return []asn1core.Tag{asn1core.NewUniversal(number)}
}

func constructed(number uint32) []asn1core.Tag {
	return []asn1core.Tag{asn1core.NewUniversal(number).WithConstructed(true)}
}

type Boolean struct{}

func (*Boolean) Tags() []asn1core.Tag { return universal(asn1core.TagBoolean) }
func (*Boolean) TypeName() string { return "BOOLEAN" }
func (*Boolean) sealed() {}

// Integer optionally carries an inclusive value range.
type Integer struct {
	Min, Max *int64
}

func NewRangedInteger(min, max int64) *Integer {
	return &Integer{Min: &min, Max: &max}
}

func (*Integer) Tags() []asn1core.Tag { return universal(asn1core.TagInteger) }
func (*Integer) TypeName() string { return "INTEGER" }
func (*Integer) sealed() {}

// InRange reports whether n satisfies the range constraint.
func (t *Integer) InRange(n int64) bool {
	if t.Min != nil && n < *t.Min {
		return false
	}
	if t.Max != nil && n > *t.Max {
		return false
	}
	return true
}

type BitString struct{}

func (*BitString) Tags() []asn1core.Tag { return universal(asn1core.TagBitString) }
func (*BitString) TypeName() string { return "BIT STRING" }
func (*BitString) sealed() {}

type OctetString struct{}

func (*OctetString) Tags() []asn1core.Tag { return universal(asn1core.TagOctetString) }
func (*OctetString) TypeName() string { return "OCTET STRING" }
func (*OctetString) sealed() {}

type Null struct{}

func (*Null) Tags() []asn1core.Tag { return universal(asn1core.TagNull) }
func (*Null) TypeName() string { return "NULL" }
func (*Null) sealed() {}

type ObjectIdentifier struct{}

func (*ObjectIdentifier) Tags() []asn1core.Tag { return universal(asn1core.TagOID) }
func (*ObjectIdentifier) TypeName() string { return "OBJECT IDENTIFIER" }
func (*ObjectIdentifier) sealed() {}

type RelativeOID struct{}

func (*RelativeOID) Tags() []asn1core.Tag { return universal(asn1core.TagRelativeOID) }
func (*RelativeOID) TypeName() string { return "RELATIVE-OID" }
func (*RelativeOID) sealed() {}

type Real struct{}

func (*Real) Tags() []asn1core.Tag { return universal(asn1core.TagReal) }
func (*Real) TypeName() string { return "REAL" }
func (*Real) sealed() {}

// String is one of the restricted character string types.
type String struct {
	Kind asn1core.StringKind
}

func NewString(kind asn1core.StringKind) *String {
	return &String{Kind: kind}
}

func (t *String) Tags() []asn1core.Tag { return universal(t.Kind.Number()) }
func (t *String) TypeName() string { return t.Kind.String() }
func (*String) sealed() {}

type UTCTime struct{}

func (*UTCTime) Tags() []asn1core.Tag { return universal(asn1core.TagUTCTime) }
func (*UTCTime) TypeName() string { return "UTCTime" }
func (*UTCTime) sealed() {}

type GeneralizedTime struct{}

func (*GeneralizedTime) Tags() []asn1core.Tag { return universal(asn1core.TagGeneralizedTime) }
func (*GeneralizedTime) TypeName() string { return "GeneralizedTime" }
func (*GeneralizedTime) sealed() {}

type External struct{}

func (*External) Tags() []asn1core.Tag { return constructed(asn1core.TagExternal) }
func (*External) TypeName() string { return "EXTERNAL" }
func (*External) sealed() {}

type EmbeddedPDV struct{}

func (*EmbeddedPDV) Tags() []asn1core.Tag { return constructed(asn1core.TagEmbeddedPDV) }
func (*EmbeddedPDV) TypeName() string { return "EMBEDDED PDV" }
func (*EmbeddedPDV) sealed() {}

var (
	_ Type = (*Boolean)(nil)
	_ Type = (*Integer)(nil)
	_ Type = (*BitString)(nil)
	_ Type = (*OctetString)(nil)
	_ Type = (*Null)(nil)
	_ Type = (*ObjectIdentifier)(nil)
	_ Type = (*RelativeOID)(nil)
	_ Type = (*Real)(nil)
	_ Type = (*Enumerated)(nil)
	_ Type = (*String)(nil)
	_ Type = (*UTCTime)(nil)
	_ Type = (*GeneralizedTime)(nil)
	_ Type = (*Sequence)(nil)
	_ Type = (*Set)(nil)
	_ Type = (*SequenceOf)(nil)
	_ Type = (*SetOf)(nil)
	_ Type = (*Choice)(nil)
	_ Type = (*Tagged)(nil)
	_ Type = (*Optional)(nil)
	_ Type = (*Default)(nil)
	_ Type = (*External)(nil)
	_ Type = (*EmbeddedPDV)(nil)
	_ Type = (*Referenced)(nil)
)
