package asn1binary

import (
	"math"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

// parseSubidentifiers reads base-128 varints. It fails on a truncated varint,
// a redundant leading 0x80 octet or a value above limit.
func parseSubidentifiers(content []byte, limit uint64) ([]uint64, bool) {
	var arcs []uint64
	for i := 0; i < len(content); {
		if content[i] == 0x80 {
			return nil, false
		}
		var n uint64
		for {
			if i >= len(content) {
				return nil, false
			}
			b := content[i]
			i++
			n = n<<7 | uint64(b&0x7f)
			if n > limit {
				return nil, false
			}
			if b&0x80 == 0 {
				break
			}
		}
		arcs = append(arcs, n)
	}
	return arcs, true
}

func errInvalidOID() error {
	return asn1error.New(asn1error.InvalidContent, "Invalid OBJECT IDENTIFIER")
}

func ParseOID(e asn1go.RawValue) (asn1go.OID, error) {
	if e.Tag.Constructed {
		return nil, errNotConstructed("OBJECT IDENTIFIER")
	}
	if len(e.Content) == 0 {
		return nil, errInvalidOID()
	}
	subs, ok := parseSubidentifiers(e.Content, math.MaxUint32+80)
	if !ok {
		return nil, errInvalidOID()
	}
	oid := make(asn1go.OID, 0, len(subs)+1)
	switch first := subs[0]; {
	case first < 40:
		oid = append(oid, 0, uint32(first))
	case first < 80:
		oid = append(oid, 1, uint32(first-40))
	default:
		oid = append(oid, 2, uint32(first-80))
	}
	for _, arc := range subs[1:] {
		if arc > math.MaxUint32 {
			return nil, errInvalidOID()
		}
		oid = append(oid, uint32(arc))
	}
	return oid, nil
}

func OIDContent(oid asn1go.OID) ([]byte, error) {
	if len(oid) < 2 || oid[0] > 2 || (oid[0] < 2 && oid[1] >= 40) {
		return nil, errInvalidOID()
	}
	b := appendBase128(nil, uint64(oid[0])*40+uint64(oid[1]))
	for _, arc := range oid[2:] {
		b = appendBase128(b, uint64(arc))
	}
	return b, nil
}

func ParseRelativeOID(e asn1go.RawValue) (asn1go.RelativeOID, error) {
	if e.Tag.Constructed {
		return nil, errNotConstructed("RELATIVE-OID")
	}
	subs, ok := parseSubidentifiers(e.Content, math.MaxUint32)
	if !ok {
		return nil, asn1error.New(asn1error.InvalidContent, "Invalid RELATIVE-OID")
	}
	oid := make(asn1go.RelativeOID, len(subs))
	for i, arc := range subs {
		oid[i] = uint32(arc)
	}
	return oid, nil
}

func RelativeOIDContent(oid asn1go.RelativeOID) []byte {
	var b []byte
	for _, arc := range oid {
		b = appendBase128(b, uint64(arc))
	}
	return b
}
