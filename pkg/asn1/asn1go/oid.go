package asn1go

import (
	"slices"
	"strconv"
	"strings"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
)

type OID []uint32

func (o OID) String() string {
	return joinArcs(o)
}

func (o OID) Equal(other OID) bool {
	return slices.Equal(o, other)
}

// HasPrefix reports whether prefix is a leading run of arcs of o.
func (o OID) HasPrefix(prefix OID) bool {
	return len(o) >= len(prefix) && slices.Equal(o[:len(prefix)], prefix)
}

func ParseOID(s string) (OID, error) {
	arcs, err := parseArcs(s)
	if err != nil {
		return nil, err
	}
	if len(arcs) < 2 {
		return nil, asn1error.NewErrorf("OID %q needs at least two arcs", s).WithType(asn1error.InvalidContent)
	}
	return OID(arcs), nil
}

// RelativeOID holds the arcs of a RELATIVE-OID; it may be empty.
type RelativeOID []uint32

func (o RelativeOID) String() string {
	return joinArcs(o)
}

func (o RelativeOID) Equal(other RelativeOID) bool {
	return slices.Equal(o, other)
}

func ParseRelativeOID(s string) (RelativeOID, error) {
	if s == "" {
		return RelativeOID{}, nil
	}
	arcs, err := parseArcs(s)
	return RelativeOID(arcs), err
}

func joinArcs(arcs []uint32) string {
	sb := strings.Builder{}
	for i, v := range arcs {
		if i != 0 {
			sb.WriteString(".")
		}
		sb.WriteString(strconv.FormatUint(uint64(v), 10))
	}
	return sb.String()
}

func parseArcs(s string) ([]uint32, error) {
	parts := strings.Split(s, ".")
	arcs := make([]uint32, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			return nil, asn1error.NewErrorf("OID element %d of %q is empty", i, s).WithType(asn1error.InvalidContent)
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, asn1error.NewErrorf("OID element %d of %q is not a number", i, s).WithType(asn1error.InvalidContent)
		}
		arcs = append(arcs, uint32(n))
	}
	return arcs, nil
}
