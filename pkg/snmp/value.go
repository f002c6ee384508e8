package snmp

import (
	"fmt"
	"net"
	"strconv"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

type ValueType int

const (
	NullValue ValueType = iota
	StringValue
	CounterValue
	GaugeValue
	TimeTicksValue
	OidValue
	IntegerValue
	IPValue
	OpaqueValue
	NoSuchObjectValue
	NoSuchInstanceValue
	EndOfMibViewValue
)

var valueTypeNames = [...]string{"Null", "String", "Counter", "Gauge", "TimeTicks", "OID", "Integer", "IP", "Opaque", "NoSuchObject", "NoSuchInstance", "EndOfMibView"}

func (t ValueType) String() string {
	if t < 0 || int(t) >= len(valueTypeNames) {
		return "Unknown"
	}
	return valueTypeNames[t]
}

var valueTypes = map[string]ValueType{
	"integer":        IntegerValue,
	"string":         StringValue,
	"objectID":       OidValue,
	"ipAddress":      IPValue,
	"counter32":      CounterValue,
	"counter64":      CounterValue,
	"gauge32":        GaugeValue,
	"timeticks":      TimeTicksValue,
	"opaque":         OpaqueValue,
	"unSpecified":    NullValue,
	"noSuchObject":   NoSuchObjectValue,
	"noSuchInstance": NoSuchInstanceValue,
	"endOfMibView":   EndOfMibViewValue,
}

// DecodeValue renders a VarBind value as text along with its SNMP type.
// OCTET STRING values that are not printable are shown in hex.
func DecodeValue(v asn1go.Choice) (string, ValueType, error) {
	vt, ok := valueTypes[v.Identifier]
	if !ok {
		return "", NullValue, fmt.Errorf("unsupported value type %q", v.Identifier)
	}
	switch vt {
	case NullValue, NoSuchObjectValue, NoSuchInstanceValue, EndOfMibViewValue:
		return "", vt, nil
	case StringValue, OpaqueValue:
		b, ok := asn1go.AsBytes(v.Value)
		if !ok {
			break
		}
		if vt == StringValue && isPrintable(b) {
			return string(b), vt, nil
		}
		return fmt.Sprintf("%x", b), vt, nil
	case IPValue:
		b, ok := asn1go.AsBytes(v.Value)
		if !ok || (len(b) != net.IPv4len && len(b) != net.IPv6len) {
			break
		}
		return net.IP(b).String(), vt, nil
	case OidValue:
		oid, ok := asn1go.AsOID(v.Value)
		if !ok {
			break
		}
		return oid.String(), vt, nil
	default:
		n, ok := asn1go.AsInt64(v.Value)
		if !ok {
			break
		}
		return strconv.FormatInt(n, 10), vt, nil
	}
	return "", vt, fmt.Errorf("malformed %s value %v", vt, v.Value)
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if (c < 0x20 || c > 0x7e) && c != '\t' && c != '\r' && c != '\n' {
			return false
		}
	}
	return true
}
