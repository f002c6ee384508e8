package snmp

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1schema"
)

// PDUType names the alternative of the PDUs CHOICE that carries a PDU.
type PDUType string

const (
	GET      PDUType = "get-request"
	GET_NEXT PDUType = "get-next-request"
	RESPONSE PDUType = "response"
	SET      PDUType = "set-request"
	GET_BULK PDUType = "get-bulk-request"
	INFORM   PDUType = "inform-request"
	TRAP     PDUType = "snmpV2-trap"
	REPORT   PDUType = "report"
)

type Connection interface {
	Send(pType PDUType, pdu *PDU) error
	Receive() (*Message, error)
	Close() error
}

type Protocol interface {
	Dial(target string) (Connection, error)
	DecodeFrame(frame []byte) (*Message, error)
	EncodePDU(pType PDUType, pdu *PDU) ([]byte, error)
}

type VarBind struct {
	OID   asn1go.OID    `asn1:"name"`
	Value asn1go.Choice `asn1:"value"`
}

// Unspecified is the value sent in requests.
var Unspecified = asn1go.Choice{Identifier: "unSpecified", Value: asn1go.Null{}}

// PDU holds either kind of PDU. For GET_BULK the error fields are sent as
// non-repeaters and max-repetitions.
type PDU struct {
	Type        PDUType
	RequestID   int32
	ErrorStatus int
	ErrorIndex  int
	VarBinds    []VarBind
}

type Message struct {
	Version   int
	Community string
	PDU       PDU
}

//go:embed snmpv2.yaml
var schemaDocument string

var (
	schemaOnce   sync.Once
	schemaModule *asn1schema.Module
	schemaErr    error
)

// Schema returns the SNMPv2 module that frames are decoded with.
func Schema() (*asn1schema.Module, error) {
	schemaOnce.Do(func() {
		schemaModule, schemaErr = asn1schema.LoadModule(strings.NewReader(schemaDocument))
	})
	return schemaModule, schemaErr
}

func messageType() (asn1schema.Type, error) {
	m, err := Schema()
	if err != nil {
		return nil, err
	}
	return m.Resolve("Message")
}
