package snmp

import (
	"fmt"
	"net"
	"time"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1codec"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1reflect"
)

const (
	v1  = 0
	v2c = 1
)

const defaultPort = "161"

type wireMessage struct {
	Version   int           `asn1:"version"`
	Community []byte        `asn1:"community"`
	Data      asn1go.Choice `asn1:"data"`
}

type wirePDU struct {
	RequestID   int32     `asn1:"request-id"`
	ErrorStatus int       `asn1:"error-status"`
	ErrorIndex  int       `asn1:"error-index"`
	VarBinds    []VarBind `asn1:"variable-bindings"`
}

type wireBulkPDU struct {
	RequestID      int32     `asn1:"request-id"`
	NonRepeaters   int       `asn1:"non-repeaters"`
	MaxRepetitions int       `asn1:"max-repetitions"`
	VarBinds       []VarBind `asn1:"variable-bindings"`
}

type protocol struct {
	community      string
	version        int
	bufferSize     int
	receiveTimeout time.Duration
}

type ProtocolOption func(p *protocol) error

func NewProtocol(options ...ProtocolOption) (Protocol, error) {
	p := &protocol{
		version:        -1,
		bufferSize:     4096,
		receiveTimeout: 2 * time.Second,
	}
	for _, option := range options {
		err := option(p)
		if err != nil {
			return nil, err
		}
	}
	if p.version == -1 {
		return nil, fmt.Errorf("version is required")
	}
	if _, err := messageType(); err != nil {
		return nil, fmt.Errorf("loading SNMP schema: %w", err)
	}
	return p, nil
}

// Dial connects to host or host:port, defaulting to port 161. IPv6
// addresses with a port need brackets, eg [::1]:1161.
func (p *protocol) Dial(address string) (Connection, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		host, port = address, defaultPort
	}
	udpAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, fmt.Errorf("error resolving address %s: %w", address, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", udpAddr, err)
	}

	return &connection{protocol: p, conn: conn}, nil
}

func (p *protocol) DecodeFrame(frame []byte) (*Message, error) {
	mt, err := messageType()
	if err != nil {
		return nil, err
	}
	wire := wireMessage{}
	if err := asn1codec.Unmarshal(frame, mt, &wire); err != nil {
		return nil, fmt.Errorf("error unmarshaling SNMP message: %w", err)
	}
	message := &Message{
		Version:   wire.Version,
		Community: string(wire.Community),
	}
	message.PDU.Type = PDUType(wire.Data.Identifier)
	if message.PDU.Type == GET_BULK {
		bulk := wireBulkPDU{}
		err = asn1reflect.Assign(&bulk, wire.Data.Value)
		message.PDU.RequestID = bulk.RequestID
		message.PDU.ErrorStatus = bulk.NonRepeaters
		message.PDU.ErrorIndex = bulk.MaxRepetitions
		message.PDU.VarBinds = bulk.VarBinds
	} else {
		pdu := wirePDU{}
		err = asn1reflect.Assign(&pdu, wire.Data.Value)
		message.PDU.RequestID = pdu.RequestID
		message.PDU.ErrorStatus = pdu.ErrorStatus
		message.PDU.ErrorIndex = pdu.ErrorIndex
		message.PDU.VarBinds = pdu.VarBinds
	}
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling SNMP %s: %w", message.PDU.Type, err)
	}
	return message, nil
}

func (p *protocol) EncodePDU(pType PDUType, pdu *PDU) ([]byte, error) {
	mt, err := messageType()
	if err != nil {
		return nil, err
	}
	var body any
	if pType == GET_BULK {
		body = wireBulkPDU{
			RequestID:      pdu.RequestID,
			NonRepeaters:   pdu.ErrorStatus,
			MaxRepetitions: pdu.ErrorIndex,
			VarBinds:       pdu.VarBinds,
		}
	} else {
		body = wirePDU{
			RequestID:   pdu.RequestID,
			ErrorStatus: pdu.ErrorStatus,
			ErrorIndex:  pdu.ErrorIndex,
			VarBinds:    pdu.VarBinds,
		}
	}
	msg := wireMessage{
		Version:   p.version,
		Community: []byte(p.community),
		Data:      asn1go.Choice{Identifier: string(pType), Value: body},
	}
	bytes, err := asn1codec.Marshal(mt, msg)
	if err != nil {
		return nil, fmt.Errorf("error marshaling SNMP message: %w", err)
	}
	return bytes, nil
}

func WithV1(community string) ProtocolOption {
	return func(p *protocol) error {
		p.community = community
		p.version = v1
		return nil
	}
}

func WithV2(community string) ProtocolOption {
	return func(p *protocol) error {
		p.community = community
		p.version = v2c
		return nil
	}
}

func WithBufferSize(size int) ProtocolOption {
	return func(p *protocol) error {
		if size < 484 {
			return fmt.Errorf("buffer size %d is below the 484 bytes every agent may send", size)
		}
		p.bufferSize = size
		return nil
	}
}

func WithReceiveTimeout(timeout time.Duration) ProtocolOption {
	return func(p *protocol) error {
		p.receiveTimeout = timeout
		return nil
	}
}
