package snmp

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"time"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

type connection struct {
	protocol *protocol
	conn     *net.UDPConn
}

func (c *connection) Close() error {
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return fmt.Errorf("connection already closed")
}

func (c *connection) Send(pType PDUType, pdu *PDU) error {
	bytes, err := c.protocol.EncodePDU(pType, pdu)
	if err != nil {
		return err
	}
	_, err = c.conn.Write(bytes)
	if err != nil {
		return fmt.Errorf("error sending SNMP message: %w", err)
	}
	return nil
}

func (c *connection) Receive() (*Message, error) {
	buffer := make([]byte, c.protocol.bufferSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.protocol.receiveTimeout)); err != nil {
		return nil, err
	}
	n, err := c.conn.Read(buffer)
	if err != nil {
		return nil, fmt.Errorf("error reading SNMP message: %w", err)
	}
	return c.protocol.DecodeFrame(buffer[:n])
}

// Get sends a GET for oids and waits for the matching RESPONSE. Responses to
// other requests are discarded until ctx is done or the connection times
// out.
func Get(ctx context.Context, conn Connection, oids ...asn1go.OID) (*PDU, error) {
	return request(ctx, conn, GET, oids)
}

func GetNext(ctx context.Context, conn Connection, oids ...asn1go.OID) (*PDU, error) {
	return request(ctx, conn, GET_NEXT, oids)
}

func request(ctx context.Context, conn Connection, pType PDUType, oids []asn1go.OID) (*PDU, error) {
	pdu := &PDU{
		Type:      pType,
		RequestID: rand.Int32(),
	}
	for _, oid := range oids {
		pdu.VarBinds = append(pdu.VarBinds, VarBind{OID: oid, Value: Unspecified})
	}
	if err := conn.Send(pType, pdu); err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		message, err := conn.Receive()
		if err != nil {
			return nil, err
		}
		if message.PDU.Type == RESPONSE && message.PDU.RequestID == pdu.RequestID {
			return &message.PDU, nil
		}
	}
}
