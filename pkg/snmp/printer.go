package snmp

import (
	"fmt"
	"io"
)

type VarBindHandler interface {
	Handle(vb *VarBind) error
	Flush() error
}

//-------------------------------------

// VarBindHandlerFunc is called with nil on Flush.
type VarBindHandlerFunc func(vb *VarBind) error

func (f VarBindHandlerFunc) Handle(vb *VarBind) error {
	return f(vb)
}
func (f VarBindHandlerFunc) Flush() error {
	return f(nil)
}

//-------------------------------------

type VarBindPrinter struct {
	w      io.Writer
	indent string
}

var _ VarBindHandler = &VarBindPrinter{}

func NewVarBindPrinter(w io.Writer, indent string) *VarBindPrinter {
	return &VarBindPrinter{w: w, indent: indent}
}

func (printer *VarBindPrinter) Handle(vb *VarBind) error {
	text, vt, err := DecodeValue(vb.Value)
	if err != nil {
		_, err = fmt.Fprintf(printer.w, "%sOID: %s Value: %v (%s)\n", printer.indent, vb.OID, vb.Value, err)
		return err
	}
	_, err = fmt.Fprintf(printer.w, "%sOID: %s %s: %s\n", printer.indent, vb.OID, vt, text)
	return err
}

func (printer *VarBindPrinter) Flush() error {
	return nil
}

// Walk passes every VarBind of pdu to handler and then flushes it.
func Walk(pdu *PDU, handler VarBindHandler) error {
	for i := range pdu.VarBinds {
		if err := handler.Handle(&pdu.VarBinds[i]); err != nil {
			return err
		}
	}
	return handler.Flush()
}
