// Package dump lists the TLVs of a BER buffer without a schema.
package dump

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1binary"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// MaxValueBytes limits how much primitive content is shown in hex.
const MaxValueBytes = 24

type Entry struct {
	Depth  int
	Offset int
	Tag    asn1core.Tag
	Header int
	Length int
	Value  string
}

// Walk lists every element of data depth first. Constructed elements are
// descended into; entries found before an error are returned with it.
func Walk(data []byte) ([]Entry, error) {
	var entries []Entry
	err := walk(data, 0, 0, &entries)
	return entries, err
}

func walk(data []byte, depth, base int, entries *[]Entry) error {
	d := asn1binary.NewDecoder(data)
	for d.More() {
		offset := base + d.Offset()
		e, err := d.ReadElement()
		if err != nil {
			return fmt.Errorf("at offset %d: %w", offset, err)
		}
		entry := Entry{
			Depth:  depth,
			Offset: offset,
			Tag:    e.Tag,
			Header: len(e.Bytes) - len(e.Content),
			Length: len(e.Content),
		}
		if !e.Tag.Constructed {
			entry.Value = Describe(e)
		}
		*entries = append(*entries, entry)
		if e.Tag.Constructed {
			if err := walk(e.Content, depth+1, offset+entry.Header, entries); err != nil {
				return err
			}
		}
	}
	return nil
}

// Describe renders a primitive element, decoding universal types it knows
// and falling back to hex.
func Describe(e asn1go.RawValue) string {
	if e.Tag.Class == asn1core.ClassUniversal {
		if s, err := describeUniversal(e); err == nil {
			return s
		}
	}
	return hexText(e.Content)
}

func describeUniversal(e asn1go.RawValue) (string, error) {
	switch e.Tag.Number {
	case asn1core.TagBoolean:
		b, err := asn1binary.ParseBoolean(e)
		return strconv.FormatBool(b), err
	case asn1core.TagInteger, asn1core.TagEnumerated:
		n, err := asn1binary.ParseInteger(asn1go.RawValue{Tag: asn1core.NewUniversal(asn1core.TagInteger), Content: e.Content})
		return strconv.FormatInt(n, 10), err
	case asn1core.TagNull:
		_, err := asn1binary.ParseNull(e)
		return "", err
	case asn1core.TagOID:
		oid, err := asn1binary.ParseOID(e)
		return oid.String(), err
	case asn1core.TagRelativeOID:
		oid, err := asn1binary.ParseRelativeOID(e)
		return oid.String(), err
	case asn1core.TagReal:
		f, err := asn1binary.ParseReal(e)
		return strconv.FormatFloat(f, 'g', -1, 64), err
	case asn1core.TagBitString:
		b, err := asn1binary.ParseBitString(e)
		return "'" + b.String() + "'B", err
	case asn1core.TagUTCTime:
		t, err := asn1binary.ParseUTCTime(e)
		return t.Format(time.RFC3339), err
	case asn1core.TagGeneralizedTime:
		t, err := asn1binary.ParseGeneralizedTime(e)
		return t.Format(time.RFC3339Nano), err
	}
	if kind, ok := asn1core.StringKindFor(e.Tag.Number); ok {
		s, err := asn1binary.ParseString(e, kind)
		return strconv.Quote(s), err
	}
	return "", fmt.Errorf("no rendering")
}

func hexText(b []byte) string {
	if len(b) > MaxValueBytes {
		return hex.EncodeToString(b[:MaxValueBytes]) + "..."
	}
	return hex.EncodeToString(b)
}

func tagName(tag asn1core.Tag) string {
	if tag.Class == asn1core.ClassUniversal {
		if name := asn1core.UniversalName(tag.Number); name != "" {
			return name
		}
	}
	return tag.String()
}

// Table lays entries out with the tag indented by depth.
func Table(entries []Entry) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Offset", "Tag", "Length", "Value"})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.Offset, strings.Repeat("  ", e.Depth) + tagName(e.Tag), e.Length, e.Value})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	tw.SetStyle(table.StyleLight)
	return tw
}

// Render walks data and writes the table to w. The table is written even
// when the walk stops early, and the error is returned afterwards.
func Render(w io.Writer, data []byte) error {
	entries, err := Walk(data)
	tw := Table(entries)
	tw.SetOutputMirror(w)
	tw.Render()
	return err
}
