package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDecodeEncode(t *testing.T) {
	out, err := run(t, "30 08 06 03 2b 06 01 02 01 05", "decode", "--hex", "VarBind")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"1.3.6.1","value":{"integer":5}}`, out)

	out, err = run(t, out, "encode", "--hex", "VarBind")
	require.NoError(t, err)
	assert.Equal(t, "300806032b0601020105\n", out)
}

func TestSchemaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.yaml")
	require.NoError(t, os.WriteFile(path, []byte("module: Flags\ntypes:\n  Flag: BOOLEAN\n"), 0o644))

	out, err := run(t, "true", "--schema", path, "encode", "--hex", "Flag")
	require.NoError(t, err)
	assert.Equal(t, "0101ff\n", out)

	_, err = run(t, "true", "--schema", path, "encode", "Missing")
	assert.ErrorContains(t, err, "Unknown type Missing in module Flags")
}

func TestDump(t *testing.T) {
	out, err := run(t, "30 03 02 01 2a", "dump", "--hex")
	require.NoError(t, err)
	assert.Contains(t, out, "SEQUENCE")
	assert.Contains(t, out, "42")

	_, err = run(t, "30 05 02 01", "dump", "--hex")
	assert.Error(t, err)
}

func TestBadInput(t *testing.T) {
	_, err := run(t, "zz", "decode", "--hex", "VarBind")
	assert.Error(t, err)
	_, err = run(t, "{", "encode", "VarBind")
	assert.ErrorContains(t, err, "reading JSON")
	_, err = run(t, "", "--log-level", "loud", "dump")
	assert.Error(t, err)
	_, err = run(t, "", "snmp", "get", "localhost", "not-an-oid")
	assert.ErrorContains(t, err, `invalid OID "not-an-oid"`)
}

func TestHasPrefix(t *testing.T) {
	root := asn1go.OID{1, 3, 6, 1, 2, 1, 1}
	assert.True(t, hasPrefix(asn1go.OID{1, 3, 6, 1, 2, 1, 1, 1, 0}, root))
	assert.False(t, hasPrefix(root, root))
	assert.False(t, hasPrefix(asn1go.OID{1, 3, 6, 1, 2, 1, 2, 1}, root))
}
