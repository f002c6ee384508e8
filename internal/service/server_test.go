package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pointSchema = `
module: Geometry
tagging: automatic
types:
  Point:
    type: SEQUENCE
    components:
      - {name: x, type: INTEGER}
      - {name: y, type: INTEGER}
      - {name: label, type: UTF8String, optional: true}
`

func newTestServer(t *testing.T, config string) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geometry.yaml"), []byte(pointSchema), 0o644))
	manager := NewManager()
	require.NoError(t, manager.LoadConfig(context.Background(), strings.NewReader(config), dir))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := httptest.NewServer(NewServerWithManager(manager, logger).Routes())
	t.Cleanup(server.Close)
	return server
}

const testConfig = `
max_body_bytes: 64
schemas:
  - {name: snmp, kind: snmp}
  - {name: geo, path: geometry.yaml}
`

func post(t *testing.T, url, contentType, body string) (int, string) {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestDecode(t *testing.T) {
	server := newTestServer(t, testConfig)

	status, body := post(t, server.URL+"/api/v1/decode/snmp/VarBind?format=hex", "text/plain", "30 08 06 03 2b 06 01 02 01 05")
	require.Equal(t, http.StatusOK, status, body)
	assert.JSONEq(t, `{"name":"1.3.6.1","value":{"integer":5}}`, body)

	raw, _ := hex.DecodeString("3006800102810103")
	status, body = post(t, server.URL+"/api/v1/decode/geo/Point", "application/octet-stream", string(raw))
	require.Equal(t, http.StatusOK, status, body)
	assert.JSONEq(t, `{"x":2,"y":3}`, body)
}

func TestEncode(t *testing.T) {
	server := newTestServer(t, testConfig)

	status, body := post(t, server.URL+"/api/v1/encode/geo/Point?format=hex", "application/json", `{"x":2,"y":3,"label":"a"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "3009800102810103820161\n", body)

	status, body = post(t, server.URL+"/api/v1/encode/geo/Point", "application/json", `{"x":2,"y":3}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "\x30\x06\x80\x01\x02\x81\x01\x03", body)
}

func TestErrors(t *testing.T) {
	server := newTestServer(t, testConfig)
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		kind   string
	}{
		{"unknown schema", "/api/v1/decode/nope/Point", "", http.StatusNotFound, ""},
		{"unknown type", "/api/v1/decode/geo/Line", "", http.StatusNotFound, ""},
		{"bad hex", "/api/v1/decode/geo/Point?format=hex", "zz", http.StatusBadRequest, ""},
		{"truncated", "/api/v1/decode/geo/Point?format=hex", "3006800102", http.StatusUnprocessableEntity, "malformed-length"},
		{"bad json", "/api/v1/encode/geo/Point", "{", http.StatusBadRequest, ""},
		{"wrong shape", "/api/v1/encode/geo/Point", `{"x":"two","y":3}`, http.StatusUnprocessableEntity, "value-shape"},
		{"too large", "/api/v1/dump", strings.Repeat("00", 40), http.StatusRequestEntityTooLarge, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			status, body := post(t, server.URL+test.path, "application/octet-stream", test.body)
			assert.Equal(t, test.status, status, body)
			var response errorResponse
			require.NoError(t, json.Unmarshal([]byte(body), &response))
			assert.NotEmpty(t, response.Error)
			assert.Equal(t, test.kind, response.Kind)
		})
	}
}

func TestDump(t *testing.T) {
	server := newTestServer(t, testConfig)
	status, body := post(t, server.URL+"/api/v1/dump?format=hex", "text/plain", "3006800102810103")
	require.Equal(t, http.StatusOK, status, body)
	var entries []dumpEntry
	require.NoError(t, json.Unmarshal([]byte(body), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, 0, entries[0].Depth)
	assert.Equal(t, 6, entries[0].Length)
	assert.Equal(t, 1, entries[1].Depth)
	assert.Equal(t, 2, entries[1].Offset)
	assert.Equal(t, 5, entries[2].Offset)
}

func TestTypesAndHealth(t *testing.T) {
	server := newTestServer(t, testConfig)

	resp, err := http.Get(server.URL + "/api/v1/types")
	require.NoError(t, err)
	defer resp.Body.Close()
	var types []TypeInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&types))
	assert.Contains(t, types, TypeInfo{Module: "geo", Name: "Point", TypeName: "SEQUENCE"})
	assert.Contains(t, types, TypeInfo{Module: "snmp", Name: "VarBind", TypeName: "SEQUENCE"})

	health, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	status, _ := post(t, server.URL+"/api/v1/dump?format=hex", "text/plain", "0500")
	require.Equal(t, http.StatusOK, status)
	metrics, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	text, _ := io.ReadAll(metrics.Body)
	assert.Contains(t, string(text), "codec_total")
}

func TestLoadConfigDefaults(t *testing.T) {
	manager := NewManager()
	require.NoError(t, manager.LoadConfig(context.Background(), strings.NewReader(""), ""))
	settings := manager.Settings()
	assert.Equal(t, ":8001", settings.Listen)
	assert.Equal(t, int64(1<<20), settings.MaxBodyBytes)
	assert.Equal(t, slog.LevelInfo, settings.LogLevel)
	_, err := manager.Lookup("snmp", "Message")
	assert.NoError(t, err)

	err = manager.LoadConfig(context.Background(), strings.NewReader("schemas: [{name: x, kind: ldap}]"), "")
	assert.ErrorContains(t, err, `unknown schema kind "ldap"`)
	err = manager.LoadConfig(context.Background(), strings.NewReader("listen: [1]"), "")
	assert.Error(t, err)
}
