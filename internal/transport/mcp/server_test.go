package mcp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fdv.tools/internal/catalogs"
	"fdv.tools/internal/protocol"
	"fdv.tools/internal/query"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ds, err := catalogs.Load(catalogs.DefaultVariant)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	hs := httptest.NewServer(NewServer(query.New(ds), nil).Handler())
	t.Cleanup(hs.Close)
	return hs
}

type testResponse struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func rpcPost(t *testing.T, url string, payload any) testResponse {
	t.Helper()
	b, _ := json.Marshal(payload)
	res, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", res.StatusCode)
	}
	var out testResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestToolsList(t *testing.T) {
	hs := newTestServer(t)
	resp := rpcPost(t, hs.URL, map[string]any{"jsonrpc": "2.0", "id": 1, "method": "tools/list"})
	if resp.Error != nil {
		t.Fatalf("error: %+v", resp.Error)
	}
	var out struct {
		Tools []struct {
			Name        string          `json:"name"`
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Tools) != 7 {
		t.Fatalf("tools=%d", len(out.Tools))
	}
	if out.Tools[2].Name != "fdv.slot" || !bytes.Contains(out.Tools[2].InputSchema, []byte(`"race"`)) {
		t.Fatalf("slot tool: %s %s", out.Tools[2].Name, out.Tools[2].InputSchema)
	}
}

func TestCallTool(t *testing.T) {
	hs := newTestServer(t)
	resp := rpcPost(t, hs.URL, map[string]any{
		"jsonrpc": "2.0", "id": "a", "method": "tools/call",
		"params": map[string]any{"name": "fdv.slot", "arguments": map[string]any{"race": "humains", "slot": "2.1"}},
	})
	if resp.Error != nil {
		t.Fatalf("error: %+v", resp.Error)
	}
	if string(resp.ID) != `"a"` {
		t.Fatalf("id=%s", resp.ID)
	}
	var slot protocol.SlotResponse
	if err := json.Unmarshal(resp.Result, &slot); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if slot.Population != 1200000 {
		t.Fatalf("population=%d", slot.Population)
	}
}

func TestCallTool_Errors(t *testing.T) {
	hs := newTestServer(t)
	cases := []struct {
		name string
		req  map[string]any
		code int
		wire string
	}{
		{"unknown tool", map[string]any{"method": "call_tool", "params": map[string]any{"name": "fdv.nope"}}, codeMethodNotFound, ""},
		{"foreign tool", map[string]any{"method": "call_tool", "params": map[string]any{"name": "slot"}}, codeMethodNotFound, ""},
		{"missing params", map[string]any{"method": "tools/call"}, codeInvalidParams, ""},
		{"bad race", map[string]any{"method": "tools/call", "params": map[string]any{"name": "fdv.full", "arguments": map[string]any{"race": "elves", "tier": 1}}}, codeInvalidParams, protocol.ErrInvalidRace},
		{"schema", map[string]any{"method": "tools/call", "params": map[string]any{"name": "fdv.delta", "arguments": map[string]any{"race": "1"}}}, codeInvalidParams, protocol.ErrBadRequest},
		{"unknown method", map[string]any{"method": "resources/list"}, codeMethodNotFound, ""},
	}
	for _, c := range cases {
		c.req["jsonrpc"] = "2.0"
		c.req["id"] = 7
		resp := rpcPost(t, hs.URL, c.req)
		if resp.Error == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		if resp.Error.Code != c.code {
			t.Fatalf("%s: code=%d want %d", c.name, resp.Error.Code, c.code)
		}
		if c.wire != "" {
			data, _ := resp.Error.Data.(map[string]any)
			if data["code"] != c.wire {
				t.Fatalf("%s: data=%v want %s", c.name, resp.Error.Data, c.wire)
			}
		}
	}
}

func TestMalformedRequests(t *testing.T) {
	hs := newTestServer(t)

	res, err := http.Post(hs.URL, "application/json", bytes.NewReader([]byte(`{nope`)))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	var out testResponse
	_ = json.NewDecoder(res.Body).Decode(&out)
	res.Body.Close()
	if out.Error == nil || out.Error.Code != codeParseError {
		t.Fatalf("parse error: %+v", out.Error)
	}

	resp := rpcPost(t, hs.URL, map[string]any{"jsonrpc": "1.0", "method": "initialize"})
	if resp.Error == nil || resp.Error.Code != codeInvalidRequest {
		t.Fatalf("version: %+v", resp.Error)
	}

	res, err = http.Get(hs.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET status=%d", res.StatusCode)
	}
}

func TestInitialize(t *testing.T) {
	hs := newTestServer(t)
	resp := rpcPost(t, hs.URL, map[string]any{"jsonrpc": "2.0", "id": 1, "method": "initialize"})
	if resp.Error != nil || !bytes.Contains(resp.Result, []byte(ProtocolVersion)) {
		t.Fatalf("initialize: %s %+v", resp.Result, resp.Error)
	}
}
