// Package mcp exposes the lookups as tools over JSON-RPC on POST /mcp, so
// assistants and scripts can call them with the same parameters as the
// websocket QUERY ops.
package mcp

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fdv.tools/internal/protocol"
	"fdv.tools/internal/query"
)

const (
	ProtocolVersion = "2024-11-05"
	toolPrefix      = "fdv."
	maxBodyBytes    = 64 * 1024
)

type tool struct {
	op          string
	schema      string
	description string
}

var tools = []tool{
	{protocol.OpMeta, "", "Dataset variant, digest and protocol version."},
	{protocol.OpRaces, "", "Races with their buildings, aliases and the 18 slot labels."},
	{protocol.OpSlot, protocol.SchemaSlot, "Minimum building levels and population threshold for a race at a slot (1..18 or 1.1..3.6)."},
	{protocol.OpFull, protocol.SchemaFull, "All six slots of a tier (1, 2 or 3) for a race."},
	{protocol.OpDelta, protocol.SchemaDelta, "Missing levels, progress and upgrade priority against current levels."},
	{protocol.OpAutoSlot, protocol.SchemaAutoSlot, "Highest slot met by the current levels and the delta to the next one."},
	{protocol.OpParseLevels, protocol.SchemaParseLevels, "Parse pasted text (CSV, name=level lines) into a current-levels vector."},
}

type Server struct {
	svc *query.Service
	log *zap.Logger
}

func NewServer(svc *query.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, log: logger}
}

func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleMCP)
}

func (s *Server) handleMCP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.Header().Set("Allow", http.MethodPost)
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil || len(body) > maxBodyBytes {
		writeRPC(rw, rpcErr(nil, codeInvalidRequest, "body too large or unreadable", nil))
		return
	}

	req, rerr := parseRPCRequest(body)
	if rerr != nil {
		writeRPC(rw, rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: rerr})
		return
	}
	writeRPC(rw, s.dispatch(req))
}

func (s *Server) dispatch(req rpcRequest) rpcResponse {
	switch req.Method {
	case "initialize":
		return rpcOK(req.ID, map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{"listChanged": false},
			},
			"serverInfo": map[string]any{"name": "fdv", "version": protocol.Version},
		})

	case "tools/list", "list_tools":
		list, err := toolsList()
		if err != nil {
			s.log.Error("tool schemas", zap.Error(err))
			return rpcErr(req.ID, codeInternal, err.Error(), nil)
		}
		return rpcOK(req.ID, map[string]any{"tools": list})

	case "tools/call", "call_tool":
		var p struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if len(req.Params) == 0 {
			return rpcErr(req.ID, codeInvalidParams, "missing params", nil)
		}
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return rpcErr(req.ID, codeInvalidParams, "bad params", err.Error())
		}
		op, ok := opForTool(p.Name)
		if !ok {
			return rpcErr(req.ID, codeMethodNotFound, "tool not found", map[string]any{"name": p.Name})
		}
		out, err := s.svc.Do(op, p.Arguments)
		if err != nil {
			code := protocol.CodeFor(err)
			if code == protocol.ErrInternal {
				s.log.Error("tool failed", zap.String("tool", p.Name), zap.Error(err))
				return rpcErr(req.ID, codeInternal, err.Error(), map[string]any{"code": code})
			}
			return rpcErr(req.ID, codeInvalidParams, err.Error(), map[string]any{"code": code})
		}
		return rpcOK(req.ID, out)

	default:
		return rpcErr(req.ID, codeMethodNotFound, "method not found", map[string]any{"method": req.Method})
	}
}

func toolsList() ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		var schema any = map[string]any{"type": "object", "additionalProperties": false}
		if t.schema != "" {
			raw, err := protocol.RawSchema(t.schema)
			if err != nil {
				return nil, err
			}
			schema = raw
		}
		out = append(out, map[string]any{
			"name":        toolPrefix + t.op,
			"description": t.description,
			"inputSchema": schema,
		})
	}
	return out, nil
}

func opForTool(name string) (string, bool) {
	op, ok := strings.CutPrefix(name, toolPrefix)
	if !ok {
		return "", false
	}
	for _, t := range tools {
		if t.op == op {
			return op, true
		}
	}
	return "", false
}

func writeRPC(rw http.ResponseWriter, resp rpcResponse) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(resp)
}
