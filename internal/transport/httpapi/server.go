// Package httpapi exposes the lookups as a small JSON API with an embedded
// single-page UI.
package httpapi

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"fdv.tools/internal/protocol"
	"fdv.tools/internal/query"
)

const (
	routeRaces       = "/api/races"
	routeSlot        = "/api/slot"
	routeFull        = "/api/full"
	routeDelta       = "/api/delta"
	routeAutoSlot    = "/api/autoslot"
	routeParseLevels = "/api/parse-levels"
	routeMeta        = "/api/meta"
	routeHealth      = "/healthz"
	routeMetrics     = "/metrics"
	routeWS          = "/v1/ws"
	routeMCP         = "/mcp"

	maxBodyBytes = 64 * 1024
)

//go:embed static/index.html
var staticFS embed.FS

var indexTmpl = template.Must(template.ParseFS(staticFS, "static/index.html"))

type Options struct {
	Logger *zap.Logger
	// Theme is handed to the page (dark, light or plain).
	Theme string
	// WS is mounted on /v1/ws when set; WSActive feeds the sessions gauge.
	WS       http.Handler
	WSActive func() int64
	// MCP is mounted on /mcp when set.
	MCP http.Handler
}

type Server struct {
	svc     *query.Service
	log     *zap.Logger
	metrics *Metrics
	opts    Options
}

func New(svc *query.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Theme == "" {
		opts.Theme = "dark"
	}
	return &Server{svc: svc, log: opts.Logger, metrics: NewMetrics(), opts: opts}
}

func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc(routeRaces, s.method(http.MethodGet, s.handleRaces))
	api.HandleFunc(routeSlot, s.method(http.MethodGet, s.handleSlot))
	api.HandleFunc(routeFull, s.method(http.MethodGet, s.handleFull))
	api.HandleFunc(routeDelta, s.method(http.MethodPost, s.handleDelta))
	api.HandleFunc(routeAutoSlot, s.method(http.MethodPost, s.handleAutoSlot))
	api.HandleFunc(routeParseLevels, s.method(http.MethodPost, s.handleParseLevels))
	api.HandleFunc(routeMeta, s.method(http.MethodGet, s.handleMeta))
	api.HandleFunc(routeHealth, s.method(http.MethodGet, s.handleHealth))
	api.HandleFunc(routeMetrics, s.method(http.MethodGet, s.handleMetrics))
	if s.opts.MCP != nil {
		api.Handle(routeMCP, s.opts.MCP)
	}
	api.HandleFunc("/", s.handleIndex)

	root := http.NewServeMux()
	if s.opts.WS != nil {
		// Hijacked connections bypass gzip and the status recorder.
		root.Handle(routeWS, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			s.metrics.observe(routeWS, http.StatusSwitchingProtocols)
			s.opts.WS.ServeHTTP(rw, r)
		}))
	}
	root.Handle("/", s.observe(gzhttp.GzipHandler(api)))
	return root
}

func (s *Server) method(want string, h http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != want && !(want == http.MethodGet && r.Method == http.MethodHead) {
			rw.Header().Set("Allow", want)
			s.writeError(rw, protocol.ErrMethodNotAllowed, fmt.Sprintf("%s not allowed, use %s", r.Method, want))
			return
		}
		h(rw, r)
	}
}

func (s *Server) handleRaces(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, s.svc.Races())
}

func (s *Server) handleMeta(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, s.svc.Meta())
}

func (s *Server) handleSlot(rw http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.svc.Slot(protocol.SlotRequest{Race: q.Get("race"), Slot: protocol.SlotValue(q.Get("slot"))})
	s.reply(rw, res, err)
}

func (s *Server) handleFull(rw http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.svc.Full(protocol.FullRequest{Race: q.Get("race"), Tier: protocol.TierValue(q.Get("tier"))})
	s.reply(rw, res, err)
}

func (s *Server) handleDelta(rw http.ResponseWriter, r *http.Request) {
	var req protocol.DeltaRequest
	if err := s.decode(r, protocol.SchemaDelta, &req); err != nil {
		s.reply(rw, nil, err)
		return
	}
	res, err := s.svc.Delta(req)
	s.reply(rw, res, err)
}

func (s *Server) handleAutoSlot(rw http.ResponseWriter, r *http.Request) {
	var req protocol.AutoSlotRequest
	if err := s.decode(r, protocol.SchemaAutoSlot, &req); err != nil {
		s.reply(rw, nil, err)
		return
	}
	res, err := s.svc.AutoSlot(req)
	s.reply(rw, res, err)
}

func (s *Server) handleParseLevels(rw http.ResponseWriter, r *http.Request) {
	var req protocol.ParseLevelsRequest
	if err := s.decode(r, protocol.SchemaParseLevels, &req); err != nil {
		s.reply(rw, nil, err)
		return
	}
	res, err := s.svc.ParseLevels(req)
	s.reply(rw, res, err)
}

func (s *Server) handleHealth(rw http.ResponseWriter, r *http.Request) {
	ds := s.svc.Dataset()
	writeJSON(rw, http.StatusOK, map[string]any{"ok": true, "variant": ds.Variant(), "digest": ds.Digest()})
}

func (s *Server) handleMetrics(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
	g := Gauges{Variant: s.svc.Dataset().Variant(), Digest: s.svc.Dataset().Digest()}
	if s.opts.WSActive != nil {
		g.WSSessions = s.opts.WSActive()
	}
	s.metrics.WriteText(rw, g)
}

func (s *Server) handleIndex(rw http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(rw, protocol.ErrNotFound, "no route for "+r.URL.Path)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		rw.Header().Set("Allow", http.MethodGet)
		s.writeError(rw, protocol.ErrMethodNotAllowed, r.Method+" not allowed, use GET")
		return
	}
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := indexTmpl.Execute(rw, map[string]string{
		"Theme":   s.opts.Theme,
		"Variant": s.svc.Dataset().Variant(),
		"Version": protocol.Version,
	})
	if err != nil {
		s.log.Error("render index", zap.Error(err))
	}
}

func (s *Server) decode(r *http.Request, schema string, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: %v", protocol.ErrInvalidBody, err)
	}
	if len(raw) > maxBodyBytes {
		return fmt.Errorf("%w: body larger than %d bytes", protocol.ErrInvalidBody, maxBodyBytes)
	}
	return protocol.DecodeValidated(schema, raw, dst)
}

func (s *Server) reply(rw http.ResponseWriter, v any, err error) {
	if err == nil {
		writeJSON(rw, http.StatusOK, v)
		return
	}
	code := protocol.CodeFor(err)
	if code == protocol.ErrInternal {
		s.log.Error("query failed", zap.Error(err))
	}
	s.writeError(rw, code, err.Error())
}

func (s *Server) writeError(rw http.ResponseWriter, code, message string) {
	s.metrics.apiError(code)
	writeJSON(rw, protocol.HTTPStatus(code), protocol.ErrorResponse{
		Error: protocol.ErrorBody{Code: code, Message: message},
	})
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(status)
	enc := json.NewEncoder(rw)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
