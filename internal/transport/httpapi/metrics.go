package httpapi

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

type routeStatus struct {
	route  string
	status int
}

// Metrics counts requests per route and status and API errors per code.
type Metrics struct {
	mu       sync.Mutex
	requests map[routeStatus]uint64
	errors   map[string]uint64
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests: map[routeStatus]uint64{},
		errors:   map[string]uint64{},
	}
}

func (m *Metrics) observe(route string, status int) {
	m.mu.Lock()
	m.requests[routeStatus{route, status}]++
	m.mu.Unlock()
}

func (m *Metrics) apiError(code string) {
	m.mu.Lock()
	m.errors[code]++
	m.mu.Unlock()
}

// Requests returns the count for one route and status.
func (m *Metrics) Requests(route string, status int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[routeStatus{route, status}]
}

// Gauges are sampled at scrape time.
type Gauges struct {
	Variant    string
	Digest     string
	WSSessions int64
}

// WriteText writes the Prometheus text exposition.
func (m *Metrics) WriteText(w io.Writer, g Gauges) {
	m.mu.Lock()
	reqs := make([]routeStatus, 0, len(m.requests))
	for k := range m.requests {
		reqs = append(reqs, k)
	}
	counts := make(map[routeStatus]uint64, len(m.requests))
	for k, v := range m.requests {
		counts[k] = v
	}
	codes := make([]string, 0, len(m.errors))
	errs := make(map[string]uint64, len(m.errors))
	for k, v := range m.errors {
		codes = append(codes, k)
		errs[k] = v
	}
	m.mu.Unlock()

	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].route != reqs[j].route {
			return reqs[i].route < reqs[j].route
		}
		return reqs[i].status < reqs[j].status
	})
	sort.Strings(codes)

	fmt.Fprintf(w, "# HELP fdv_http_requests_total HTTP requests by route and status.\n")
	fmt.Fprintf(w, "# TYPE fdv_http_requests_total counter\n")
	for _, k := range reqs {
		fmt.Fprintf(w, "fdv_http_requests_total{route=%q,status=\"%d\"} %d\n", k.route, k.status, counts[k])
	}
	fmt.Fprintf(w, "# HELP fdv_api_errors_total API errors by wire code.\n")
	fmt.Fprintf(w, "# TYPE fdv_api_errors_total counter\n")
	for _, c := range codes {
		fmt.Fprintf(w, "fdv_api_errors_total{code=%q} %d\n", c, errs[c])
	}
	fmt.Fprintf(w, "# HELP fdv_ws_sessions Open websocket sessions.\n")
	fmt.Fprintf(w, "# TYPE fdv_ws_sessions gauge\n")
	fmt.Fprintf(w, "fdv_ws_sessions %d\n", g.WSSessions)
	fmt.Fprintf(w, "# HELP fdv_dataset_info Loaded dataset variant.\n")
	fmt.Fprintf(w, "# TYPE fdv_dataset_info gauge\n")
	fmt.Fprintf(w, "fdv_dataset_info{variant=%q,digest=%q} 1\n", g.Variant, g.Digest)
}
