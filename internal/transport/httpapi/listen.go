package httpapi

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"

	"go.uber.org/zap"
)

// Listen binds host:port. When the port is taken it tries the next span
// ports in order and fails after the last one.
func Listen(host string, port, span int, log *zap.Logger) (net.Listener, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if span < 0 {
		span = 0
	}
	for p := port; p <= port+span; p++ {
		addr := net.JoinHostPort(host, strconv.Itoa(p))
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			if p != port {
				log.Warn("port busy, using fallback", zap.Int("wanted", port), zap.Int("port", p))
			}
			return ln, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, err
		}
		log.Debug("port busy", zap.String("addr", addr))
	}
	return nil, fmt.Errorf("no free port in %s:%d..%d", host, port, port+span)
}
