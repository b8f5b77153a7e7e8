package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/rouse/internal/logger"
)

// Prober answers "is this host up" with a single TCP connection
// attempt. Refused, unreachable, timed out and unresolvable all count
// as down; the caller only ever sees a bool.
type Prober struct {
	timeout time.Duration
	logger  logger.Logger
}

// New creates a prober with the given per-check timeout.
func New(timeout time.Duration, log logger.Logger) *Prober {
	return &Prober{
		timeout: timeout,
		logger:  log,
	}
}

// Check dials host:port once and reports whether the connection opened.
func (p *Prober) Check(ctx context.Context, host string, port int) bool {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		p.logger.Debug("host probe failed",
			logger.String("addr", addr),
			logger.Error(err))
		return false
	}
	defer conn.Close()

	p.logger.Debug("host probe succeeded", logger.String("addr", addr))
	return true
}
