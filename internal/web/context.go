package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/placemap/internal/core"
)

// importContext detaches the run from the request so a dropped connection
// cannot abort a write half way. The service applies its own deadline.
func importContext(r *http.Request) context.Context {
	ctx := context.WithoutCancel(r.Context())
	return core.ContextWithClientIP(ctx, clientIP(r))
}

// clientIP returns the caller address, already resolved by TrustedRealIP.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
