package audit

import (
	"net"
	"net/http"
	"strings"
)

var clientIPHeaders = []string{"X-Forwarded-For", "X-Real-IP"}

// ClientIP resolves the originating client address, preferring proxy
// headers over the socket peer.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, name := range clientIPHeaders {
		value := r.Header.Get(name)
		if value == "" {
			continue
		}
		if i := strings.IndexByte(value, ','); i >= 0 {
			value = value[:i]
		}
		return strings.TrimSpace(value)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
