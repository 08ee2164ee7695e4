package audit

import (
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Middleware emits exactly one audit event per request on the given audit
// logger. Register it first so every later middleware and handler runs inside
// it; pair it with a Recover middleware that propagates errors, so panics
// reach this middleware as handler errors.
//
// The middleware never alters the response or replaces a handler error. It
// holds no per-request state between requests, so a single instance serves
// concurrent requests; serialization of the sink is the logger's concern.
func Middleware(auditLog *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			details := map[string]interface{}{
				"method": req.Method,
				"path":   req.URL.Path,
			}
			if q := req.URL.RawQuery; q != "" {
				details["query"] = q
			}

			event := NewEvent(ActionAPIRequest, req.URL.Path,
				WithSourceIP(clientIP(req)),
				WithUserAgent(userAgent(req)),
				WithDetails(details),
			)

			if err := next(c); err != nil {
				event.Outcome = OutcomeFailure
				event.Details["error"] = err.Error()
				event.Details["exception_type"] = fmt.Sprintf("%T", err)
				event.Emit(auditLog)
				return err
			}

			status := c.Response().Status
			if status >= http.StatusBadRequest {
				event.Outcome = OutcomeFailure
			}
			event.Details["status_code"] = status
			event.Details["response_time_ms"] = nil
			event.Emit(auditLog)
			return nil
		}
	}
}

// clientIP resolves the request origin: X-Forwarded-For verbatim, then
// X-Real-IP, then the transport peer with the port stripped.
func clientIP(req *http.Request) string {
	if ip := req.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := req.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(req.RemoteAddr); err == nil && host != "" {
		return host
	}
	if req.RemoteAddr != "" {
		return req.RemoteAddr
	}
	return "unknown"
}

func userAgent(req *http.Request) string {
	if ua := req.UserAgent(); ua != "" {
		return ua
	}
	return "unknown"
}
