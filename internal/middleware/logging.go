package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hongminglow/tasks-be/internal/eventlog"
)

// Origin returns the request's Origin header, or "-" when absent.
func Origin(r *http.Request) string {
	if origin := r.Header.Get("Origin"); origin != "" {
		return origin
	}
	return "-"
}

// Logging records every request in events before it is handled and logs the
// outcome once the handler returns.
func Logging(log logrus.FieldLogger, events eventlog.Recorder) Func {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			events.Record(fmt.Sprintf("%s\t%s\t%s", r.Method, r.URL.RequestURI(), Origin(r)))

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("http request")
		})
	}
}
