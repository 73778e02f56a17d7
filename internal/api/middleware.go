package api

import (
	"log"
	"net/http"
	"time"
)

// statusWriter captures the status code and byte count a handler actually
// sent, so the request log reflects what went over the wire.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Handlers that never call WriteHeader get recorded as implicit 200s.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// loggingMiddleware emits one line per request with method, path, status,
// response size, duration, and the caller's address.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		duration := time.Since(start).Milliseconds()

		log.Printf(
			"method=%s path=%s status=%d bytes=%d dur=%dms remote=%s",
			r.Method, r.URL.RequestURI(), sw.status, sw.bytes, duration, r.RemoteAddr,
		)
	})
}
