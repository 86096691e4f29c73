package httpx

import (
	"net/http"
	"strconv"
	"time"
)

// HeaderProcessTime carries the handler wall time in seconds.
const HeaderProcessTime = "X-Process-Time"

// ProcessTime stamps X-Process-Time on the response just before the header is
// written. The value is informational.
func ProcessTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &timingWriter{ResponseWriter: w, start: time.Now()}
		next.ServeHTTP(tw, r)
		tw.stamp()
	})
}

type timingWriter struct {
	http.ResponseWriter

	start   time.Time
	stamped bool
}

func (w *timingWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	secs := time.Since(w.start).Seconds()
	w.Header().Set(HeaderProcessTime, strconv.FormatFloat(secs, 'f', 6, 64))
}

func (w *timingWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timingWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
