package internal

import (
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter to record the status code and
// body size and to tell whether anything has been written.
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	size    int64
	written bool
	mu      sync.Mutex
}

// NewResponseWriter creates a new ResponseWriter.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

// WriteHeader sends the status code once; later calls are ignored.
func (w *ResponseWriter) WriteHeader(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	w.status = code
	w.mu.Unlock()

	w.ResponseWriter.WriteHeader(code)
}

// Write writes the data to the connection as part of an HTTP reply.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	if !w.written {
		w.written = true
		w.mu.Unlock()
		w.ResponseWriter.WriteHeader(w.status)
	} else {
		w.mu.Unlock()
	}

	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Status returns the HTTP status code of the response.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of bytes written to the response body.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written returns true if the response has been written.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush implements the http.Flusher interface.
func (w *ResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
