package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var errNoFlush = errors.New("response writer does not support streaming")

// sseStream writes Server-Sent Events for the streaming run endpoint.
type sseStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEStream(w http.ResponseWriter) (*sseStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errNoFlush
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")

	return &sseStream{w: w, flusher: flusher}, nil
}

// send emits one named event with a JSON payload and flushes it to the
// client immediately.
func (s *sseStream) send(event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, body); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// sendError reports a failure to the client before the stream closes.
func (s *sseStream) sendError(message string) {
	s.send("error", map[string]string{"error": message}) //nolint:errcheck
}
