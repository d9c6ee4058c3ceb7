package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// captureWriter records status and up to limit body bytes while
// forwarding everything to the client.  limit <= 0 means unbounded.
type captureWriter struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newCaptureWriter(w http.ResponseWriter, limit int) *captureWriter {
	return &captureWriter{ResponseWriter: w, status: http.StatusOK, limit: limit}
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.truncated {
		if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
			cw.truncated = true
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}

// storedResponse is a replayable response kept in Redis.
type storedResponse struct {
	Status      int         `json:"status"`
	Header      http.Header `json:"header"`
	Body        []byte      `json:"body"`
	Fingerprint string      `json:"fingerprint,omitempty"`
}

func snapshot(status int, header http.Header, body []byte) storedResponse {
	hdr := make(http.Header, len(header))
	for k, vals := range header {
		if k == "Content-Length" || k == "X-Cache" || k == "X-Idempotent-Replay" {
			continue
		}
		hdr[k] = append([]string(nil), vals...)
	}
	return storedResponse{Status: status, Header: hdr, Body: append([]byte(nil), body...)}
}

func (s storedResponse) encode() ([]byte, error) { return json.Marshal(s) }

func decodeStored(bs []byte) (storedResponse, bool) {
	var s storedResponse
	if err := json.Unmarshal(bs, &s); err != nil || s.Status == 0 {
		return storedResponse{}, false
	}
	return s, true
}

// replay writes s to w, copying its headers.
func (s storedResponse) replay(w http.ResponseWriter) error {
	for k, vals := range s.Header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(s.Status)
	if len(s.Body) == 0 {
		return nil
	}
	_, err := w.Write(s.Body)
	return err
}
