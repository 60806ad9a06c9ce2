package routes

import (
	"io"
	"net/http"

	"vidserve/logger"
)

// Headers mirrored verbatim from the upstream response. The upstream
// is authoritative for byte boundaries, so Content-Length and
// Content-Range are never recomputed here.
var mirroredHeaders = []string{
	"Content-Length",
	"Content-Range",
	"Accept-Ranges",
	"ETag",
	"Last-Modified",
}

// proxyUpstream forwards the request to a signed upstream URL and
// mirrors the upstream response back to the client. The client's range
// header travels upstream untouched.
func (h *Handler) proxyUpstream(w http.ResponseWriter, r *http.Request, url, contentType string) {
	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, nil)
	if err != nil {
		logger.Errorf("Failed to create upstream request: %v", err)
		errorJSON(w, http.StatusBadGateway, "upstream fetch failed")
		return
	}
	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		logger.Errorf("Upstream fetch failed: %v", err)
		errorJSON(w, http.StatusBadGateway, "upstream fetch failed")
		return
	}
	defer resp.Body.Close()

	for _, name := range mirroredHeaders {
		if v := resp.Header.Get(name); v != "" {
			w.Header().Set(name, v)
		}
	}
	if v := resp.Header.Get("Content-Type"); v != "" {
		contentType = v
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(resp.StatusCode)

	if r.Method == http.MethodHead {
		return
	}
	streamBody(w, r, resp.Body)
}

type chunk struct {
	data []byte
	err  error
}

// streamBody pumps upstream bytes to the client through a bounded
// channel so a disconnect on either side releases the other promptly.
func streamBody(w http.ResponseWriter, r *http.Request, body io.Reader) {
	ctx := r.Context()
	chunks := make(chan chunk, 8)

	go func() {
		defer close(chunks)
		for {
			buf := make([]byte, 32*1024)
			n, err := body.Read(buf)
			if n > 0 {
				select {
				case chunks <- chunk{data: buf[:n]}:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					select {
					case chunks <- chunk{err: err}:
					case <-ctx.Done():
					}
				}
				return
			}
		}
	}()

	flusher, canFlush := w.(http.Flusher)
	for {
		select {
		case c, ok := <-chunks:
			if !ok {
				return
			}
			if c.err != nil {
				logger.Errorf("Upstream stream failed mid-transfer: %v", c.err)
				return
			}
			if _, err := w.Write(c.data); err != nil {
				logger.Debugf("Client disconnected mid-stream: %v", err)
				return
			}
			if canFlush {
				flusher.Flush()
			}
		case <-ctx.Done():
			return
		}
	}
}
