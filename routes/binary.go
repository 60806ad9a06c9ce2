package routes

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vidserve/delivery"
	"vidserve/logger"
	"vidserve/objectstore"
	"vidserve/utils"
)

// Renditions are immutable once uploaded, so a byte range of one never
// changes and clients may cache aggressively.
const cacheControl = "public, max-age=31536000, immutable"

const signedURLTTL = 15 * time.Minute

var errMalformedRange = errors.New("malformed range header")

// BinaryHandler serves the bytes of a video resource, honoring an
// optional quality parameter and a single byte-range. HEAD mirrors all
// headers without a body.
func (h *Handler) BinaryHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debugf("Binary request: method=%s, path=%s, range=%q", r.Method, r.URL.Path, r.Header.Get("Range"))

	meta, ok := h.lookupMeta(w, r)
	if !ok {
		return
	}

	if len(h.tokenSecret) > 0 {
		token := r.URL.Query().Get("token")
		if _, err := utils.VerifyPlaybackToken(token, meta.ID, utils.VerifyConfig{SecretKey: h.tokenSecret}); err != nil {
			logger.Warnf("Rejected playback token for %s: %v", meta.ID, err)
			errorJSON(w, http.StatusUnauthorized, "invalid playback token")
			return
		}
	}

	ctx := r.Context()
	quality := r.URL.Query().Get("quality")
	status := h.coordinator.Status(meta.SourceKey)

	decision, err := h.resolver.Resolve(ctx, meta.SourceKey, quality, status)
	if err != nil {
		logger.Errorf("Delivery resolution for %s failed: %v", meta.SourceKey, err)
		errorJSON(w, http.StatusInternalServerError, "delivery resolution failed")
		return
	}

	if decision.Kind == delivery.Defer {
		w.Header().Set("Retry-After", "5")
		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":  string(status),
			"quality": quality,
		})
		return
	}

	info, err := h.store.Stat(ctx, decision.Key)
	if err == objectstore.ErrNotFound {
		// The artifact vanished between the existence check and here.
		errorJSON(w, http.StatusNotFound, "artifact not found")
		return
	}
	if err != nil {
		logger.Errorf("Stat %s failed: %v", decision.Key, err)
		errorJSON(w, http.StatusInternalServerError, "object store unavailable")
		return
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = meta.ContentType
	}

	if h.proxySigned {
		url, err := h.store.SignedReadURL(ctx, decision.Key, signedURLTTL)
		switch {
		case err == nil:
			h.proxyUpstream(w, r, url, contentType)
			return
		case err == objectstore.ErrSignedURLUnsupported:
			// Backend cannot sign; read the store directly instead.
		default:
			logger.Errorf("Signing read URL for %s failed: %v", decision.Key, err)
			errorJSON(w, http.StatusInternalServerError, "object store unavailable")
			return
		}
	}

	h.serveDirect(w, r, decision.Key, contentType, info.Size)
}

// serveDirect streams bytes straight from the object store, computing
// range boundaries locally.
func (h *Handler) serveDirect(w http.ResponseWriter, r *http.Request, key, contentType string, size int64) {
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", cacheControl)
	w.Header().Set("Content-Type", contentType)

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead || size == 0 {
			return
		}
		h.copyRange(w, r, key, 0, size-1)
		return
	}

	start, end, err := parseRange(rangeHeader, size)
	if err != nil {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(end-start+1, 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return
	}
	h.copyRange(w, r, key, start, end)
}

func (h *Handler) copyRange(w http.ResponseWriter, r *http.Request, key string, start, end int64) {
	rc, err := h.store.RangedRead(r.Context(), key, start, end)
	if err != nil {
		// Headers are already written; all we can do is cut the stream.
		logger.Errorf("Ranged read %s [%d-%d] failed: %v", key, start, end, err)
		return
	}
	defer rc.Close()

	if _, err := io.Copy(w, rc); err != nil {
		logger.Debugf("Stream %s aborted: %v", key, err)
	}
}

// parseRange parses a single bytes=start-end header against a resource
// of the given size. An omitted end means size-1. The returned range is
// inclusive on both ends.
func parseRange(header string, size int64) (int64, int64, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return 0, 0, errMalformedRange
	}

	startStr, endStr, ok := strings.Cut(spec, "-")
	if !ok {
		return 0, 0, errMalformedRange
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, errMalformedRange
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return 0, 0, errMalformedRange
		}
	}

	if start > end || start >= size || end >= size {
		return 0, 0, fmt.Errorf("range %d-%d not satisfiable for size %d", start, end, size)
	}
	return start, end, nil
}
