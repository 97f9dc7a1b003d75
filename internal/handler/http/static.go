package http

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// fallbackPage is shown when no bundle has ever been installed and the
// remote service cannot supply one either.
const fallbackPage = `<!DOCTYPE html>
<html>
<head><title>Keyport</title></head>
<body>
<h1>Keyport agent is running</h1>
<p>The UI bundle has not been downloaded yet. The agent will fetch it as
soon as the Keyport service is reachable; refresh this page in a moment.</p>
</body>
</html>
`

// serveStatic serves non-API paths from the installed bundle directory.
// Unknown paths fall back to the bundle's entry document so client-side
// routing keeps working. Without an installed bundle the request is proxied
// to the remote service, and a minimal inline page covers the cold-start
// case where the remote is unreachable too.
func (h *Handler) serveStatic(w http.ResponseWriter, r *http.Request) {
	bundleDir := h.bundle.BundleDir()

	entry := filepath.Join(bundleDir, "index.html")
	if _, err := os.Stat(entry); err != nil {
		if h.forward != nil {
			h.forwardPage(w, r)
			return
		}
		h.serveFallback(w)
		return
	}

	requested := filepath.Join(bundleDir, filepath.FromSlash(strings.TrimPrefix(r.URL.Path, "/")))

	// stay inside the bundle directory
	if rel, err := filepath.Rel(bundleDir, requested); err != nil || strings.HasPrefix(rel, "..") {
		http.NotFound(w, r)
		return
	}

	if info, err := os.Stat(requested); err == nil && !info.IsDir() {
		http.ServeFile(w, r, requested)
		return
	}

	// SPA fallback: client-side routed paths get the entry document
	http.ServeFile(w, r, entry)
}

// forwardPage proxies a page request to the remote service, falling back to
// the inline page when the proxy reports the remote unreachable.
func (h *Handler) forwardPage(w http.ResponseWriter, r *http.Request) {
	recorder := &fallbackWriter{ResponseWriter: w}
	h.forward.ServeHTTP(recorder, r)

	if recorder.badGateway && !recorder.committed {
		h.serveFallback(w)
	}
}

func (h *Handler) serveFallback(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(fallbackPage))
}

// fallbackWriter buffers a 502 from the proxy so the static handler can
// substitute the inline page instead. Any other status passes through.
type fallbackWriter struct {
	http.ResponseWriter

	badGateway bool
	committed  bool
}

func (w *fallbackWriter) WriteHeader(statusCode int) {
	if statusCode == http.StatusBadGateway && !w.committed {
		w.badGateway = true
		return
	}
	w.committed = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *fallbackWriter) Write(b []byte) (int, error) {
	if w.badGateway {
		// swallow the proxy's structured error body
		return len(b), nil
	}
	w.committed = true
	return w.ResponseWriter.Write(b)
}
