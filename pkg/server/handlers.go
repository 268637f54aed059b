package server

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/btlive/pkg/errors"
	btio "github.com/matzehuels/btlive/pkg/io"
	"github.com/matzehuels/btlive/pkg/observability"
	"github.com/matzehuels/btlive/pkg/render"
)

// maxRequestBody bounds relayout and status bodies.
const maxRequestBody = 1 << 20

// RelayoutRequest is the body of POST /relayout.
type RelayoutRequest struct {
	Dims map[string]render.Dims `json:"dims"`
}

// StatusResponse is the body returned by POST /status.
type StatusResponse struct {
	Applied int      `json:"applied"`
	Skipped []string `json:"skipped,omitempty"`
}

// Handler returns the HTTP routes. metrics may be nil.
func (s *Server) Handler(metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	r.Get("/", s.handleIndex)
	r.Get("/surface.svg", s.handleSurface)
	r.Get("/msg", s.handleStream)
	r.Post("/relayout", s.handleRelayout)
	r.Post("/status", s.handleStatus)
	r.Get("/status", s.handleStats)
	r.Get("/data", s.handleData)
	r.Get("/tree.json", s.handleTree)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, template.HTML(s.Base())); err != nil {
		s.logger.Error("render index", "err", err)
	}
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	writeSVG(w, s.Base())
}

// handleStream writes a frame every interval until the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}
	ctx := r.Context()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	hooks := observability.Server()
	hooks.OnStreamOpen(ctx)
	frames := 0
	defer func() { hooks.OnStreamClose(ctx, frames) }()
	logger := s.logger.With("request", middleware.GetReqID(ctx))
	logger.Debug("stream opened", "remote", r.RemoteAddr)

	enc := json.NewEncoder(w)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := enc.Encode(s.Frame()); err != nil {
			logger.Debug("stream closed", "frames", frames, "err", err)
			return
		}
		flusher.Flush()
		frames++
		select {
		case <-ctx.Done():
			logger.Debug("stream closed", "frames", frames)
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) handleRelayout(w http.ResponseWriter, r *http.Request) {
	var req RelayoutRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		// an unreadable body is a request for the default layout
		s.logger.Warn("invalid relayout body, using default sizes", "err", err)
		req.Dims = nil
	}
	if req.Dims == nil {
		req.Dims = map[string]render.Dims{}
	}

	svg, err := s.Relayout(r.Context(), req.Dims)
	if err != nil {
		s.logger.Error("relayout failed", "request", middleware.GetReqID(r.Context()), "err", err)
		writeError(w, err)
		return
	}
	s.logger.Debug("relayout", "request", middleware.GetReqID(r.Context()), "dims", len(req.Dims), "bytes", len(svg))
	writeSVG(w, svg)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var batch map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&batch); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeMalformedPayload, err, "decode status"))
		return
	}
	applied, skipped := s.ApplyStatus(r.Context(), batch)
	writeJSON(w, http.StatusOK, StatusResponse{Applied: applied, Skipped: skipped})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Stats())
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.RandomStates())
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := btio.WriteJSON(s.tree, &buf); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode tree"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

func writeSVG(w http.ResponseWriter, svg []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(svg)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// indexTemplate shows the drawing and recolors it from /msg.
var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>btlive</title>
<style>
body { margin: 0; font-family: sans-serif; }
#bar { position: sticky; top: 0; display: flex; justify-content: space-between;
       padding: 8px 16px; background: #111; color: #eee; }
</style>
</head>
<body>
<div id="bar"><span>btlive</span><span id="last_update">..</span></div>
{{.}}
<script>
async function stream() {
  const res = await fetch("msg");
  const reader = res.body.getReader();
  const dec = new TextDecoder();
  let buf = "";
  for (;;) {
    const {value, done} = await reader.read();
    if (done) break;
    buf += dec.decode(value, {stream: true});
    const lines = buf.split("\n");
    buf = lines.pop();
    const line = lines.pop();
    if (!line) continue;
    const msg = JSON.parse(line);
    for (const [id, color] of Object.entries(msg)) {
      const poly = document.querySelector("g.node[id='" + CSS.escape(id) + "'] polygon");
      if (poly && typeof color === "string") poly.setAttribute("fill", color);
    }
    document.getElementById("last_update").textContent =
      "Last update: " + new Date().toLocaleTimeString();
  }
}
function run() { stream().catch(() => {}).finally(() => setTimeout(run, 1500)); }
run();
</script>
</body>
</html>
`))
