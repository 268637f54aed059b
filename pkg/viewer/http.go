package viewer

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/btlive/pkg/errors"
)

// ToggleResponse is the body of POST /toggle/{id}.
type ToggleResponse struct {
	ID        string `json:"id"`
	Collapsed bool   `json:"collapsed"`
	Changed   bool   `json:"changed"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status    string   `json:"status"`
	Version   int      `json:"version"`
	Attached  bool     `json:"attached"`
	Collapsed []string `json:"collapsed"`
}

// Handler serves the controller's drawing:
//
//	GET  /             page with the drawing and a status bar
//	GET  /surface.svg  current drawing
//	POST /toggle/{id}  collapse or expand a node
//	GET  /status       status line and collapse state as JSON
//	GET  /metrics      metrics, when a handler is given
func Handler(c *Controller, metrics http.Handler, logger *log.Logger) http.Handler {
	h := &handler{c: c, logger: logger}
	if h.logger == nil {
		h.logger = c.logger
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", h.index)
	r.Get("/surface.svg", h.surface)
	r.Post("/toggle/{id}", h.toggle)
	r.Get("/status", h.status)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	return r
}

type handler struct {
	c      *Controller
	logger *log.Logger
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	svg, err := h.c.SVG()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, page{
		Status: h.c.Status(),
		SVG:    template.HTML(svg),
	}); err != nil {
		h.logger.Error("render page", "err", err)
	}
}

func (h *handler) surface(w http.ResponseWriter, r *http.Request) {
	svg, err := h.c.SVG()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(svg)
}

func (h *handler) toggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	collapsed, changed, err := h.c.Toggle(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{ID: id, Collapsed: collapsed, Changed: changed})
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	snap := h.c.Snapshot()
	collapsed := snap.Collapsed
	if collapsed == nil {
		collapsed = []string{}
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:    snap.Status,
		Version:   snap.Version,
		Attached:  snap.Attached,
		Collapsed: collapsed,
	})
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.HTTPStatus(err)
	if err == ErrNoSurface {
		code = http.StatusServiceUnavailable
	}
	if code >= 500 {
		h.logger.Error("request failed", "path", r.URL.Path, "request", middleware.GetReqID(r.Context()), "err", err)
	}
	writeJSON(w, code, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

type page struct {
	Status string
	SVG    template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>btlive</title>
<style>
body { margin: 0; font-family: sans-serif; }
#bar { position: sticky; top: 0; display: flex; justify-content: space-between;
       padding: 8px 16px; background: #111; color: #eee; }
#surface g.node, #surface rect[data-node-id] { cursor: pointer; }
</style>
</head>
<body>
<div id="bar"><span>btlive</span><span id="last_update">{{.Status}}</span></div>
<div id="surface">{{.SVG}}</div>
<script>
async function refresh() {
  const res = await fetch("surface.svg", {cache: "no-store"});
  if (res.ok) document.getElementById("surface").innerHTML = await res.text();
  const st = await fetch("status");
  if (st.ok) document.getElementById("last_update").textContent = (await st.json()).status;
}
document.getElementById("surface").addEventListener("click", async (ev) => {
  const node = ev.target.closest("g.node");
  if (!node) return;
  const id = ev.target.getAttribute("data-node-id") || node.id;
  await fetch("toggle/" + encodeURIComponent(id), {method: "POST"});
  refresh();
});
setInterval(refresh, 1000);
</script>
</body>
</html>
`))
