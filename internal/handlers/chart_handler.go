package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"bridgedash/internal/render"
)

func (h *DashboardHandler) HandleBarChart(w http.ResponseWriter, r *http.Request) {
	h.serveChart(w, r, "bar", func(f render.Format) ([]byte, error) {
		return h.dash.BarChart(f)
	})
}

func (h *DashboardHandler) HandlePieChart(w http.ResponseWriter, r *http.Request) {
	h.serveChart(w, r, "pie", func(f render.Format) ([]byte, error) {
		return h.dash.PieChart(f)
	})
}

func (h *DashboardHandler) HandleMapChart(w http.ResponseWriter, r *http.Request) {
	n, err := h.points(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.serveChart(w, r, "map", func(f render.Format) ([]byte, error) {
		return h.dash.MapChart(n, f)
	})
}

func (h *DashboardHandler) serveChart(w http.ResponseWriter, r *http.Request, name string, draw func(render.Format) ([]byte, error)) {
	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, err := draw(format)
	if err != nil {
		h.log.Error("failed to render chart",
			zap.String("chart", name),
			zap.String("format", string(format)),
			zap.Error(err))
		http.Error(w, "Failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(img)
}
