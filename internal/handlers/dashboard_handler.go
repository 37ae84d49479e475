package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"bridgedash/internal/dashboard"
	"bridgedash/internal/router"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrInvalidParam marks request parameters the dashboard cannot serve.
var ErrInvalidParam = errors.New("invalid parameter")

type DashboardHandler struct {
	dash *dashboard.Dashboard
	log  *zap.Logger
	page *template.Template
}

func NewDashboardHandler(dash *dashboard.Dashboard, log *zap.Logger) (*DashboardHandler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	page, err := template.ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return &DashboardHandler{
		dash: dash,
		log:  log,
		page: page,
	}, nil
}

// Register adds every dashboard route to mux.
func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.HandlePage)
	mux.HandleFunc("GET /charts/top-bridges", h.HandleBarChart)
	mux.HandleFunc("GET /charts/materials", h.HandlePieChart)
	mux.HandleFunc("GET /charts/map", h.HandleMapChart)
	mux.HandleFunc("GET /api/top-bridges", h.HandleTopBridges)
	mux.HandleFunc("GET /api/map-points", h.HandleMapPoints)
	mux.HandleFunc("GET /api/materials", h.HandleMaterials)
	mux.HandleFunc("GET /health", HandleHealth)
}

type pageLink struct {
	Label    string
	Selected bool
}

type pageData struct {
	Title     string
	View      string
	Pages     []pageLink
	Points    int
	MinPoints int
	MaxPoints int
	Map       dashboard.MapModel
	MapJSON   template.JS
	Columns   []string
}

var pageViews = map[router.Page]struct{ view, title string }{
	router.Home:    {"home", " Georgia Bridge Traffic Analysis"},
	router.BarView: {"bar", "Top 20 Bridges by Highest Daily Traffic"},
	router.MapView: {"map", "Map of Top Bridges"},
	router.PieView: {"pie", "Most Popular Materials"},
}

// HandlePage renders the selected dashboard page in full.
func (h *DashboardHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	page, err := router.ParsePage(r.URL.Query().Get("page"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := h.dash.Options()
	pv := pageViews[page]
	data := pageData{
		Title:     pv.title,
		View:      pv.view,
		MinPoints: opts.MinPoints,
		MaxPoints: opts.MaxPoints,
	}
	for _, p := range router.Pages() {
		data.Pages = append(data.Pages, pageLink{Label: p.Label(), Selected: p == page})
	}

	if page == router.MapView {
		n, err := h.points(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		m, err := h.dash.MapView(n)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		js, err := toJSON(m)
		if err != nil {
			h.serverError(w, "failed to encode map model", err)
			return
		}
		data.Points = n
		data.Map = m
		data.MapJSON = js
		data.Columns = h.dash.Table().Fields()
	}

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		h.serverError(w, "failed to execute page template", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// points reads the map point count from the query, falling back to the
// configured default.
func (h *DashboardHandler) points(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return h.dash.Options().DefaultPoints, nil
	}
	n, err := parseCount(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: n=%q is not an integer", ErrInvalidParam, raw)
	}
	if err := h.dash.CheckPoints(n); err != nil {
		return 0, err
	}
	return n, nil
}

// parseCount reads a base-10 count. Whole-valued decimals such as "20.0" are
// accepted; octal, hex and binary prefixes are not.
func parseCount(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(s, 10, 0); err == nil {
		return int(n), nil
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("not a whole number: %v", f)
	}
	return cast.ToIntE(f)
}

func toJSON(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

func (h *DashboardHandler) serverError(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (h *DashboardHandler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode JSON response", zap.Error(err))
	}
}

// HandleHealth reports that the server is up.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
