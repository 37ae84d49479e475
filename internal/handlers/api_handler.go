package handlers

import "net/http"

type bridgeResponse struct {
	Rank            int     `json:"rank"`
	StateName       string  `json:"state_name"`
	StructureNumber string  `json:"structure_number"`
	Traffic         float64 `json:"average_daily_traffic"`
}

// HandleTopBridges serves the bar view subset as JSON.
func (h *DashboardHandler) HandleTopBridges(w http.ResponseWriter, r *http.Request) {
	top := h.dash.TopBridges()
	bridges := make([]bridgeResponse, len(top))
	for i, b := range top {
		bridges[i] = bridgeResponse{
			Rank:            i + 1,
			StateName:       b.StateName,
			StructureNumber: b.StructureNumber,
			Traffic:         b.AverageDailyTraffic.Value,
		}
	}
	h.writeJSON(w, map[string]interface{}{
		"total":   len(bridges),
		"bridges": bridges,
	})
}

// HandleMapPoints serves the map model for ?n= points as JSON.
func (h *DashboardHandler) HandleMapPoints(w http.ResponseWriter, r *http.Request) {
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
	h.writeJSON(w, m)
}

// HandleMaterials serves the pie view shares as JSON.
func (h *DashboardHandler) HandleMaterials(w http.ResponseWriter, r *http.Request) {
	shares := h.dash.Materials()
	total := 0
	for _, s := range shares {
		total += s.Count
	}
	h.writeJSON(w, map[string]interface{}{
		"total":     total,
		"materials": shares,
	})
}
