package api

import (
	"encoding/json"
	"net/http"

	"github.com/hostkit/statedemo/internal/hostcfg"
	"github.com/hostkit/statedemo/internal/models"
)

// infoResponse is the body of /api/info.
type infoResponse struct {
	Info
	Strategy    string          `json:"strategy"`
	Registered  bool            `json:"registered"`
	DevControls bool            `json:"devControls"`
	Display     hostcfg.Display `json:"display"`
}

// getInfo reports host metadata, the storage strategy and the display
// configuration.
func (h *Handlers) getInfo(w http.ResponseWriter, r *http.Request) {
	_, registered := h.comp.Registration()
	writeJSON(w, http.StatusOK, infoResponse{
		Info:        h.info,
		Strategy:    string(h.comp.Strategy()),
		Registered:  registered,
		DevControls: h.devEnabled(),
		Display:     h.host.Display(),
	})
}

// setOffline toggles the development service's simulated outage. The
// endpoint is hidden unless development controls are enabled.
func (h *Handlers) setOffline(w http.ResponseWriter, r *http.Request) {
	if !h.devEnabled() {
		writeError(w, models.ErrNotFound("development controls not enabled"))
		return
	}
	var req models.OfflineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}
	h.dev.SetOffline(req.Offline)
	writeJSON(w, http.StatusOK, models.OfflineRequest{Offline: h.dev.Offline()})
}

func (h *Handlers) devEnabled() bool {
	return h.dev != nil && h.host.Display().ShowDevControls
}
