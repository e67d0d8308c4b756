package api

import (
	"encoding/json"
	"net/http"

	"github.com/hostkit/statedemo/internal/models"
)

// getStatus returns the full demo status snapshot.
func (h *Handlers) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.comp.Snapshot())
}

// updateDemo applies a partial update to the working dataset.
func (h *Handlers) updateDemo(w http.ResponseWriter, r *http.Request) {
	var upd models.DemoDataUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, models.ErrBadRequest("invalid JSON: "+err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, h.comp.Update(upd))
}

func (h *Handlers) incrementCounter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.comp.AdjustCounter(1))
}

func (h *Handlers) decrementCounter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.comp.AdjustCounter(-1))
}

// saveState persists the working dataset through the state service.
func (h *Handlers) saveState(w http.ResponseWriter, r *http.Request) {
	if err := h.comp.Save(r.Context()); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.comp.Snapshot())
}

// restoreState replaces the working dataset with the stored one. A
// missing record is not an error; the snapshot simply reports it in
// the operation log.
func (h *Handlers) restoreState(w http.ResponseWriter, r *http.Request) {
	if err := h.comp.Restore(r.Context()); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.comp.Snapshot())
}

// clearState drops the stored record and resets the working dataset.
func (h *Handlers) clearState(w http.ResponseWriter, r *http.Request) {
	if err := h.comp.Clear(r.Context()); err != nil {
		writeOperationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.comp.Snapshot())
}

func (h *Handlers) expandError(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.comp.ExpandError())
}

func (h *Handlers) collapseError(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.comp.CollapseError())
}

func (h *Handlers) clearError(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.comp.ClearError())
}

// getLog returns the bounded operation log.
func (h *Handlers) getLog(w http.ResponseWriter, r *http.Request) {
	snap := h.comp.Snapshot()
	writeJSON(w, http.StatusOK, map[string][]models.LogEntry{"log": snap.Status.Log})
}

func (h *Handlers) clearLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.comp.ClearLog())
}
