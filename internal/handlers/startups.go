package handlers

import (
	"net/http"

	"investmate-backend/internal/logging"
	"investmate-backend/internal/repository"
)

type StartupHandler struct {
	startups StartupStore
	log      logging.Logger
}

func NewStartupHandler(startups StartupStore, log logging.Logger) *StartupHandler {
	return &StartupHandler{startups: startups, log: log}
}

// --- GET /api/startups ---

func (h *StartupHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.StartupFilter{
		Industry: q.Get("industry"),
		Stage:    q.Get("stage"),
		Location: q.Get("location"),
		Search:   q.Get("search"),
	}

	listings, err := h.startups.List(r.Context(), filter)
	if err != nil {
		h.log.Error(r.Context(), "list startups", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch startups")
		return
	}
	for i := range listings {
		listings[i].ApplyListingDefaults()
	}

	w.Header().Set("Cache-Control", "no-store, max-age=0")
	writeJSON(w, http.StatusOK, listings)
}
