package handlers

import (
	"encoding/json"
	"net/http"

	"investmate-backend/internal/logging"
	"investmate-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ProfileHandler struct {
	startups  StartupStore
	investors InvestorStore
	log       logging.Logger
}

func NewProfileHandler(startups StartupStore, investors InvestorStore, log logging.Logger) *ProfileHandler {
	return &ProfileHandler{startups: startups, investors: investors, log: log}
}

// --- PATCH /api/startup/profile ---

func (h *ProfileHandler) UpdateStartup(w http.ResponseWriter, r *http.Request) {
	userID, fields, ok := h.decodeUpdate(w, r, models.RoleStartup)
	if !ok {
		return
	}
	startup, err := h.startups.UpdateByUserID(r.Context(), userID, fields)
	if err != nil {
		h.log.Error(r.Context(), "update startup profile", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if startup == nil {
		writeError(w, http.StatusNotFound, "Startup not found")
		return
	}
	writeJSON(w, http.StatusOK, startup)
}

// --- PATCH /api/investor/profile ---

func (h *ProfileHandler) UpdateInvestor(w http.ResponseWriter, r *http.Request) {
	userID, fields, ok := h.decodeUpdate(w, r, models.RoleInvestor)
	if !ok {
		return
	}
	investor, err := h.investors.UpdateByUserID(r.Context(), userID, fields)
	if err != nil {
		h.log.Error(r.Context(), "update investor profile", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if investor == nil {
		writeError(w, http.StatusNotFound, "Investor not found")
		return
	}
	writeJSON(w, http.StatusOK, investor)
}

func (h *ProfileHandler) decodeUpdate(w http.ResponseWriter, r *http.Request, role string) (bson.ObjectID, bson.M, bool) {
	id, ok := callerID(w, r)
	if !ok {
		return id, nil, false
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return id, nil, false
	}

	set, dropped, err := models.SanitizeProfileUpdate(role, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return id, nil, false
	}
	if len(dropped) > 0 {
		h.log.Info(r.Context(), "ignoring non-updatable profile fields", "role", role, "fields", dropped)
	}
	return id, set, true
}
