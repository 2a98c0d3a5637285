package handlers

import (
	"context"
	"net/http"

	"investmate-backend/internal/logging"
	"investmate-backend/internal/matchmaking"
	"investmate-backend/internal/models"
)

// Advisor is the coaching and matchmaking service.
type Advisor interface {
	CoachInvestor(ctx context.Context, investor *models.Investor) matchmaking.Coaching
	CoachStartup(ctx context.Context, startup *models.Startup) matchmaking.Coaching
	MatchForInvestor(ctx context.Context, investor *models.Investor) (*matchmaking.MatchResult, error)
	MatchForStartup(ctx context.Context, startup *models.Startup) (*matchmaking.MatchResult, error)
}

type AIHandler struct {
	advisor   Advisor
	startups  StartupStore
	investors InvestorStore
	log       logging.Logger
}

func NewAIHandler(advisor Advisor, startups StartupStore, investors InvestorStore, log logging.Logger) *AIHandler {
	return &AIHandler{advisor: advisor, startups: startups, investors: investors, log: log}
}

// --- POST /api/ai/coach/investor ---

func (h *AIHandler) CoachInvestor(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.investorProfile(w, r)
	if !ok {
		return
	}
	writeCoaching(w, h.advisor.CoachInvestor(r.Context(), inv))
}

// --- POST /api/ai/coach/startup ---

func (h *AIHandler) CoachStartup(w http.ResponseWriter, r *http.Request) {
	st, ok := h.startupProfile(w, r)
	if !ok {
		return
	}
	writeCoaching(w, h.advisor.CoachStartup(r.Context(), st))
}

// --- POST /api/ai/matchmaking/investor ---

func (h *AIHandler) MatchInvestor(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.investorProfile(w, r)
	if !ok {
		return
	}
	res, err := h.advisor.MatchForInvestor(r.Context(), inv)
	h.writeMatches(w, r, res, err)
}

// --- POST /api/ai/matchmaking/startup ---

func (h *AIHandler) MatchStartup(w http.ResponseWriter, r *http.Request) {
	st, ok := h.startupProfile(w, r)
	if !ok {
		return
	}
	res, err := h.advisor.MatchForStartup(r.Context(), st)
	h.writeMatches(w, r, res, err)
}

// --- Helpers ---

func (h *AIHandler) investorProfile(w http.ResponseWriter, r *http.Request) (*models.Investor, bool) {
	userID, ok := callerID(w, r)
	if !ok {
		return nil, false
	}
	inv, err := h.investors.FindByUserID(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "find investor profile", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if inv == nil {
		writeError(w, http.StatusNotFound, "Investor profile not found")
		return nil, false
	}
	return inv, true
}

func (h *AIHandler) startupProfile(w http.ResponseWriter, r *http.Request) (*models.Startup, bool) {
	userID, ok := callerID(w, r)
	if !ok {
		return nil, false
	}
	st, err := h.startups.FindByUserID(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "find startup profile", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "Startup profile not found")
		return nil, false
	}
	return st, true
}

func writeCoaching(w http.ResponseWriter, c matchmaking.Coaching) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"coaching": c.Advice,
		"source":   c.Source,
	})
}

// writeMatches only fails on database errors; AI failures have already been
// absorbed into a fallback result.
func (h *AIHandler) writeMatches(w http.ResponseWriter, r *http.Request, res *matchmaking.MatchResult, err error) {
	if err != nil {
		h.log.Error(r.Context(), "matchmaking", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load matches")
		return
	}
	body := map[string]any{
		"success": true,
		"matches": res.Matches,
		"source":  res.Source,
	}
	if res.Note != "" {
		body["note"] = res.Note
	}
	writeJSON(w, http.StatusOK, body)
}
