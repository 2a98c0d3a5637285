package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"investmate-backend/internal/logging"
	"investmate-backend/internal/models"
	"investmate-backend/internal/notify"
	"investmate-backend/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const notifyTimeout = 15 * time.Second

type ConnectionHandler struct {
	connections ConnectionStore
	startups    StartupStore
	investors   InvestorStore
	users       UserStore
	notifier    notify.Notifier
	log         logging.Logger

	// spawn runs notification work off the request path.
	spawn   func(func())
	pending sync.WaitGroup
}

func NewConnectionHandler(connections ConnectionStore, startups StartupStore, investors InvestorStore, users UserStore, notifier notify.Notifier, log logging.Logger) *ConnectionHandler {
	h := &ConnectionHandler{
		connections: connections,
		startups:    startups,
		investors:   investors,
		users:       users,
		notifier:    notifier,
		log:         log,
	}
	h.spawn = h.background
	return h
}

func (h *ConnectionHandler) background(f func()) {
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		f()
	}()
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (h *ConnectionHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// --- Request types ---

type CreateConnectionRequest struct {
	StartupID string `json:"startupId"`
	Message   string `json:"message"`
}

type UpdateConnectionRequest struct {
	Status string `json:"status"`
}

// --- GET /api/connections ---

func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var (
		views []models.ConnectionView
		err   error
	)
	switch roleFromContext(r) {
	case models.RoleInvestor:
		inv, ferr := h.investors.FindByUserID(r.Context(), userID)
		if ferr != nil {
			h.internalError(w, r, "find investor profile", ferr)
			return
		}
		if inv == nil {
			writeError(w, http.StatusNotFound, "Investor profile not found")
			return
		}
		views, err = h.connections.ListForInvestor(r.Context(), inv.ID)
	case models.RoleStartup:
		st, ferr := h.startups.FindByUserID(r.Context(), userID)
		if ferr != nil {
			h.internalError(w, r, "find startup profile", ferr)
			return
		}
		if st == nil {
			writeError(w, http.StatusNotFound, "Startup profile not found")
			return
		}
		views, err = h.connections.ListForStartup(r.Context(), st.ID)
	default:
		writeError(w, http.StatusForbidden, "unknown role")
		return
	}
	if err != nil {
		h.internalError(w, r, "list connections", err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// --- POST /api/connections ---

func (h *ConnectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req CreateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	startupID, err := bson.ObjectIDFromHex(strings.TrimSpace(req.StartupID))
	if err != nil {
		writeError(w, http.StatusNotFound, "Startup not found")
		return
	}
	startup, err := h.startups.FindByID(r.Context(), startupID)
	if err != nil {
		h.internalError(w, r, "find startup", err)
		return
	}
	if startup == nil {
		writeError(w, http.StatusNotFound, "Startup not found")
		return
	}

	investor, err := h.investors.FindByUserID(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, "find investor profile", err)
		return
	}
	if investor == nil {
		writeError(w, http.StatusNotFound, "Investor profile not found")
		return
	}

	conn := &models.Connection{
		InvestorID: investor.ID,
		StartupID:  startup.ID,
		Status:     models.ConnectionPending,
		Message:    strings.TrimSpace(req.Message),
	}
	if err := h.connections.Create(r.Context(), conn); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Already expressed interest")
			return
		}
		h.internalError(w, r, "create connection", err)
		return
	}

	h.log.Info(r.Context(), "connection requested", "connection_id", conn.ID.Hex(), "startup_id", startup.ID.Hex())
	h.notifyUser(r.Context(), startup.UserID, func(to string) notify.Message {
		return notify.InterestMessage(to, investor.FullName, startup.StartupName, conn.Message)
	})

	writeJSON(w, http.StatusCreated, conn)
}

// --- PATCH /api/connections/{id} ---

func (h *ConnectionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	connID, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Connection not found")
		return
	}

	var req UpdateConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != models.ConnectionAccepted && req.Status != models.ConnectionRejected {
		writeError(w, http.StatusBadRequest, "status must be accepted or rejected")
		return
	}

	startup, err := h.startups.FindByUserID(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, "find startup profile", err)
		return
	}
	if startup == nil {
		writeError(w, http.StatusNotFound, "Startup profile not found")
		return
	}

	conn, err := h.connections.FindByID(r.Context(), connID)
	if err != nil {
		h.internalError(w, r, "find connection", err)
		return
	}
	// another startup's connection is reported as missing
	if conn == nil || conn.StartupID != startup.ID {
		writeError(w, http.StatusNotFound, "Connection not found")
		return
	}
	if !conn.CanTransitionTo(req.Status) {
		writeError(w, http.StatusConflict, "connection is already "+conn.Status)
		return
	}

	updated, err := h.connections.UpdateStatus(r.Context(), connID, models.ConnectionPending, req.Status)
	if err != nil {
		h.internalError(w, r, "update connection", err)
		return
	}
	if updated == nil {
		writeError(w, http.StatusConflict, "connection was updated concurrently")
		return
	}

	h.log.Info(r.Context(), "connection updated", "connection_id", connID.Hex(), "status", updated.Status)
	h.spawnInvestorNotice(r.Context(), updated.InvestorID, startup.StartupName, updated.Status)

	writeJSON(w, http.StatusOK, updated)
}

// --- Helpers ---

func (h *ConnectionHandler) spawnInvestorNotice(ctx context.Context, investorID bson.ObjectID, startupName, status string) {
	h.spawn(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		inv, err := h.investors.FindByID(ctx, investorID)
		if err != nil || inv == nil {
			h.log.Warn(ctx, "skip notification, investor not found", "investor_id", investorID.Hex(), "err", err)
			return
		}
		h.deliver(ctx, inv.UserID, func(to string) notify.Message {
			return notify.StatusMessage(to, startupName, status)
		})
	})
}

// notifyUser looks up the user's e-mail and sends the built message in the
// background. Failures are logged only.
func (h *ConnectionHandler) notifyUser(ctx context.Context, userID bson.ObjectID, build func(to string) notify.Message) {
	h.spawn(func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		h.deliver(ctx, userID, build)
	})
}

func (h *ConnectionHandler) deliver(ctx context.Context, userID bson.ObjectID, build func(to string) notify.Message) {
	user, err := h.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		h.log.Warn(ctx, "skip notification, user not found", "user_id", userID.Hex(), "err", err)
		return
	}
	if err := h.notifier.Notify(ctx, build(user.Email)); err != nil {
		h.log.Error(ctx, "send notification", "user_id", userID.Hex(), "err", err)
	}
}

func (h *ConnectionHandler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.Error(r.Context(), op, "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
