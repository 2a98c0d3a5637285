package handlers

import (
	"encoding/json"
	"net/http"

	"investmate-backend/internal/middleware"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// callerID returns the authenticated user's id. The auth middleware has
// already run, so a failure here means a malformed token subject.
func callerID(w http.ResponseWriter, r *http.Request) (bson.ObjectID, bool) {
	userIDHex := middleware.GetUserID(r.Context())
	if userIDHex == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return bson.ObjectID{}, false
	}
	userID, err := bson.ObjectIDFromHex(userIDHex)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return bson.ObjectID{}, false
	}
	return userID, true
}

func roleFromContext(r *http.Request) string {
	return middleware.GetRole(r.Context())
}

// stringValue pulls a string out of a decoded JSON object.
func stringValue(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}
