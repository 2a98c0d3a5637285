package handlers

import (
	"errors"
	"io"
	"net/http"

	"investmate-backend/internal/logging"
	"investmate-backend/internal/media"
	"investmate-backend/internal/middleware"
	"investmate-backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// maxUploadBody bounds the whole multipart request; per-kind caps are
// checked on the file itself.
const maxUploadBody = 6 << 20

type UploadHandler struct {
	uploader  media.Uploader
	startups  StartupStore
	investors InvestorStore
	jwtSecret []byte
	log       logging.Logger
}

// NewUploadHandler accepts a nil uploader; uploads then fail with 500.
func NewUploadHandler(uploader media.Uploader, startups StartupStore, investors InvestorStore, jwtSecret string, log logging.Logger) *UploadHandler {
	return &UploadHandler{
		uploader:  uploader,
		startups:  startups,
		investors: investors,
		jwtSecret: []byte(jwtSecret),
		log:       log,
	}
}

// --- POST /api/upload ---

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// The session must verify before any of the body is read. The form's
	// role field can only narrow it further below.
	claims, status, msg := middleware.Resolve(r, h.jwtSecret, r.URL.Query().Get("role"))
	if claims == nil {
		writeError(w, status, msg)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	if role := r.FormValue("role"); role != "" && role != claims.Role {
		claims, status, msg = middleware.Resolve(r, h.jwtSecret, role)
		if claims == nil {
			writeError(w, status, msg)
			return
		}
	}
	userID, err := bson.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	kind, err := media.ParseImageKind(r.FormValue("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "type must be profile or cover")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, kind.MaxBytes()+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if int64(len(data)) > kind.MaxBytes() {
		writeError(w, http.StatusBadRequest, "File too large. Max size is "+kind.SizeLabel())
		return
	}
	mime := http.DetectContentType(data)
	if !media.AllowedType(mime) {
		writeError(w, http.StatusBadRequest, "Invalid file type. Only JPEG, PNG and WebP are allowed")
		return
	}

	if h.uploader == nil {
		h.log.Error(r.Context(), "upload requested but media host is not configured")
		writeError(w, http.StatusInternalServerError, "Image upload is not configured")
		return
	}
	url, err := h.uploader.Upload(r.Context(), media.DataURI(mime, data), media.UploadOptions{
		Folder:         media.Folder(claims.Role, kind),
		PublicID:       uuid.NewString(),
		Transformation: kind.Transformation(),
	})
	if err != nil {
		h.log.Error(r.Context(), "upload image", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	update := bson.M{kind.ProfileField(): url}
	var found bool
	switch claims.Role {
	case models.RoleStartup:
		st, uerr := h.startups.UpdateByUserID(r.Context(), userID, update)
		err, found = uerr, st != nil
	case models.RoleInvestor:
		inv, uerr := h.investors.UpdateByUserID(r.Context(), userID, update)
		err, found = uerr, inv != nil
	}
	if err != nil {
		h.log.Error(r.Context(), "save image url", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save image")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}

	h.log.Info(r.Context(), "image uploaded", "user_id", claims.UserID, "type", string(kind))
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Image uploaded successfully",
		"imageUrl": url,
		"type":     string(kind),
	})
}
