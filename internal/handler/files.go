package handler

import (
	"log/slog"
	"net/http"

	"github.com/templui/sfss/internal/ctxkeys"
	"github.com/templui/sfss/internal/logger"
	"github.com/templui/sfss/internal/model"
	"github.com/templui/sfss/internal/service"
)

// FileHandler serves the owner's view of their shares
type FileHandler struct {
	shares *service.ShareService
	log    *slog.Logger
}

func NewFileHandler(shares *service.ShareService) *FileHandler {
	return &FileHandler{
		shares: shares,
		log:    logger.Component("files"),
	}
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	shares, err := h.shares.ListOwned(r.Context(), identity.UserID)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}
	if shares == nil {
		shares = []*model.ShareRecord{}
	}

	writeJSON(w, http.StatusOK, shares, "")
}

func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	share, err := h.shares.Owned(r.Context(), identity.UserID, r.PathValue("id"))
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, share, "")
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	share, err := h.shares.DeleteOwned(r.Context(), identity.UserID, r.PathValue("id"))
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, share, "File deleted")
}
