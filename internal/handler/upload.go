package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/templui/sfss/internal/ctxkeys"
	"github.com/templui/sfss/internal/logger"
	"github.com/templui/sfss/internal/service"
)

type UploadHandler struct {
	shares *service.ShareService
	access *service.AccessService
	log    *slog.Logger
}

func NewUploadHandler(shares *service.ShareService, access *service.AccessService) *UploadHandler {
	return &UploadHandler{
		shares: shares,
		access: access,
		log:    logger.Component("upload"),
	}
}

type presignedURLRequest struct {
	FileName              string   `json:"fileName"`
	FileType              string   `json:"fileType"`
	FileSize              int64    `json:"fileSize"`
	Folder                string   `json:"folder"`
	ExpiryDurationMinutes int      `json:"expiryDurationMinutes"`
	AccessCode            *int64   `json:"accessCode"`
	TargetUserEmails      []string `json:"targetUserEmails"`
}

// PresignedURL creates a pending share and returns a signed PUT URL for it
func (h *UploadHandler) PresignedURL(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var req presignedURLRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket, err := h.shares.InitiateUpload(r.Context(), service.CreateShareInput{
		OwnerID:         identity.UserID,
		OwnerEmail:      identity.Email,
		FileName:        req.FileName,
		FileType:        req.FileType,
		FileSize:        req.FileSize,
		Folder:          req.Folder,
		DurationMinutes: req.ExpiryDurationMinutes,
		AccessCode:      req.AccessCode,
		Recipients:      req.TargetUserEmails,
	})
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	h.log.Info("presigned URL generated", "user_id", identity.UserID, "share_id", ticket.Share.ID, "key", ticket.Key)
	writeJSON(w, http.StatusCreated, ticket, "Upload the file directly to the uploadUrl via PUT")
}

type confirmRequest struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Confirm marks the owner's pending share as uploaded
func (h *UploadHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var req confirmRequest
	err := decodeJSON(w, r, &req)
	if err != nil || req.ID == "" || req.Key == "" {
		writeError(w, http.StatusBadRequest, "id and key are required")
		return
	}

	share, err := h.shares.ConfirmOwnedUpload(r.Context(), identity.UserID, req.ID, req.Key)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, share, "Upload confirmed")
}

type downloadResponse struct {
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
	FileName    string    `json:"fileName"`
	FileType    string    `json:"fileType"`
	FileSize    int64     `json:"fileSize"`
}

// Download authorizes the requester and returns a signed GET URL
func (h *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	var code *int64
	if raw := r.URL.Query().Get("code"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "access code must be numeric")
			return
		}
		code = &parsed
	}

	download, err := h.access.AuthorizeDownload(r.Context(), r.PathValue("id"), *identity, code)
	if err != nil {
		handleServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, downloadResponse{
		DownloadURL: download.URL,
		ExpiresAt:   download.URLExpiresAt,
		FileName:    download.Share.FileName,
		FileType:    download.Share.FileType,
		FileSize:    download.Share.FileSize,
	}, "")
}
