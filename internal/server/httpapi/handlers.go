package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	wire "github.com/dkovalev/lotkeeper/internal/api"
	"github.com/dkovalev/lotkeeper/internal/server/models"
	"github.com/dkovalev/lotkeeper/internal/server/presign"
)

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSignUpload either confirms the object already exists (content
// addressing: same key means same bytes) or returns a short-lived PUT URL.
func (s *Server) handleSignUpload(w http.ResponseWriter, r *http.Request) {
	var req wire.SignUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ObjectKey == "" {
		jsonError(w, http.StatusBadRequest, "objectKey is required")
		return
	}

	userID := UserID(r.Context())
	if !presign.KeyInUserScope(req.ObjectKey, userID) {
		s.log.Warn(r.Context(), "rejected out-of-scope upload key", "user", userID, "key", req.ObjectKey)
		jsonError(w, http.StatusForbidden, "object key outside caller scope")
		return
	}

	exists, etag, err := s.presign.Exists(r.Context(), req.ObjectKey)
	if err != nil {
		s.log.Error(r.Context(), "existence check failed", "key", req.ObjectKey, "error", err)
		jsonError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	if exists {
		jsonResponse(w, http.StatusOK, wire.SignUploadResponse{Exists: true, Key: req.ObjectKey, ETag: etag})
		return
	}

	url, err := s.presign.SignPut(r.Context(), req.ObjectKey, req.ContentType)
	if err != nil {
		s.log.Error(r.Context(), "presign put failed", "key", req.ObjectKey, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to sign upload")
		return
	}
	jsonResponse(w, http.StatusOK, wire.SignUploadResponse{Key: req.ObjectKey, URL: url})
}

func (s *Server) handleSignDownload(w http.ResponseWriter, r *http.Request) {
	var req wire.SignDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}

	userID := UserID(r.Context())
	if !presign.KeyInUserScope(req.ObjectKey, userID) {
		jsonError(w, http.StatusForbidden, "object key outside caller scope")
		return
	}

	url, err := s.presign.SignGet(r.Context(), req.ObjectKey, time.Duration(req.ExpiresSeconds)*time.Second)
	if err != nil {
		s.log.Error(r.Context(), "presign get failed", "key", req.ObjectKey, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to sign download")
		return
	}
	jsonResponse(w, http.StatusOK, wire.SignDownloadResponse{URL: url})
}

func (s *Server) handleSyncAuction(w http.ResponseWriter, r *http.Request) {
	var req wire.AuctionUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ID == "" {
		jsonError(w, http.StatusBadRequest, "id is required")
		return
	}

	err := s.auctions.Upsert(r.Context(), &models.Auction{
		ID: req.ID, Name: req.Name, CreatedAt: req.CreatedAt, Archived: req.Archived,
	})
	if err != nil {
		s.log.Error(r.Context(), "auction upsert failed", "id", req.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "upsert failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSyncLot(w http.ResponseWriter, r *http.Request) {
	var req wire.LotUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ID == "" || req.AuctionID == "" {
		jsonError(w, http.StatusBadRequest, "id and auctionId are required")
		return
	}

	err := s.lots.Upsert(r.Context(), &models.Lot{
		ID: req.ID, Number: req.Number, AuctionID: req.AuctionID,
		Status: req.Status, CreatedAt: req.CreatedAt,
		Description: req.Description, SharedAt: req.SharedAt,
	})
	if err != nil {
		s.log.Error(r.Context(), "lot upsert failed", "id", req.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "upsert failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSyncMedia(w http.ResponseWriter, r *http.Request) {
	var req wire.MediaUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ID == "" || req.LotID == "" {
		jsonError(w, http.StatusBadRequest, "id and lotId are required")
		return
	}

	// media rows carry the caller's object key; refuse foreign scopes here
	// too, not only at signing time
	if req.ObjectKey != "" && !presign.KeyInUserScope(req.ObjectKey, UserID(r.Context())) {
		jsonError(w, http.StatusForbidden, "object key outside caller scope")
		return
	}

	err := s.media.Upsert(r.Context(), &models.MediaItem{
		ID: req.ID, LotID: req.LotID, Type: req.Type, Index: req.Index,
		CreatedAt: req.CreatedAt, Uploaded: req.Uploaded, Mime: req.Mime,
		BytesSize: req.BytesSize, Width: req.Width, Height: req.Height,
		DurationMS: req.DurationMS, RemotePath: req.RemotePath,
		ObjectKey: req.ObjectKey, ETag: req.ETag,
	})
	if err != nil {
		s.log.Error(r.Context(), "media upsert failed", "id", req.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "upsert failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
