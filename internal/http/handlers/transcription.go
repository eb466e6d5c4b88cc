package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/whisperweb-backend/internal/http/response"
	"github.com/yungbote/whisperweb-backend/internal/services"
)

type TranscriptionHandler struct {
	transcriptionService services.TranscriptionService
}

func NewTranscriptionHandler(transcriptionService services.TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{transcriptionService: transcriptionService}
}

func (th *TranscriptionHandler) Finalize(c *gin.Context) {
	userID := callerID(c)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req struct {
		StoragePath      string `json:"storage_path"`
		OriginalFilename string `json:"original_filename"`
		Title            string `json:"title"`
		FileSizeBytes    int64  `json:"file_size_bytes"`
		Language         string `json:"language"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	created, err := th.transcriptionService.Finalize(c.Request.Context(), userID, services.FinalizeInput{
		StoragePath:      req.StoragePath,
		OriginalFilename: req.OriginalFilename,
		Title:            req.Title,
		FileSizeBytes:    req.FileSizeBytes,
		Language:         req.Language,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, created)
}

func (th *TranscriptionHandler) List(c *gin.Context) {
	userID := callerID(c)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	results, err := th.transcriptionService.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"transcriptions": results})
}

func (th *TranscriptionHandler) Get(c *gin.Context) {
	userID := callerID(c)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	result, err := th.transcriptionService.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (th *TranscriptionHandler) Delete(c *gin.Context) {
	userID := callerID(c)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := th.transcriptionService.Delete(c.Request.Context(), userID, id); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
