package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizlab-backend/internal/http/response"
	"github.com/yungbote/quizlab-backend/internal/platform/apierr"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/services"
)

type ShareHandler struct {
	log          *logger.Logger
	shareService services.ShareService
}

func NewShareHandler(log *logger.Logger, shareService services.ShareService) *ShareHandler {
	return &ShareHandler{
		log:          log.With("handler", "ShareHandler"),
		shareService: shareService,
	}
}

func (h *ShareHandler) CreateLink(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	link, err := h.shareService.CreateOrGetLink(dbcOf(c), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"share_link": link})
}

func (h *ShareHandler) SetEnabled(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var body struct {
		IsEnabled *bool `json:"is_enabled"`
	}
	if err := bindJSON(c, &body); err != nil {
		response.RespondError(c, err)
		return
	}
	if body.IsEnabled == nil {
		response.RespondError(c, apierr.BadRequest("Missing is_enabled"))
		return
	}
	link, err := h.shareService.SetEnabled(dbcOf(c), id, *body.IsEnabled)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"share_link": link})
}

// GetShared and RecordAttempt are public.
func (h *ShareHandler) GetShared(c *gin.Context) {
	shared, err := h.shareService.GetShared(dbcOf(c), c.Param("slug"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, shared)
}

func (h *ShareHandler) RecordAttempt(c *gin.Context) {
	var in services.RecordAttemptInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := h.shareService.RecordAttempt(dbcOf(c), c.Param("slug"), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *ShareHandler) ListScores(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	board, err := h.shareService.ListScores(dbcOf(c), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, board)
}
