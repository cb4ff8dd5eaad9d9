package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizlab-backend/internal/http/response"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/services"
)

type GroupHandler struct {
	log          *logger.Logger
	groupService services.GroupService
}

func NewGroupHandler(log *logger.Logger, groupService services.GroupService) *GroupHandler {
	return &GroupHandler{
		log:          log.With("handler", "GroupHandler"),
		groupService: groupService,
	}
}

type groupBody struct {
	Name string `json:"name"`
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var body groupBody
	if err := bindJSON(c, &body); err != nil {
		response.RespondError(c, err)
		return
	}
	g, err := h.groupService.Create(dbcOf(c), body.Name)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": g})
}

func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.List(dbcOf(c))
	if err != nil {
		h.log.Error("ListGroups failed", "error", err)
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"groups": groups})
}

func (h *GroupHandler) RenameGroup(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var body groupBody
	if err := bindJSON(c, &body); err != nil {
		response.RespondError(c, err)
		return
	}
	g, err := h.groupService.Rename(dbcOf(c), id, body.Name)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"group": g})
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.groupService.Delete(dbcOf(c), id); err != nil {
		response.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
