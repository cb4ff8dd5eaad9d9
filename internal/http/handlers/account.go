package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizlab-backend/internal/http/response"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/services"
)

type AccountHandler struct {
	log            *logger.Logger
	accountService services.AccountService
}

func NewAccountHandler(log *logger.Logger, accountService services.AccountService) *AccountHandler {
	return &AccountHandler{
		log:            log.With("handler", "AccountHandler"),
		accountService: accountService,
	}
}

func (h *AccountHandler) GetMe(c *gin.Context) {
	me, err := h.accountService.Me(dbcOf(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, me)
}

func (h *AccountHandler) Adopt(c *gin.Context) {
	var in services.AdoptInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := h.accountService.Adopt(dbcOf(c), in)
	if err != nil {
		h.log.Error("Adopt failed", "error", err, "old_id", in.OldID)
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	deleted, err := h.accountService.DeleteAccount(dbcOf(c))
	if err != nil {
		h.log.Error("DeleteAccount failed", "error", err)
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": deleted})
}
