package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizlab-backend/internal/http/response"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/services"
)

type GradingHandler struct {
	log            *logger.Logger
	gradingService services.GradingService
}

func NewGradingHandler(log *logger.Logger, gradingService services.GradingService) *GradingHandler {
	return &GradingHandler{
		log:            log.With("handler", "GradingHandler"),
		gradingService: gradingService,
	}
}

func (h *GradingHandler) GradeAnswer(c *gin.Context) {
	var in services.GradeAnswerInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := h.gradingService.GradeAnswer(dbcOf(c), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *GradingHandler) GradeQuizQuestion(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var in services.GradeQuestionInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := h.gradingService.GradeQuizQuestion(dbcOf(c), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}
