package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizlab-backend/internal/domain"
	"github.com/yungbote/quizlab-backend/internal/http/response"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/services"
)

type QuizHandler struct {
	log         *logger.Logger
	quizService services.QuizService
}

func NewQuizHandler(log *logger.Logger, quizService services.QuizService) *QuizHandler {
	return &QuizHandler{
		log:         log.With("handler", "QuizHandler"),
		quizService: quizService,
	}
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var in services.CreateQuizInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	in.SourceType = domain.SourceManual
	quiz, err := h.quizService.Create(dbcOf(c), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"quiz": quiz})
}

func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	groupID, err := optionalUUID(c.Query("group_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	quizzes, err := h.quizService.List(dbcOf(c), groupID)
	if err != nil {
		h.log.Error("ListQuizzes failed", "error", err)
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quizzes": quizzes})
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	quiz, err := h.quizService.Get(dbcOf(c), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quiz": quiz})
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var in services.UpdateQuizInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	quiz, err := h.quizService.Update(dbcOf(c), id, in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quiz": quiz})
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if err := h.quizService.Delete(dbcOf(c), id); err != nil {
		h.log.Error("DeleteQuiz failed", "error", err, "quiz_id", id)
		response.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *QuizHandler) AddReview(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var q domain.Question
	if err := bindJSON(c, &q); err != nil {
		response.RespondError(c, err)
		return
	}
	quiz, err := h.quizService.AddReview(dbcOf(c), id, q)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"review_questions": quiz.ReviewQuestions})
}

func (h *QuizHandler) RemoveReview(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondError(c, err)
		return
	}
	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := bindJSON(c, &body); err != nil {
		response.RespondError(c, err)
		return
	}
	quiz, err := h.quizService.RemoveReview(dbcOf(c), id, body.Prompt)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"review_questions": quiz.ReviewQuestions})
}

// ListReview serves the play-all review set, optionally for one group.
func (h *QuizHandler) ListReview(c *gin.Context) {
	groupID, err := optionalUUID(c.Query("group_id"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	questions, err := h.quizService.ListReviewQuestions(dbcOf(c), groupID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"questions": questions})
}
