package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizlab-backend/internal/http/response"
	"github.com/yungbote/quizlab-backend/internal/platform/logger"
	"github.com/yungbote/quizlab-backend/internal/services"
)

// GenerationHandler serves the model-backed endpoints: quiz generation,
// source indexing, hints and prompt suggestions.
type GenerationHandler struct {
	log               *logger.Logger
	generationService services.GenerationService
	sourceService     services.SourceService
	assistService     services.AssistService
}

func NewGenerationHandler(log *logger.Logger, generationService services.GenerationService, sourceService services.SourceService, assistService services.AssistService) *GenerationHandler {
	return &GenerationHandler{
		log:               log.With("handler", "GenerationHandler"),
		generationService: generationService,
		sourceService:     sourceService,
		assistService:     assistService,
	}
}

func (h *GenerationHandler) GenerateQuiz(c *gin.Context) {
	var in services.GenerateInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	quiz, err := h.generationService.Generate(dbcOf(c), in)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"quiz": quiz})
}

func (h *GenerationHandler) IndexSource(c *gin.Context) {
	var in services.IndexInput
	if err := bindJSON(c, &in); err != nil {
		response.RespondError(c, err)
		return
	}
	res, err := h.sourceService.Index(dbcOf(c), in)
	if err != nil {
		h.log.Error("IndexSource failed", "error", err)
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *GenerationHandler) Hint(c *gin.Context) {
	var body struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := bindJSON(c, &body); err != nil {
		response.RespondError(c, err)
		return
	}
	hint, err := h.assistService.Hint(dbcOf(c), body.Question, body.Answer)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"hint": hint})
}

func (h *GenerationHandler) PromptSuggestions(c *gin.Context) {
	var body struct {
		Topic   string `json:"topic"`
		Context string `json:"context"`
	}
	if err := bindJSON(c, &body); err != nil {
		response.RespondError(c, err)
		return
	}
	prompts, err := h.assistService.SuggestPrompts(dbcOf(c), body.Topic, body.Context)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"prompts": prompts})
}
