package api

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"textbook-tutor/internal/domain/entity"
	"textbook-tutor/internal/domain/repository"
	"textbook-tutor/internal/usecase"
)

type Handler struct {
	orchestrator *usecase.Orchestrator
	pipeline     *usecase.TransformPipeline
	limiter      repository.TokenLimiter            // optional
	health       repository.CollectionHealthChecker // optional
	status       ConfigStatus
	validate     *validator.Validate
	logger       zerolog.Logger
}

func NewHandler(orch *usecase.Orchestrator, pipeline *usecase.TransformPipeline, limiter repository.TokenLimiter, health repository.CollectionHealthChecker, status ConfigStatus, logger zerolog.Logger) *Handler {
	return &Handler{
		orchestrator: orch,
		pipeline:     pipeline,
		limiter:      limiter,
		health:       health,
		status:       status,
		validate:     validator.New(),
		logger:       logger.With().Str("component", "api").Logger(),
	}
}

func (h *Handler) HandleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if problem := h.bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	if req.UserID != "" && h.limiter != nil {
		allowed, err := h.limiter.CheckLimit(c.UserContext(), req.UserID)
		if err != nil {
			// Fail open: a broken limiter must not take chat down.
			h.logger.Warn().Err(err).Msg("token limiter check failed")
		} else if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": entity.ErrRateLimitExceeded.Error()})
		}
	}

	result := h.orchestrator.Execute(c.UserContext(), entity.ChatRequest{
		UserID:       req.UserID,
		Query:        req.Query,
		SelectedText: req.SelectedText,
		CurrentPage:  req.CurrentPage,
		History:      lo.Map(req.ConversationHistory, toTurn),
	})

	if req.UserID != "" && h.limiter != nil && result.TokenCount > 0 {
		// Usage is recorded after the response; the request context may already be gone.
		go func(userID string, tokens int) {
			if err := h.limiter.Increment(context.Background(), userID, tokens); err != nil {
				h.logger.Warn().Err(err).Msg("failed to record token usage")
			}
		}(req.UserID, result.TokenCount)
	}

	return c.Status(fiber.StatusOK).JSON(ChatResponse{
		Answer:              result.Answer,
		Sources:             result.Sources,
		SearchUsed:          result.SearchUsed,
		ConversationHistory: lo.Map(result.History, fromTurn),
	})
}

func (h *Handler) HandlePersonalize(c *fiber.Ctx) error {
	var req PersonalizationRequest
	if problem := h.bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id must be a UUID"})
	}

	out, err := h.pipeline.Personalize(c.UserContext(), req.ChapterContent, entity.UserProfile{
		UserID:             userID.String(),
		SoftwareBackground: req.SoftwareBackground,
		HardwareBackground: req.HardwareBackground,
	})
	if err != nil {
		return h.transformError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(PersonalizationResponse{PersonalizedContent: out})
}

func (h *Handler) HandleTranslate(c *fiber.Ctx) error {
	var req TranslationRequest
	if problem := h.bind(c, &req); problem != nil {
		return c.Status(fiber.StatusBadRequest).JSON(problem)
	}

	out, err := h.pipeline.Translate(c.UserContext(), req.ChapterContent, req.TargetLanguage)
	if err != nil {
		return h.transformError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(TranslationResponse{TranslatedContent: out})
}

func (h *Handler) HandleConfigCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.status)
}

func (h *Handler) HandleRetrievalHealth(c *fiber.Ctx) error {
	if h.health == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "error",
			"message": "vector search is not configured",
		})
	}
	health, err := h.health.Health(c.UserContext())
	if err != nil {
		h.logger.Error().Err(err).Msg("collection health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	if !health.Exists {
		return c.Status(fiber.StatusServiceUnavailable).JSON(health)
	}
	return c.Status(fiber.StatusOK).JSON(health)
}

// bind parses and validates the body. A non-nil result is the 400 payload.
func (h *Handler) bind(c *fiber.Ctx, out any) fiber.Map {
	if err := c.BodyParser(out); err != nil {
		return fiber.Map{"error": "invalid request body"}
	}
	err := h.validate.Struct(out)
	if err == nil {
		return nil
	}
	problem := fiber.Map{"error": entity.ErrInvalidRequest.Error()}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		problem["fields"] = lo.Map(verrs, func(fe validator.FieldError, _ int) string {
			return strings.ToLower(fe.Field()) + ": " + fe.Tag()
		})
	}
	return problem
}

func (h *Handler) transformError(c *fiber.Ctx, err error) error {
	if errors.Is(err, entity.ErrMissingCredential) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": entity.CategoryConfiguration.Message()})
	}
	h.logger.Error().Err(err).Msg("transform failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal gateway error"})
}
