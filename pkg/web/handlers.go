package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/formtrigger/pkg/hooks"
	"github.com/dukex/formtrigger/pkg/metrics"
	"github.com/dukex/formtrigger/pkg/models"
	"github.com/dukex/formtrigger/pkg/persistence"
	"github.com/dukex/formtrigger/pkg/registry"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

type APIHandlers struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	hooks       *hooks.Registry
	validator   *validator.Validate
	metrics     *metrics.Metrics
}

func NewAPIHandlers(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	hookRegistry *hooks.Registry,
	validator *validator.Validate,
	m *metrics.Metrics,
) *APIHandlers {
	return &APIHandlers{
		logger:      logger.With("module", "web"),
		persistence: persistence,
		registry:    registry,
		hooks:       hookRegistry,
		validator:   validator,
		metrics:     m,
	}
}

// SubmitForm receives the form plugin's success notification and fires the
// form submitted hook. Anonymous submissions are accepted and ignored by the
// listeners.
func (h *APIHandlers) SubmitForm(c fiber.Ctx) error {
	var req SubmissionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if !gjson.ValidBytes(req.Submission) || !gjson.ParseBytes(req.Submission).IsObject() {
		return badRequest(c, "Submission must be a JSON object")
	}

	h.metrics.SubmissionReceived()

	h.hooks.FormSubmitted.Do(requestContext(c), hooks.FormSubmission{
		Submission: req.Submission,
		Form:       *req.Form,
	})

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

func (h *APIHandlers) GetTriggers(c fiber.Ctx) error {
	return c.JSON(h.registry.Definitions())
}

func (h *APIHandlers) GetTrigger(c fiber.Ctx) error {
	definition, ok := h.registry.Definition(c.Params("type"))
	if !ok {
		return notFound(c, "Trigger not found")
	}

	return c.JSON(definition)
}

func (h *APIHandlers) GetAutomations(c fiber.Ctx) error {
	automations, err := h.persistence.Automations(requestContext(c))
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(automations)
}

func (h *APIHandlers) GetAutomation(c fiber.Ctx) error {
	automation, err := h.persistence.AutomationByID(requestContext(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(automation)
}

func (h *APIHandlers) CreateAutomation(c fiber.Ctx) error {
	var req CreateAutomationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	automation := &models.Automation{
		ID:       uuid.NewString(),
		Title:    req.Title,
		Status:   models.AutomationStatusActive,
		Triggers: make([]*models.Trigger, 0, len(req.Triggers)),
	}

	if req.Status != "" {
		automation.Status = models.AutomationStatus(req.Status)
	}

	for _, t := range req.Triggers {
		if err := h.registry.ValidateOptions(t.Type, t.Options); err != nil {
			return handleError(c, err)
		}

		options := t.Options
		if options == nil {
			options = models.TriggerOptions{}
		}

		automation.Triggers = append(automation.Triggers, &models.Trigger{
			ID:      uuid.NewString(),
			Type:    t.Type,
			Options: options,
		})
	}

	if err := h.persistence.SaveAutomation(requestContext(c), automation); err != nil {
		return internalError(c, err)
	}

	h.logger.InfoContext(requestContext(c), "Created automation",
		"automation_id", automation.ID,
		"triggers", len(automation.Triggers))

	return c.Status(fiber.StatusCreated).JSON(automation)
}

func (h *APIHandlers) DeleteAutomation(c fiber.Ctx) error {
	if err := h.persistence.DeleteAutomation(requestContext(c), c.Params("id")); err != nil {
		return handleError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetLogs(c fiber.Ctx) error {
	filter, err := parseLogFilter(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	logs, err := h.persistence.Logs(requestContext(c), filter)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(logs)
}

func parseLogFilter(c fiber.Ctx) (persistence.LogFilter, error) {
	filter := persistence.LogFilter{
		Type:         models.LogType(c.Query("type")),
		ObjectType:   c.Query("object_type"),
		AutomationID: c.Query("automation_id"),
	}

	if userID := c.Query("user_id"); userID != "" {
		id, err := strconv.ParseInt(userID, 10, 64)
		if err != nil {
			return filter, err
		}

		filter.UserID = id
	}

	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return filter, err
		}

		filter.Limit = n
	}

	return filter, nil
}

// GetLog returns a log entry with the display fields contributed by the
// log fields hook.
func (h *APIHandlers) GetLog(c fiber.Ctx) error {
	ctx := requestContext(c)

	entry, err := h.persistence.LogByID(ctx, c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	var object *models.Trigger

	if entry.Type == models.LogTypeTrigger && entry.ObjectID != "" {
		match, err := h.persistence.TriggerByID(ctx, entry.ObjectID)

		switch {
		case err == nil:
			object = match.Trigger
		case persistence.IsTriggerNotFound(err):
			h.logger.DebugContext(ctx, "Log trigger no longer exists", "log_id", entry.ID, "trigger_id", entry.ObjectID)
		default:
			return internalError(c, err)
		}
	}

	fields := h.hooks.LogFields.Apply(ctx, models.DefaultLogFields(), hooks.LogFieldsArgs{
		Log:    entry,
		Object: object,
	})

	return c.JSON(LogResponse{Log: entry, Fields: fields})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()

	repositoryCheck, repOk := "ok", true
	if err := h.persistence.HealthCheck(requestContext(c)); err != nil {
		repositoryCheck, repOk = err.Error(), false
	}

	status := "unhealthy"
	message := "Form trigger API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Form trigger API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
