package templates

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/badgeforge/backend/internal/layout"
	"github.com/badgeforge/backend/internal/middleware"
	"github.com/badgeforge/backend/internal/models"
	"github.com/badgeforge/backend/pkg/response"
)

// SaveRequest is the body for creating or updating a template.
type SaveRequest struct {
	Name          string            `json:"name" binding:"required"`
	Icon          string            `json:"icon,omitempty"`
	BaseArchetype string            `json:"base_archetype" binding:"required"`
	Layout        layout.Layout     `json:"layout" binding:"required"`
	Theme         *models.Theme     `json:"theme,omitempty"`
	CustomLabels  map[string]string `json:"custom_labels,omitempty"`
	Visibility    string            `json:"visibility,omitempty"`
}

// Handler handles template HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a templates handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Defaults handles GET /templates/defaults/:archetype. Returns the stock
// layout for an archetype so editors start from a sane arrangement.
func (h *Handler) Defaults(c *gin.Context) {
	archetype, ok := models.ParseArchetype(c.Param("archetype"))
	if !ok {
		response.BadRequest(c, "unknown archetype")
		return
	}
	response.OK(c, layout.Default(string(archetype)))
}

// Create handles POST /templates.
func (h *Handler) Create(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	t, err := h.fromRequest(&req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t.OwnerID = c.MustGet(middleware.ContextUserID).(uuid.UUID)

	if err := h.repo.Create(c.Request.Context(), t); err != nil {
		h.logger.Error("create template failed", zap.Error(err), zap.String("owner_id", t.OwnerID.String()))
		response.Internal(c, "failed to create template")
		return
	}
	response.Created(c, t)
}

// List handles GET /templates. Own templates plus public ones.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.List(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list templates")
		return
	}
	response.OK(c, list)
}

// Get handles GET /templates/:id.
func (h *Handler) Get(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	t, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		response.NotFound(c, "template not found")
		return
	}
	response.OK(c, t)
}

// Update handles PUT /templates/:id. Owner-only.
func (h *Handler) Update(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	t, err := h.fromRequest(&req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t.ID = id
	t.OwnerID = userID

	if err := h.repo.Update(c.Request.Context(), t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "template not found")
			return
		}
		h.logger.Error("update template failed", zap.Error(err), zap.String("template_id", id.String()))
		response.Internal(c, "failed to update template")
		return
	}
	updated, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		response.Internal(c, "failed to load template")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /templates/:id. Owner-only.
func (h *Handler) Delete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "template not found")
			return
		}
		response.Internal(c, "failed to delete template")
		return
	}
	response.NoContent(c)
}

func (h *Handler) fromRequest(req *SaveRequest) (*models.BadgeTemplate, error) {
	archetype, ok := models.ParseArchetype(req.BaseArchetype)
	if !ok {
		return nil, errors.New("unknown archetype")
	}
	visibility := models.VisibilityPrivate
	if req.Visibility == string(models.VisibilityPublic) {
		visibility = models.VisibilityPublic
	}
	return &models.BadgeTemplate{
		Name:          req.Name,
		Icon:          req.Icon,
		BaseArchetype: archetype,
		Layout:        req.Layout,
		Theme:         req.Theme,
		CustomLabels:  req.CustomLabels,
		Visibility:    visibility,
	}, nil
}
