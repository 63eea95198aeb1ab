package exports

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/badgeforge/backend/internal/middleware"
	"github.com/badgeforge/backend/internal/models"
	"github.com/badgeforge/backend/pkg/queue"
	"github.com/badgeforge/backend/pkg/response"
	"github.com/badgeforge/backend/pkg/storage"
)

// CreateRequest is the body for POST /exports.
type CreateRequest struct {
	TemplateID      string `json:"template_id,omitempty"`
	Archetype       string `json:"archetype" binding:"required"`
	FilenamePattern string `json:"filename_pattern,omitempty"`
}

// StatusResponse is the export row plus a download URL once the manifest is
// ready.
type StatusResponse struct {
	models.BadgeExport
	ManifestURL string `json:"manifest_url,omitempty"`
}

// Handler handles export HTTP endpoints.
type Handler struct {
	repo   *Repository
	queue  *queue.Queue
	store  *storage.S3
	logger *zap.Logger
}

// NewHandler creates an exports handler.
func NewHandler(repo *Repository, q *queue.Queue, store *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, queue: q, store: store, logger: logger}
}

// Create handles POST /exports. Persists a queued job and hands it to the
// worker queue.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	archetype, ok := models.ParseArchetype(req.Archetype)
	if !ok {
		response.BadRequest(c, "unknown archetype")
		return
	}
	var templateID *uuid.UUID
	if req.TemplateID != "" {
		id, err := uuid.Parse(req.TemplateID)
		if err != nil {
			response.BadRequest(c, "invalid template id")
			return
		}
		templateID = &id
	}

	e := &models.BadgeExport{
		OwnerID:         userID,
		TemplateID:      templateID,
		Archetype:       archetype,
		FilenamePattern: req.FilenamePattern,
		Status:          models.ExportQueued,
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("create export failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to create export")
		return
	}
	if err := h.queue.EnqueueBadgeExport(c.Request.Context(), queue.BadgeExportPayload{ExportID: e.ID, OwnerID: userID}); err != nil {
		h.logger.Error("enqueue export failed", zap.Error(err), zap.String("export_id", e.ID.String()))
		if ferr := h.repo.SetFailed(c.Request.Context(), e.ID, "failed to enqueue"); ferr != nil {
			h.logger.Error("mark export failed", zap.Error(ferr))
		}
		response.Internal(c, "failed to enqueue export")
		return
	}
	response.Created(c, e)
}

// List handles GET /exports.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.List(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list exports")
		return
	}
	response.OK(c, list)
}

// Get handles GET /exports/:id. Includes a presigned manifest URL when the
// job is done.
func (h *Handler) Get(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid export id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		response.NotFound(c, "export not found")
		return
	}
	resp := StatusResponse{BadgeExport: *e}
	h.attachManifestURL(c, &resp)
	response.OK(c, resp)
}

func (h *Handler) attachManifestURL(c *gin.Context, resp *StatusResponse) {
	e := &resp.BadgeExport
	if e.Status == models.ExportDone && e.ManifestKey != "" {
		url, err := h.store.GeneratePresignedDownloadURL(c.Request.Context(), h.store.ExportsBucket(), e.ManifestKey, h.store.PresignExpire())
		if err != nil {
			h.logger.Warn("presign manifest failed", zap.Error(err), zap.String("key", e.ManifestKey))
		} else {
			resp.ManifestURL = url
		}
	}
}

// Manifest handles GET /exports/:id/manifest. Streams the manifest through
// the API for callers that cannot follow presigned URLs.
func (h *Handler) Manifest(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid export id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		response.NotFound(c, "export not found")
		return
	}
	if e.Status != models.ExportDone || e.ManifestKey == "" {
		response.Conflict(c, "export not finished")
		return
	}
	body, contentType, err := h.store.GetObjectStream(c.Request.Context(), h.store.ExportsBucket(), e.ManifestKey)
	if err != nil {
		h.logger.Error("manifest stream failed", zap.Error(err), zap.String("key", e.ManifestKey))
		response.Internal(c, "failed to fetch manifest")
		return
	}
	defer body.Close()
	if contentType == "" {
		contentType = "application/json"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}
