package attendees

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/badgeforge/backend/internal/middleware"
	"github.com/badgeforge/backend/internal/models"
	"github.com/badgeforge/backend/internal/schema"
	"github.com/badgeforge/backend/pkg/response"
	"github.com/badgeforge/backend/pkg/storage"
)

// TemplateCleaner removes a deleted data field from every template the owner
// has, so layouts never reference a column that no longer exists.
type TemplateCleaner interface {
	RemoveCustomField(ctx context.Context, ownerID uuid.UUID, label string) error
}

// ImportRequest is the body for POST /attendees/import.
type ImportRequest struct {
	RawText    string            `json:"raw_text" binding:"required"`
	Archetype  string            `json:"archetype,omitempty"`
	Merge      bool              `json:"merge,omitempty"`
	LabelHints map[string]string `json:"label_hints,omitempty"`
}

// ImportResponse reports the outcome of an import.
type ImportResponse struct {
	Archetype models.Archetype  `json:"archetype"`
	Count     int               `json:"count"`
	Attendees []models.Attendee `json:"attendees"`
}

// PhotoMatchResponse summarizes a bulk photo upload.
type PhotoMatchResponse struct {
	Matched int `json:"matched"`
	Failed  int `json:"failed"`
}

// Handler handles attendee HTTP endpoints.
type Handler struct {
	repo      *Repository
	importer  *schema.Importer
	templates TemplateCleaner
	store     *storage.S3
	logger    *zap.Logger
}

// NewHandler creates an attendees handler.
func NewHandler(repo *Repository, importer *schema.Importer, templates TemplateCleaner, store *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, importer: importer, templates: templates, store: store, logger: logger}
}

// Import handles POST /attendees/import. Parses pasted tabular text into
// attendee records and either replaces the owner's collection or merges into
// it by registration id.
func (h *Handler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	list, archetype, err := h.importer.Infer(c.Request.Context(), req.RawText, models.Archetype(req.Archetype), req.LabelHints)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.Merge {
		err = h.repo.MergeImport(c.Request.Context(), userID, list)
	} else {
		err = h.repo.ReplaceAll(c.Request.Context(), userID, list)
	}
	if err != nil {
		h.logger.Error("import attendees failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to import attendees")
		return
	}

	saved, err := h.repo.List(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load attendees")
		return
	}
	h.presentAll(c.Request.Context(), saved)
	response.OK(c, ImportResponse{Archetype: archetype, Count: len(saved), Attendees: saved})
}

// List handles GET /attendees.
func (h *Handler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	list, err := h.repo.List(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list attendees")
		return
	}
	h.presentAll(c.Request.Context(), list)
	response.OK(c, list)
}

// Get handles GET /attendees/:id.
func (h *Handler) Get(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		response.NotFound(c, "attendee not found")
		return
	}
	h.present(c.Request.Context(), a)
	response.OK(c, a)
}

// Update handles PUT /attendees/:id.
func (h *Handler) Update(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	existing, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		response.NotFound(c, "attendee not found")
		return
	}

	var req models.Attendee
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	req.ID = existing.ID
	req.OwnerID = userID
	req.RowIndex = existing.RowIndex
	if req.Archetype == "" {
		req.Archetype = existing.Archetype
	}
	if err := h.repo.Update(c.Request.Context(), &req); err != nil {
		h.logger.Error("update attendee failed", zap.Error(err), zap.String("attendee_id", id.String()))
		response.Internal(c, "failed to update attendee")
		return
	}
	updated, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		response.Internal(c, "failed to load attendee")
		return
	}
	h.present(c.Request.Context(), updated)
	response.OK(c, updated)
}

// Delete handles DELETE /attendees/:id.
func (h *Handler) Delete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		response.NotFound(c, "attendee not found")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), userID, id); err != nil {
		response.Internal(c, "failed to delete attendee")
		return
	}
	if a.Image != "" {
		if err := h.store.DeleteObject(c.Request.Context(), h.store.PhotosBucket(), a.Image); err != nil {
			h.logger.Warn("delete photo object failed", zap.Error(err), zap.String("key", a.Image))
		}
	}
	response.NoContent(c)
}

// Clear handles DELETE /attendees. Drops the owner's whole collection.
func (h *Handler) Clear(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if err := h.repo.Clear(c.Request.Context(), userID); err != nil {
		response.Internal(c, "failed to clear attendees")
		return
	}
	response.NoContent(c)
}

// DeleteField handles DELETE /attendees/fields/:label. Removes the extras key
// from every attendee and cascades into templates: the custom label and its
// layout element go with it.
func (h *Handler) DeleteField(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	label := c.Param("label")
	if label == "" {
		response.BadRequest(c, "missing field label")
		return
	}
	if err := h.repo.DeleteExtraField(c.Request.Context(), userID, label); err != nil {
		h.logger.Error("delete extra field failed", zap.Error(err), zap.String("label", label))
		response.Internal(c, "failed to delete field")
		return
	}
	if err := h.templates.RemoveCustomField(c.Request.Context(), userID, label); err != nil {
		h.logger.Error("cascade field deletion to templates failed", zap.Error(err), zap.String("label", label))
		response.Internal(c, "failed to update templates")
		return
	}
	response.NoContent(c)
}

// UploadPhoto handles PUT /attendees/:id/photo. Stores a single portrait and
// binds it to the attendee.
func (h *Handler) UploadPhoto(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid attendee id")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), userID, id); err != nil {
		response.NotFound(c, "attendee not found")
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		response.BadRequest(c, "missing photo file")
		return
	}
	key, err := h.storePhoto(c.Request.Context(), userID, id, file)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.repo.UpdateImage(c.Request.Context(), userID, id, key); err != nil {
		response.Internal(c, "failed to save photo")
		return
	}
	response.NoContent(c)
}

// MatchPhotosBulk handles POST /attendees/photos. Accepts a batch of files and
// binds each to the attendee row named by the first digit run in its filename.
func (h *Handler) MatchPhotosBulk(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "invalid multipart form")
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		response.BadRequest(c, "no photo files provided")
		return
	}

	list, err := h.repo.List(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list attendees")
		return
	}

	filenames := make([]string, len(files))
	for i, f := range files {
		filenames[i] = f.Filename
	}
	bindings, failed := MatchPhotos(filenames, len(list))

	matched := 0
	for _, b := range bindings {
		a := list[b.RowIndex]
		key, err := h.storePhoto(c.Request.Context(), userID, a.ID, files[b.FileIndex])
		if err != nil {
			failed++
			continue
		}
		if err := h.repo.UpdateImage(c.Request.Context(), userID, a.ID, key); err != nil {
			failed++
			continue
		}
		matched++
	}
	response.OK(c, PhotoMatchResponse{Matched: matched, Failed: failed})
}

func (h *Handler) storePhoto(ctx context.Context, ownerID, attendeeID uuid.UUID, file *multipart.FileHeader) (string, error) {
	if file.Size > storage.MaxPhotoFileSize {
		return "", fmt.Errorf("photo exceeds %d bytes", int64(storage.MaxPhotoFileSize))
	}
	contentType := file.Header.Get("Content-Type")
	if !storage.ValidatePhotoFileType(contentType, file.Filename) {
		return "", fmt.Errorf("unsupported photo type %q", contentType)
	}
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	key := storage.PhotoKey(ownerID.String(), attendeeID.String(), file.Filename)
	if _, err := h.store.Upload(ctx, h.store.PhotosBucket(), key, contentType, src); err != nil {
		h.logger.Error("photo upload failed", zap.Error(err), zap.String("key", key))
		return "", fmt.Errorf("failed to store photo")
	}
	return key, nil
}

// present swaps the stored photo key for a presigned download URL.
func (h *Handler) present(ctx context.Context, a *models.Attendee) {
	if a.Image == "" {
		return
	}
	url, err := h.store.GeneratePresignedDownloadURL(ctx, h.store.PhotosBucket(), a.Image, h.store.PresignExpire())
	if err != nil {
		h.logger.Warn("presign photo failed", zap.Error(err), zap.String("key", a.Image))
		return
	}
	a.Image = url
}

func (h *Handler) presentAll(ctx context.Context, list []models.Attendee) {
	for i := range list {
		h.present(ctx, &list[i])
	}
}
