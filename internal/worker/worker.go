package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/badgeforge/backend/internal/attendees"
	"github.com/badgeforge/backend/internal/binding"
	"github.com/badgeforge/backend/internal/exports"
	"github.com/badgeforge/backend/internal/layout"
	"github.com/badgeforge/backend/internal/models"
	"github.com/badgeforge/backend/internal/templates"
	"github.com/badgeforge/backend/pkg/queue"
	"github.com/badgeforge/backend/pkg/storage"
)

// ManifestElement is one rendered element of one badge: resolved text for
// text elements, a photo object key for media ones, plus its position.
type ManifestElement struct {
	Key      string                 `json:"key"`
	Kind     string                 `json:"kind"` // "text" or "media"
	Value    string                 `json:"value,omitempty"`
	PhotoKey string                 `json:"photo_key,omitempty"`
	Position layout.ElementPosition `json:"position"`
}

// ManifestEntry is one badge: the output filename and its elements.
type ManifestEntry struct {
	Filename string            `json:"filename"`
	Elements []ManifestElement `json:"elements"`
}

// Manifest is what the export worker hands to the renderer: everything needed
// to draw each badge, with labels already resolved against each record.
type Manifest struct {
	ExportID    string           `json:"export_id"`
	Archetype   models.Archetype `json:"archetype"`
	Layout      layout.Layout    `json:"layout"`
	Theme       *models.Theme    `json:"theme,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
	Badges      []ManifestEntry  `json:"badges"`
}

// ExportProcessor processes badge export jobs: resolve every layout element
// against every attendee, write the manifest to S3, update the export row.
type ExportProcessor struct {
	exportRepo   *exports.Repository
	templateRepo *templates.Repository
	attendeeRepo *attendees.Repository
	s3           *storage.S3
	queue        *queue.Queue
	logger       *zap.Logger
}

// NewExportProcessor creates a badge export processor.
func NewExportProcessor(exportRepo *exports.Repository, templateRepo *templates.Repository, attendeeRepo *attendees.Repository, s3 *storage.S3, q *queue.Queue, logger *zap.Logger) *ExportProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportProcessor{exportRepo: exportRepo, templateRepo: templateRepo, attendeeRepo: attendeeRepo, s3: s3, queue: q, logger: logger}
}

// Process executes one badge export job.
func (p *ExportProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeBadgeExport {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.BadgeExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	e, err := p.exportRepo.Get(ctx, payload.ExportID)
	if err != nil {
		return fmt.Errorf("export not found: %s", payload.ExportID)
	}
	if e.Status == models.ExportDone {
		p.logger.Info("export already done", zap.String("export_id", e.ID.String()))
		return nil
	}
	if err := p.exportRepo.SetProcessing(ctx, e.ID); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	manifest, err := p.buildManifest(ctx, e)
	if err != nil {
		if ferr := p.exportRepo.SetFailed(ctx, e.ID, err.Error()); ferr != nil {
			p.logger.Error("mark export failed", zap.Error(ferr), zap.String("export_id", e.ID.String()))
		}
		return err
	}

	body, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	key := storage.ExportKey(e.OwnerID.String(), e.ID.String())
	if _, err := p.s3.Upload(ctx, p.s3.ExportsBucket(), key, "application/json", bytes.NewReader(body)); err != nil {
		if ferr := p.exportRepo.SetFailed(ctx, e.ID, "manifest upload failed"); ferr != nil {
			p.logger.Error("mark export failed", zap.Error(ferr), zap.String("export_id", e.ID.String()))
		}
		return fmt.Errorf("s3 upload: %w", err)
	}

	if err := p.exportRepo.SetDone(ctx, e.ID, key); err != nil {
		return fmt.Errorf("update db: %w", err)
	}
	p.logger.Info("export completed",
		zap.String("export_id", e.ID.String()),
		zap.Int("badges", len(manifest.Badges)),
		zap.String("s3_key", key))
	return nil
}

func (p *ExportProcessor) buildManifest(ctx context.Context, e *models.BadgeExport) (*Manifest, error) {
	lay := layout.Default(string(e.Archetype))
	var theme *models.Theme
	var customLabels map[string]string
	if e.TemplateID != nil {
		t, err := p.templateRepo.GetByID(ctx, e.OwnerID, *e.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("template not found: %s", *e.TemplateID)
		}
		lay = t.Layout
		theme = t.Theme
		customLabels = t.CustomLabels
	}

	list, err := p.attendeeRepo.List(ctx, e.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}

	// Stable element order inside each badge.
	keys := make([]string, 0, len(lay))
	for key, pos := range lay {
		if !pos.Visible {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	manifest := &Manifest{
		ExportID:    e.ID.String(),
		Archetype:   e.Archetype,
		Layout:      lay,
		Theme:       theme,
		GeneratedAt: time.Now().UTC(),
	}
	for i := range list {
		a := &list[i]
		entry := ManifestEntry{Filename: binding.ExpandFilename(e.FilenamePattern, a)}
		for _, key := range keys {
			el := ManifestElement{Key: key, Position: lay[key]}
			if layout.IsMediaKey(key) {
				el.Kind = "media"
				if key == layout.KeyImage {
					el.PhotoKey = a.Image
				}
			} else {
				el.Kind = "text"
				el.Value = binding.Resolve(key, customLabels, a)
			}
			entry.Elements = append(entry.Elements, el)
		}
		manifest.Badges = append(manifest.Badges, entry)
	}
	return manifest, nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ExportProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("export worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
