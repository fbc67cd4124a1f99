package persist

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"storygen/internal/fileutil"
	"storygen/internal/logging"
	"storygen/internal/services"
	"storygen/internal/story"
)

// UploadResult describes the outcome of pushing a story to the content store.
type UploadResult struct {
	Success           bool
	QuestionsUploaded int
	PassageID         string
	Error             string
}

// Warning returns the story warning for a failed upload, or "" on success.
func (r UploadResult) Warning() string {
	if r.Success {
		return ""
	}
	return "upload failed: " + r.Error
}

// Uploader pushes finished stories to a remote content store.
type Uploader interface {
	UploadStory(ctx context.Context, s story.Story) (UploadResult, error)
}

// Paths lists the files written for one story.
type Paths struct {
	Module string
	JSON   string
}

// Persister writes stories to disk and uploads them.
type Persister struct {
	uploader Uploader
	logger   *slog.Logger
}

// New constructs a Persister. A nil uploader disables uploads.
func New(uploader Uploader, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Persister{uploader: uploader, logger: logging.NewComponentLogger(logger, "persist")}
}

// Summary returns the summary written alongside s.
func Summary(s story.Story) story.Summary {
	return s.Summary()
}

// JSONPath returns the sibling JSON path for a module path.
func JSONPath(modulePath string) string {
	return strings.TrimSuffix(modulePath, filepath.Ext(modulePath)) + ".json"
}

// Persist overwrites the placeholder file with the finished module and writes
// the sibling JSON document. The module no longer contains the sentinel, so
// the file is Filled on the next scan.
func (p *Persister) Persist(ctx context.Context, file story.PlaceholderFile, s story.Story) (Paths, error) {
	doc := NewDocument(s)
	module, err := RenderModule(doc)
	if err != nil {
		return Paths{}, services.Wrap(services.ErrValidation, "persist", "render module", "Could not render story module", err)
	}
	encoded, err := RenderJSON(doc)
	if err != nil {
		return Paths{}, services.Wrap(services.ErrValidation, "persist", "render json", "Could not render story JSON", err)
	}

	paths := Paths{Module: file.Path, JSON: JSONPath(file.Path)}
	if err := fileutil.WriteFileVerified(paths.Module, module, 0o644); err != nil {
		return Paths{}, services.Wrap(services.ErrTransient, "persist", "write module", "Could not write story module", err)
	}
	if err := fileutil.WriteFileAtomic(paths.JSON, encoded, 0o644); err != nil {
		return Paths{}, services.Wrap(services.ErrTransient, "persist", "write json", "Could not write story JSON", err)
	}
	logging.WithContext(ctx, p.logger).Info("story persisted",
		logging.String("module", filepath.Base(paths.Module)),
		logging.String("json", filepath.Base(paths.JSON)),
		logging.Int("questions", len(s.Questions)),
	)
	return paths, nil
}

// UploadEnabled reports whether an uploader is configured.
func (p *Persister) UploadEnabled() bool {
	return p.uploader != nil
}

// Upload pushes s to the content store. Failures are reported in the result
// and logged, never returned.
func (p *Persister) Upload(ctx context.Context, s story.Story) UploadResult {
	logger := logging.WithContext(ctx, p.logger)
	if p.uploader == nil {
		return UploadResult{Success: true}
	}
	result, err := p.uploader.UploadStory(ctx, s)
	if err != nil {
		result = UploadResult{Error: err.Error()}
	} else if !result.Success && result.Error == "" {
		result.Error = "content store rejected the story"
	}
	if !result.Success {
		logging.WarnWithContext(logger, "story upload failed", "upload_failed",
			logging.String("error", result.Error),
			logging.String(logging.FieldErrorHint, "check upload.database_url and network access"),
			logging.String(logging.FieldImpact, "story saved locally but not published"),
		)
		return result
	}
	logger.Info("story uploaded",
		logging.String("passage_id", result.PassageID),
		logging.Int("questions", result.QuestionsUploaded),
	)
	return result
}

// Describe formats paths for reports.
func (p Paths) Describe() string {
	return fmt.Sprintf("%s (+%s)", filepath.Base(p.Module), filepath.Base(p.JSON))
}
