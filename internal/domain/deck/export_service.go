package deck

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"deck-server/internal/domain/export"
	"deck-server/internal/domain/generation"
	"deck-server/internal/domain/status"
)

// ExportService builds presentation document models, either synchronously or
// through queued jobs picked up by the background workers.
type ExportService struct {
	builder *export.Builder
	repo    Repository
	jobs    ExportJobRepository
	log     zerolog.Logger
}

func NewExportService(builder *export.Builder, repo Repository, jobs ExportJobRepository, logger zerolog.Logger) *ExportService {
	return &ExportService{
		builder: builder,
		repo:    repo,
		jobs:    jobs,
		log:     logger.With().Str("component", "export_service").Logger(),
	}
}

// BuildDocument is the synchronous path: records in, document out, no I/O.
func (s *ExportService) BuildDocument(extracts []export.SlideExtract) *export.PresentationDocument {
	return s.builder.BuildDocument(extracts)
}

// Enqueue persists a queued export job for the presentation. The job row is
// the queue entry; workers claim it by status.
func (s *ExportService) Enqueue(ctx context.Context, presentationPublicID string, extracts []export.SlideExtract) (*ExportJob, error) {
	p, err := s.repo.FindByPublicID(ctx, presentationPublicID)
	if err != nil {
		return nil, fmt.Errorf("find presentation: %w", err)
	}

	job := &ExportJob{
		PublicID:       NewJobID(),
		PresentationID: p.ID,
		Status:         status.StatusQueued,
		Extracts:       extracts,
	}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create export job: %w", err)
	}
	s.log.Info().Str("job", job.PublicID).Str("deck", presentationPublicID).
		Int("slides", len(extracts)).Msg("export job enqueued")
	return job, nil
}

// GetJob returns the job's current state.
func (s *ExportService) GetJob(ctx context.Context, publicID string) (*ExportJob, error) {
	return s.jobs.FindJobByPublicID(ctx, publicID)
}

// Process runs one claimed job to a terminal state. Called by a worker after
// the queue marked the row as generating.
func (s *ExportService) Process(ctx context.Context, publicID string) error {
	job, err := s.jobs.FindJobByPublicID(ctx, publicID)
	if err != nil {
		return fmt.Errorf("load export job: %w", err)
	}
	if job.Status.IsTerminal() {
		return nil
	}

	job.Document = s.builder.BuildDocument(job.Extracts)
	job.Status = status.StatusCompleted
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		job.Document = nil
		job.Status = status.StatusFailed
		job.Error = &ErrorDetails{Kind: generation.ErrKindPersistenceFailure.String(), Message: err.Error()}
		if uerr := s.jobs.UpdateJob(ctx, job); uerr != nil {
			s.log.Error().Err(uerr).Str("job", publicID).Msg("persist failed export job")
		}
		return fmt.Errorf("persist export result: %w", err)
	}

	s.log.Info().Str("job", publicID).Int("slides", len(job.Document.Slides)).
		Msg("export job completed")
	return nil
}
