package deck

import "context"

// Repository persists presentations and their slides. Slide writes are keyed
// by (presentation, index) so concurrent save-as-you-go writes for different
// indexes never conflict.
type Repository interface {
	CreatePresentation(ctx context.Context, p *Presentation) error
	UpdatePresentation(ctx context.Context, p *Presentation) error
	FindByPublicID(ctx context.Context, publicID string) (*Presentation, error)
	SaveSlide(ctx context.Context, presentationID uint, s *Slide) error
	ListSlides(ctx context.Context, presentationID uint) ([]Slide, error)
}

// ExportJobRepository persists export jobs.
type ExportJobRepository interface {
	CreateJob(ctx context.Context, job *ExportJob) error
	UpdateJob(ctx context.Context, job *ExportJob) error
	FindJobByPublicID(ctx context.Context, publicID string) (*ExportJob, error)
}
