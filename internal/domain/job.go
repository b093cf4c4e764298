package domain

import (
	"context"
	"errors"
)

// Common domain errors
var (
	ErrNotFound  = errors.New("resource not found")
	ErrDuplicate = errors.New("resource already exists")
)

// Suggested application statuses. The set is open: any non-empty value is stored.
const (
	StatusSubmitted          = "Submitted"
	StatusInReview           = "In Review"
	StatusInterviewScheduled = "Interview Scheduled"
	StatusOfferReceived      = "Offer Received"
	StatusRejected           = "Rejected"
)

// JobApplication is one tracked application. Skills is always a sequence at
// this level; its textual encoding belongs to the repositories.
type JobApplication struct {
	ID                int64    `json:"id"`
	Title             string   `json:"title" validate:"required,not_blank"`
	CompanyName       string   `json:"companyName" validate:"required,not_blank"`
	ApplicationDate   string   `json:"applicationDate" validate:"required,not_blank"`
	ApplicationStatus string   `json:"applicationStatus" validate:"required,not_blank"`
	InterviewDate     *string  `json:"interviewDate"`
	Skills            []string `json:"skills"`
	ContactName       string   `json:"contact_name"`
	ContactEmail      string   `json:"contact_email" validate:"omitempty,email"`
	ContactPhone      string   `json:"contact_phone" validate:"omitempty,valid_phone"`
}

type JobRepository interface {
	Create(ctx context.Context, job *JobApplication) error
	GetByID(ctx context.Context, id int64) (*JobApplication, error)
	Fetch(ctx context.Context) ([]JobApplication, error)
	Update(ctx context.Context, job *JobApplication) error
	Delete(ctx context.Context, id int64) error
}

type JobUsecase interface {
	CreateJob(ctx context.Context, job *JobApplication) error
	GetJob(ctx context.Context, id int64) (*JobApplication, error)
	ListJobs(ctx context.Context) ([]JobApplication, error)
	UpdateJob(ctx context.Context, job *JobApplication) error
	DeleteJob(ctx context.Context, id int64) error
	ExportJobs(ctx context.Context) ([]byte, string, error)
}

// SchemaManager owns table creation for a storage engine.
type SchemaManager interface {
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
}
