package postgres

import (
	"context"
	"database/sql"
	"errors"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const jobSelect = `SELECT id, title, companyName, applicationDate, applicationStatus, interviewDate, skills,
	COALESCE(contact_name, ''), COALESCE(contact_email, ''), COALESCE(contact_phone, '') FROM jobs`

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

func scanJob(row pgx.Row) (*domain.JobApplication, error) {
	var (
		job           domain.JobApplication
		interviewDate sql.NullString
		skills        sql.NullString
	)
	err := row.Scan(
		&job.ID, &job.Title, &job.CompanyName, &job.ApplicationDate, &job.ApplicationStatus,
		&interviewDate, &skills,
		&job.ContactName, &job.ContactEmail, &job.ContactPhone,
	)
	if err != nil {
		return nil, err
	}
	job.InterviewDate = repository.StringPtr(interviewDate)
	job.Skills = repository.DecodeSkills(skills)
	return &job, nil
}

func (r *jobRepo) Create(ctx context.Context, job *domain.JobApplication) error {
	query := `INSERT INTO jobs (title, companyName, applicationDate, applicationStatus, interviewDate, skills, contact_name, contact_email, contact_phone)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	return r.db.QueryRow(ctx, query,
		job.Title, job.CompanyName, job.ApplicationDate, job.ApplicationStatus,
		repository.NullableString(job.InterviewDate), repository.EncodeSkills(job.Skills),
		job.ContactName, job.ContactEmail, job.ContactPhone,
	).Scan(&job.ID)
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.JobApplication, error) {
	job, err := scanJob(r.db.QueryRow(ctx, jobSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *jobRepo) Fetch(ctx context.Context) ([]domain.JobApplication, error) {
	rows, err := r.db.Query(ctx, jobSelect+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []domain.JobApplication{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (r *jobRepo) Update(ctx context.Context, job *domain.JobApplication) error {
	query := `UPDATE jobs SET
		title = $2,
		companyName = $3,
		applicationDate = $4,
		applicationStatus = $5,
		interviewDate = $6,
		skills = $7,
		contact_name = $8,
		contact_email = $9,
		contact_phone = $10
	WHERE id = $1`
	result, err := r.db.Exec(ctx, query,
		job.ID, job.Title, job.CompanyName, job.ApplicationDate, job.ApplicationStatus,
		repository.NullableString(job.InterviewDate), repository.EncodeSkills(job.Skills),
		job.ContactName, job.ContactEmail, job.ContactPhone,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func (r *jobRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func affectedOrNotFound(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
