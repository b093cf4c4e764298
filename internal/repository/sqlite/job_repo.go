package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/internal/repository"
)

const jobSelect = `SELECT id, title, companyName, applicationDate, applicationStatus, interviewDate, skills,
	COALESCE(contact_name, ''), COALESCE(contact_email, ''), COALESCE(contact_phone, '') FROM jobs`

type jobRepo struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) domain.JobRepository {
	return &jobRepo{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*domain.JobApplication, error) {
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
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		job.Title, job.CompanyName, job.ApplicationDate, job.ApplicationStatus,
		repository.NullableString(job.InterviewDate), repository.EncodeSkills(job.Skills),
		job.ContactName, job.ContactEmail, job.ContactPhone,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	job.ID = id
	return nil
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.JobApplication, error) {
	job, err := scanJob(r.db.QueryRowContext(ctx, jobSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *jobRepo) Fetch(ctx context.Context) ([]domain.JobApplication, error) {
	rows, err := r.db.QueryContext(ctx, jobSelect+` ORDER BY id`)
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
		title = ?,
		companyName = ?,
		applicationDate = ?,
		applicationStatus = ?,
		interviewDate = ?,
		skills = ?,
		contact_name = ?,
		contact_email = ?,
		contact_phone = ?
	WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		job.Title, job.CompanyName, job.ApplicationDate, job.ApplicationStatus,
		repository.NullableString(job.InterviewDate), repository.EncodeSkills(job.Skills),
		job.ContactName, job.ContactEmail, job.ContactPhone,
		job.ID,
	)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func (r *jobRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func affectedOrNotFound(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
