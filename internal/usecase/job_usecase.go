package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"
	"job-tracker-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

// MsgRequiredFields is returned when any required job field is missing or blank.
const MsgRequiredFields = "All required fields must be provided."

type jobUsecase struct {
	jobRepo  domain.JobRepository
	validate *validator.Validate
}

func NewJobUsecase(jobRepo domain.JobRepository, validate *validator.Validate) domain.JobUsecase {
	return &jobUsecase{
		jobRepo:  jobRepo,
		validate: validate,
	}
}

func (u *jobUsecase) CreateJob(ctx context.Context, job *domain.JobApplication) error {
	if err := u.check(job); err != nil {
		return err
	}
	normalizeJob(job)

	if err := u.jobRepo.Create(ctx, job); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (u *jobUsecase) GetJob(ctx context.Context, id int64) (*domain.JobApplication, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapJobError(err)
	}
	return job, nil
}

func (u *jobUsecase) ListJobs(ctx context.Context) ([]domain.JobApplication, error) {
	jobs, err := u.jobRepo.Fetch(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if jobs == nil {
		jobs = []domain.JobApplication{}
	}
	return jobs, nil
}

func (u *jobUsecase) UpdateJob(ctx context.Context, job *domain.JobApplication) error {
	if err := u.check(job); err != nil {
		return err
	}
	normalizeJob(job)

	if err := u.jobRepo.Update(ctx, job); err != nil {
		return mapJobError(err)
	}
	return nil
}

func (u *jobUsecase) DeleteJob(ctx context.Context, id int64) error {
	if err := u.jobRepo.Delete(ctx, id); err != nil {
		return mapJobError(err)
	}
	return nil
}

// check rejects a record before any storage call.
func (u *jobUsecase) check(job *domain.JobApplication) error {
	if job == nil {
		return apperror.BadRequest(MsgRequiredFields)
	}
	if err := u.validate.Struct(job); err != nil {
		if validation.HasTag(err, "required", "not_blank") {
			return apperror.BadRequest(MsgRequiredFields)
		}
		return apperror.BadRequest(validation.Message(err))
	}
	return nil
}

// normalizeJob fills defaults: skills becomes an empty list and an empty
// interview date becomes null.
func normalizeJob(job *domain.JobApplication) {
	if job.Skills == nil {
		job.Skills = []string{}
	}
	if job.InterviewDate != nil && strings.TrimSpace(*job.InterviewDate) == "" {
		job.InterviewDate = nil
	}
}

func mapJobError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound("Job not found")
	}
	return apperror.Internal(err)
}

var exportColumns = []string{
	"ID", "TITLE", "COMPANY", "APPLICATION DATE", "STATUS",
	"INTERVIEW DATE", "SKILLS", "CONTACT NAME", "CONTACT EMAIL", "CONTACT PHONE",
}

// ExportJobs renders every job as an XLSX workbook.
func (u *jobUsecase) ExportJobs(ctx context.Context) ([]byte, string, error) {
	jobs, err := u.ListJobs(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Applications"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", apperror.Internal(err)
	}

	for i, header := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	// Dark blue header row with white text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, job := range jobs {
		interview := ""
		if job.InterviewDate != nil {
			interview = *job.InterviewDate
		}
		row := []interface{}{
			job.ID,
			job.Title,
			job.CompanyName,
			job.ApplicationDate,
			job.ApplicationStatus,
			interview,
			strings.Join(job.Skills, ", "),
			job.ContactName,
			job.ContactEmail,
			job.ContactPhone,
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, "", apperror.Internal(err)
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to write Excel file: %w", err))
	}

	filename := fmt.Sprintf("job_applications_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}
