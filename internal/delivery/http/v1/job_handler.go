package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUC domain.JobUsecase
}

func NewJobHandler(jobs *gin.RouterGroup, export *gin.RouterGroup, jobUC domain.JobUsecase) {
	handler := &JobHandler{jobUC: jobUC}

	jobs.GET("", handler.List)
	jobs.GET("/:id", handler.Get)
	jobs.POST("", handler.Create)
	jobs.PUT("/:id", handler.Update)
	jobs.DELETE("/:id", handler.Delete)

	export.GET("/jobs", handler.Export)
}

// JobRequest is the body accepted by create and update. Any id in the body is ignored.
type JobRequest struct {
	Title             string   `json:"title" example:"Software Engineer"`
	CompanyName       string   `json:"companyName" example:"Google"`
	ApplicationDate   string   `json:"applicationDate" example:"2025-01-01"`
	ApplicationStatus string   `json:"applicationStatus" example:"Submitted"`
	InterviewDate     *string  `json:"interviewDate" example:"2025-01-10"`
	Skills            []string `json:"skills"`
	ContactName       string   `json:"contact_name"`
	ContactEmail      string   `json:"contact_email"`
	ContactPhone      string   `json:"contact_phone"`
}

func (r JobRequest) toDomain(id int64) *domain.JobApplication {
	return &domain.JobApplication{
		ID:                id,
		Title:             r.Title,
		CompanyName:       r.CompanyName,
		ApplicationDate:   r.ApplicationDate,
		ApplicationStatus: r.ApplicationStatus,
		InterviewDate:     r.InterviewDate,
		Skills:            r.Skills,
		ContactName:       r.ContactName,
		ContactEmail:      r.ContactEmail,
		ContactPhone:      r.ContactPhone,
	}
}

// ListJobs godoc
// @Summary      List job applications
// @Description  Every stored application, ordered by id
// @Tags         jobs
// @Produce      json
// @Success      200  {array}   domain.JobApplication
// @Failure      401  {object}  response.ErrorResponse
// @Failure      500  {object}  response.ErrorResponse
// @Router       /jobs [get]
// @Security     BearerAuth
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.jobUC.ListJobs(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, jobs)
}

// GetJob godoc
// @Summary      Get a job application
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  domain.JobApplication
// @Failure      400  {object}  response.ErrorResponse
// @Failure      404  {object}  response.ErrorResponse
// @Router       /jobs/{id} [get]
// @Security     BearerAuth
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	job, err := h.jobUC.GetJob(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// CreateJob godoc
// @Summary      Create a job application
// @Description  title, companyName, applicationDate and applicationStatus are required
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        job  body      JobRequest  true  "Job JSON"
// @Success      201  {object}  domain.JobApplication
// @Failure      400  {object}  response.ErrorResponse
// @Failure      500  {object}  response.ErrorResponse
// @Router       /jobs [post]
// @Security     BearerAuth
func (h *JobHandler) Create(c *gin.Context) {
	var req JobRequest
	if !bindJob(c, &req) {
		return
	}

	job := req.toDomain(0)
	if err := h.jobUC.CreateJob(c.Request.Context(), job); err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusCreated, job)
}

// UpdateJob godoc
// @Summary      Replace a job application
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id   path      int         true  "Job ID"
// @Param        job  body      JobRequest  true  "Job JSON"
// @Success      200  {object}  domain.JobApplication
// @Failure      400  {object}  response.ErrorResponse
// @Failure      404  {object}  response.ErrorResponse
// @Failure      500  {object}  response.ErrorResponse
// @Router       /jobs/{id} [put]
// @Security     BearerAuth
func (h *JobHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req JobRequest
	if !bindJob(c, &req) {
		return
	}

	job := req.toDomain(id)
	if err := h.jobUC.UpdateJob(c.Request.Context(), job); err != nil {
		c.Error(err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// DeleteJob godoc
// @Summary      Delete a job application
// @Tags         jobs
// @Produce      json
// @Param        id   path      int  true  "Job ID"
// @Success      200  {object}  response.MessageResponse
// @Failure      400  {object}  response.ErrorResponse
// @Failure      404  {object}  response.ErrorResponse
// @Router       /jobs/{id} [delete]
// @Security     BearerAuth
func (h *JobHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.jobUC.DeleteJob(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Message(c, http.StatusOK, "Job deleted successfully")
}

// ExportJobs godoc
// @Summary      Export job applications
// @Description  Download all applications as an Excel workbook
// @Tags         jobs
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    file
// @Failure      500  {object}  response.ErrorResponse
// @Router       /export/jobs [get]
// @Security     BearerAuth
func (h *JobHandler) Export(c *gin.Context) {
	data, filename, err := h.jobUC.ExportJobs(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.Error(apperror.BadRequest("Invalid ID format"))
		return 0, false
	}
	return id, true
}

// bindJob decodes the request body. An empty body binds as an empty object so
// the required-field check reports what is missing.
func bindJob(c *gin.Context, req *JobRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperror.BadRequest("Invalid request body"))
		return false
	}
	return true
}
