package v1

import (
	"net/http"
	"time"

	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/internal/domain"
	"job-tracker-backend/pkg/apperror"
	"job-tracker-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
}

func NewAuthHandler(api *gin.RouterGroup, authUC domain.AuthUsecase) {
	handler := &AuthHandler{authUC: authUC}

	api.POST("/register", handler.Register)
	api.POST("/login", handler.Login)
	api.PUT("/password", handler.ChangePassword)
	api.POST("/verify-password", handler.VerifyPassword)
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,trimmed_email" example:"a@b.com"`
	Password string `json:"password" binding:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"a@b.com"` // omitted in shared-secret mode
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	Email           string `json:"email"` // omitted in shared-secret mode
	CurrentPassword string `json:"currentPassword"`
	Password        string `json:"password"`
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Register godoc
// @Summary      User Registration
// @Description  Create a per-user credential. Unavailable in shared-secret mode.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register  body      RegisterRequest  true  "Registration Details"
// @Success      200       {object}  response.MessageResponse
// @Failure      400       {object}  response.ErrorResponse
// @Failure      500       {object}  response.ErrorResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	if h.authUC.SharedSecret() {
		h.fail(c, apperror.BadRequest("Registration is not available"))
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperror.BadRequest(validation.Message(err)))
		return
	}

	if err := h.authUC.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.MessageResponse{Success: true, Message: "User registered successfully"})
}

// Login godoc
// @Summary      User Login
// @Description  Check the credential and issue a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "Login Credentials"
// @Success      200    {object}  LoginResponse
// @Failure      400    {object}  response.ErrorResponse
// @Failure      401    {object}  response.ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperror.BadRequest("Invalid request body"))
		return
	}

	session, err := h.authUC.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Success: true, Token: session.Token, ExpiresAt: session.ExpiresAt})
}

// VerifyPassword godoc
// @Summary      Verify a password
// @Description  Same check as login without issuing a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      LoginRequest  true  "Credentials"
// @Success      200          {object}  SuccessResponse
// @Failure      401          {object}  response.ErrorResponse
// @Router       /verify-password [post]
func (h *AuthHandler) VerifyPassword(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperror.BadRequest("Invalid request body"))
		return
	}

	if err := h.authUC.VerifyPassword(c.Request.Context(), req.Email, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Verifies currentPassword and stores password in one transaction. Does not log in.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      ChangePasswordRequest  true  "Password change"
// @Success      200      {object}  response.MessageResponse
// @Failure      400      {object}  response.ErrorResponse
// @Failure      401      {object}  response.ErrorResponse
// @Failure      404      {object}  response.ErrorResponse
// @Router       /password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperror.BadRequest("Invalid request body"))
		return
	}

	if err := h.authUC.ChangePassword(c.Request.Context(), req.Email, req.CurrentPassword, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.MessageResponse{Success: true, Message: "Password updated successfully"})
}

// fail writes the auth error shape and records err for the error middleware's log.
func (h *AuthHandler) fail(c *gin.Context, err error) {
	code, message := response.Status(err)
	response.AuthError(c, code, message)
	c.Error(err)
}
