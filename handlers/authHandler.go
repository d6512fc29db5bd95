package handlers

import (
	"GoodDental/access"
	"GoodDental/middlewares"
	"GoodDental/models"
	"GoodDental/services"
	"GoodDental/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginResponse struct {
	Employee     models.Employee `json:"employee"`
	Menu         []access.Route  `json:"menu"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

// Login authenticates an employee, sets the auth cookies and returns the
// tokens together with the employee's menu.
func (h *AuthHandler) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&credentials); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	if err := utils.ValidateLogin(credentials.Email, credentials.Password); err != nil {
		middlewares.RespondError(c, "Invalid credentials", err)
		return
	}

	employee, tokens, err := h.service.Login(c.Request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		middlewares.RespondError(c, "Failed to log in", err)
		return
	}

	utils.SetAuthCookies(c, tokens.AccessToken, tokens.RefreshToken)
	middlewares.RespondJSON(c, loginResponse{
		Employee:     employee,
		Menu:         access.MenuFor(access.Identity{ID: employee.ID, Role: employee.Role, Active: employee.IsActive}),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, http.StatusOK)
}

// RefreshToken issues a new access token from the refresh token in the body
// or the refresh cookie.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&body)
	token := body.RefreshToken
	if token == "" {
		token, _ = c.Cookie(utils.RefreshTokenCookie)
	}
	if token == "" {
		middlewares.HttpError(c, "refresh token is required", http.StatusBadRequest, nil)
		return
	}

	accessToken, err := h.service.Refresh(c.Request.Context(), token)
	if err != nil {
		middlewares.HttpError(c, "Invalid refresh token", http.StatusUnauthorized, err)
		return
	}
	c.SetCookie(utils.AccessTokenCookie, accessToken, int(utils.AccessTokenExpiry.Seconds()), "/", "", gin.Mode() != gin.DebugMode, true)
	middlewares.RespondJSON(c, gin.H{"accessToken": accessToken}, http.StatusOK)
}

// Logoff logs the user out by clearing cookies
func (h *AuthHandler) Logoff(c *gin.Context) {
	utils.ClearAuthCookies(c)
	c.Status(http.StatusOK)
}

// Me returns the caller's identity and menu.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, err := middlewares.IdentityFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Not authenticated", http.StatusUnauthorized, err)
		return
	}
	middlewares.RespondJSON(c, gin.H{
		"identity": identity,
		"menu":     access.MenuFor(identity),
	}, http.StatusOK)
}

// SendResetCode mails a password reset code. The response does not reveal
// whether the email is registered.
func (h *AuthHandler) SendResetCode(c *gin.Context) {
	var data struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&data); err != nil || data.Email == "" {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), data.Email); err != nil {
		middlewares.RespondError(c, "Failed to send reset code", err)
		return
	}
	c.Status(http.StatusAccepted)
}

// ResetPassword sets a new password using a mailed reset code.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var data struct {
		Email       string `json:"email"`
		ResetCode   string `json:"resetCode"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&data); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	if err := utils.ValidatePasswordReset(data.Email, data.ResetCode, data.NewPassword); err != nil {
		middlewares.RespondError(c, "Invalid password reset", err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), data.Email, data.ResetCode, data.NewPassword); err != nil {
		middlewares.RespondError(c, "Failed to reset password", err)
		return
	}
	c.Status(http.StatusOK)
}

// ChangePassword changes the caller's own password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	identity, err := middlewares.IdentityFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Not authenticated", http.StatusUnauthorized, err)
		return
	}
	h.setPassword(c, identity.ID)
}

// SetEmployeePassword lets an admin set the password of any employee.
func (h *AuthHandler) SetEmployeePassword(c *gin.Context) {
	h.setPassword(c, c.Param("id"))
}

func (h *AuthHandler) setPassword(c *gin.Context, employeeID string) {
	var data struct {
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&data); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	if err := utils.ValidatePassword(data.NewPassword); err != nil {
		middlewares.RespondError(c, "Invalid password", err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), employeeID, data.NewPassword); err != nil {
		middlewares.RespondError(c, "Failed to change password", err)
		return
	}
	c.Status(http.StatusOK)
}

type createEmployeeRequest struct {
	models.Employee
	Password string `json:"password"`
}

// CreateEmployee registers a new employee with an initial password.
func (h *AuthHandler) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	req.Employee.Base = models.Base{}
	if err := utils.ValidateEmployee(req.Employee); err != nil {
		middlewares.RespondError(c, "Invalid employee", err)
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		middlewares.RespondError(c, "Invalid password", err)
		return
	}

	created, err := h.service.CreateEmployee(c.Request.Context(), req.Employee, req.Password)
	if err != nil {
		middlewares.RespondError(c, "Failed to create employee", err)
		return
	}
	middlewares.RespondJSON(c, created, http.StatusCreated)
}

// UpdateEmployee edits an employee's profile and role. Passwords are changed
// through SetEmployeePassword only.
func (h *AuthHandler) UpdateEmployee(c *gin.Context) {
	var employee models.Employee
	if err := c.ShouldBindJSON(&employee); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	if err := utils.ValidateEmployee(employee); err != nil {
		middlewares.RespondError(c, "Invalid employee", err)
		return
	}

	updated, err := h.service.UpdateEmployee(c.Request.Context(), c.Param("id"), employee)
	if err != nil {
		middlewares.RespondError(c, "Failed to update employee", err)
		return
	}
	middlewares.RespondJSON(c, updated, http.StatusOK)
}
