package services

import (
	"GoodDental/access"
	"GoodDental/models"
	"GoodDental/store"
	"GoodDental/utils"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveEmployee   = errors.New("employee is not active")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnknownEmployee    = errors.New("employee not found")
)

// Tokens is the pair issued on login.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ResetMailer sends password reset codes. *utils.Mailer implements it.
type ResetMailer interface {
	SendResetCode(email, code string) error
}

// AuthService manages employee accounts and sessions.
type AuthService struct {
	employees *store.Store[models.Employee]
	remote    EmployeeRemote
	tokens    *utils.TokenMaker
	codes     *utils.ResetCodes
	mailer    ResetMailer
	logger    zerolog.Logger
}

// NewAuthService builds the service. mailer may be nil, in which case reset
// codes are only logged.
func NewAuthService(employees *store.Store[models.Employee], remote EmployeeRemote, tokens *utils.TokenMaker, codes *utils.ResetCodes, mailer ResetMailer, logger zerolog.Logger) *AuthService {
	return &AuthService{
		employees: employees,
		remote:    remote,
		tokens:    tokens,
		codes:     codes,
		mailer:    mailer,
		logger:    logger.With().Str("component", "auth").Logger(),
	}
}

// CreateEmployee stores a new employee with a hashed password.
func (s *AuthService) CreateEmployee(ctx context.Context, employee models.Employee, password string) (models.Employee, error) {
	employee.Email = normalizeEmail(employee.Email)
	if employee.Email != "" {
		existing, err := s.remote.ListWhere(ctx, "email", employee.Email)
		if err != nil {
			return models.Employee{}, err
		}
		if len(existing) > 0 {
			return models.Employee{}, ErrEmailTaken
		}
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to hash password: %w", err)
	}
	employee.PasswordHash = hash

	created, err := s.employees.Create(ctx, employee)
	if err != nil {
		return models.Employee{}, err
	}
	return created, nil
}

// UpdateEmployee replaces the editable fields of an employee. The email is
// normalized the way CreateEmployee does it and must not belong to another
// employee. The id, timestamps, active flag and password hash are kept.
func (s *AuthService) UpdateEmployee(ctx context.Context, id string, employee models.Employee) (models.Employee, error) {
	existing, ok := s.employees.Get(id)
	if !ok {
		return models.Employee{}, store.ErrNotLoaded
	}
	employee.Base = existing.Base
	employee.PasswordHash = existing.PasswordHash

	employee.Email = normalizeEmail(employee.Email)
	if employee.Email != "" {
		found, err := s.remote.ListWhere(ctx, "email", employee.Email)
		if err != nil {
			return models.Employee{}, err
		}
		if lo.ContainsBy(found, func(e models.Employee) bool { return e.ID != id }) {
			return models.Employee{}, ErrEmailTaken
		}
	}

	return s.employees.Update(ctx, employee)
}

// Login checks the credentials of an active employee and issues tokens.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.Employee, Tokens, error) {
	// the hash is never cached, so this reads the database
	found, err := s.remote.ListWhere(ctx, "email", normalizeEmail(email))
	if err != nil {
		return models.Employee{}, Tokens{}, err
	}
	employee, ok := lo.Find(found, func(e models.Employee) bool {
		return e.PasswordHash != "" && utils.CheckPassword(e.PasswordHash, password)
	})
	if !ok {
		return models.Employee{}, Tokens{}, ErrInvalidCredentials
	}
	if !employee.IsActive {
		return models.Employee{}, Tokens{}, ErrInactiveEmployee
	}

	accessToken, refreshToken, err := s.tokens.GenerateTokens(employee.ID, string(employee.Role))
	if err != nil {
		return models.Employee{}, Tokens{}, err
	}
	s.logger.Info().Str("employee_id", employee.ID).Msg("employee logged in")
	return employee, Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh issues a new access token for a valid refresh token, as long as
// the employee is still active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken, utils.RefreshToken)
	if err != nil {
		return "", err
	}
	id, err := s.Identify(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	if !id.Active {
		return "", ErrInactiveEmployee
	}
	return s.tokens.GenerateAccessToken(id.ID, string(id.Role))
}

// Authenticate resolves the identity behind an access token.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (access.Identity, error) {
	claims, err := s.tokens.ValidateToken(accessToken, utils.AccessToken)
	if err != nil {
		return access.Identity{}, err
	}
	return s.Identify(ctx, claims.UserID)
}

// Identify returns the current role and active flag of an employee. The role
// in a token is not trusted, since it may have changed since issue.
func (s *AuthService) Identify(ctx context.Context, employeeID string) (access.Identity, error) {
	employee, ok := s.employees.Get(employeeID)
	if !ok {
		fetched, err := s.remote.GetByID(ctx, employeeID)
		if err != nil {
			return access.Identity{}, err
		}
		if fetched == nil {
			return access.Identity{}, ErrUnknownEmployee
		}
		employee = *fetched
	}
	return access.Identity{ID: employee.ID, Role: employee.Role, Active: employee.IsActive}, nil
}

// ChangePassword replaces the password of an employee.
func (s *AuthService) ChangePassword(ctx context.Context, employeeID, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.remote.UpdateColumns(ctx, employeeID, map[string]interface{}{"password_hash": hash})
}

// RequestPasswordReset stores a reset code for an active employee and mails
// it. Unknown emails succeed silently so callers can't enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	found, err := s.remote.ListWhere(ctx, "email", email)
	if err != nil {
		return err
	}
	if _, ok := lo.Find(found, func(e models.Employee) bool { return e.IsActive }); !ok {
		return nil
	}

	code, err := utils.GenerateResetCode()
	if err != nil {
		return err
	}
	if err := s.codes.Set(ctx, email, code); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}
	if s.mailer == nil {
		s.logger.Warn().Str("email", email).Msg("mail is not configured, reset code not sent")
		return nil
	}
	if err := s.mailer.SendResetCode(email, code); err != nil {
		return fmt.Errorf("failed to send reset code: %w", err)
	}
	return nil
}

// ResetPassword sets a new password when code matches the pending one.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, password string) error {
	email = normalizeEmail(email)
	pending, err := s.codes.Get(ctx, email)
	if err != nil {
		return err
	}
	if pending == nil || *pending != code {
		return utils.ErrInvalidResetCode
	}

	found, err := s.remote.ListWhere(ctx, "email", email)
	if err != nil {
		return err
	}
	employee, ok := lo.Find(found, func(e models.Employee) bool { return e.IsActive })
	if !ok {
		return utils.ErrInvalidResetCode
	}
	if err := s.ChangePassword(ctx, employee.ID, password); err != nil {
		return err
	}
	if err := s.codes.Delete(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("failed to delete used reset code")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
