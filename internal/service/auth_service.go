package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"site-tracker-api/internal/config"
	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/util"
)

var errInvalidCredentials = response.NewAppError(response.ErrCodeUnauthorized, "Invalid phone number or password", "")

var (
	decoyHashOnce sync.Once
	decoyHash     string
)

// compareWithDecoy spends one bcrypt comparison so an unknown phone costs
// about as much as a wrong password.
func compareWithDecoy(password string) {
	decoyHashOnce.Do(func() {
		decoyHash, _ = util.HashPassword(uuid.NewString(), util.DefaultBcryptCost)
	})
	util.VerifyPassword(decoyHash, password)
}

// AuthService issues and checks access tokens
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	ValidateToken(ctx context.Context, tokenStr string) (uuid.UUID, error)
	// ResolveEmployee loads the token subject; inactive employees are refused
	ResolveEmployee(ctx context.Context, employeeID uuid.UUID) (*domain.Employee, error)
	ChangePassword(ctx context.Context, employeeID uuid.UUID, req *dto.ChangePasswordRequest) error
}

type authServiceImpl struct {
	employeeRepo repository.EmployeeRepository
	secret       []byte
	ttl          time.Duration
	logger       *zap.Logger

	now          func() time.Time
	unknownPhone func(password string)
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(employeeRepo repository.EmployeeRepository, cfg config.JWTConfig, logger *zap.Logger) AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authServiceImpl{
		employeeRepo: employeeRepo,
		secret:       []byte(cfg.Secret),
		ttl:          ttl,
		logger:       loggerOrNop(logger),
		now:          nowUTC,
		unknownPhone: compareWithDecoy,
	}
}

// Login checks the credential by its scheme. Legacy plaintext secrets are
// replaced with a bcrypt hash after the first successful login.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	employee, err := s.employeeRepo.FindByPhone(ctx, strings.TrimSpace(req.Phone))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.unknownPhone(req.Password)
			return nil, errInvalidCredentials
		}
		return nil, response.NewPersistenceError("Failed to load employee", err)
	}

	if !employee.Credential.Verify(req.Password) {
		s.logger.Info("Login refused", zap.String("employee_id", employee.ID.String()))
		return nil, errInvalidCredentials
	}
	if !employee.IsActive() {
		return nil, response.NewForbiddenError("Employee account is inactive", "")
	}

	if employee.Credential.NeedsRehash() {
		if cred, err := domain.NewBcryptCredential(req.Password); err == nil {
			if err := s.employeeRepo.UpdateCredential(ctx, employee.ID, cred); err != nil {
				s.logger.Warn("Failed to rehash legacy credential",
					zap.String("employee_id", employee.ID.String()),
					zap.Error(err))
			} else {
				s.logger.Info("Legacy credential rehashed", zap.String("employee_id", employee.ID.String()))
			}
		}
	}

	token, expiresAt, err := s.issue(employee)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to issue token", err.Error())
	}

	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Employee:  toEmployeeResponse(employee),
	}, nil
}

func (s *authServiceImpl) issue(employee *domain.Employee) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"employee_id": employee.ID.String(),
		"role":        string(employee.Role),
		"exp":         exp.Unix(),
		"iat":         now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ValidateToken verifies the signature and expiry and returns the employee id
func (s *authServiceImpl) ValidateToken(ctx context.Context, tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	raw, ok := claims["employee_id"].(string)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	return id, nil
}

func (s *authServiceImpl) ResolveEmployee(ctx context.Context, employeeID uuid.UUID) (*domain.Employee, error) {
	employee, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeUnauthorized, "Employee no longer exists", "")
		}
		return nil, response.NewPersistenceError("Failed to load employee", err)
	}
	if !employee.IsActive() {
		return nil, response.NewForbiddenError("Employee account is inactive", "")
	}
	return employee, nil
}

func (s *authServiceImpl) ChangePassword(ctx context.Context, employeeID uuid.UUID, req *dto.ChangePasswordRequest) error {
	employee, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return lookupError(err, "Employee")
	}
	if !employee.Credential.Verify(req.CurrentPassword) {
		return response.NewValidationError("Current password is incorrect", "")
	}

	cred, err := domain.NewBcryptCredential(req.NewPassword)
	if err != nil {
		return response.NewAppError(response.ErrCodeInternal, "Failed to secure password", err.Error())
	}
	if err := s.employeeRepo.UpdateCredential(ctx, employeeID, cred); err != nil {
		return response.NewPersistenceError("Failed to update password", err)
	}
	return nil
}
