package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/response"
)

type mockValidator struct {
	ValidateTokenFunc func(ctx context.Context, tokenStr string) (uuid.UUID, error)
}

func (m *mockValidator) ValidateToken(ctx context.Context, tokenStr string) (uuid.UUID, error) {
	return m.ValidateTokenFunc(ctx, tokenStr)
}

type mockResolver struct {
	ResolveEmployeeFunc func(ctx context.Context, employeeID uuid.UUID) (*domain.Employee, error)
}

func (m *mockResolver) ResolveEmployee(ctx context.Context, employeeID uuid.UUID) (*domain.Employee, error) {
	return m.ResolveEmployeeFunc(ctx, employeeID)
}

func newAuthRouter(validator TokenValidator, resolver EmployeeResolver, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{AuthWithValidator(validator), ResolveActor(resolver)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID.String(), "role": string(actor.Role)})
	})
	r.GET("/me", chain...)
	return r
}

func TestAuthChain(t *testing.T) {
	employeeID := uuid.New()
	validator := &mockValidator{ValidateTokenFunc: func(ctx context.Context, tokenStr string) (uuid.UUID, error) {
		if tokenStr == "good" {
			return employeeID, nil
		}
		return uuid.Nil, errors.New("bad token")
	}}
	resolver := &mockResolver{ResolveEmployeeFunc: func(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
		return &domain.Employee{BaseModel: domain.BaseModel{ID: id}, Role: domain.RoleWorker, Status: domain.EmployeeActive}, nil
	}}
	router := newAuthRouter(validator, resolver)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), employeeID.String())
				assert.Contains(t, w.Body.String(), `"role":"worker"`)
			}
		})
	}
}

func TestResolveActor_InactiveEmployee(t *testing.T) {
	validator := &mockValidator{ValidateTokenFunc: func(ctx context.Context, tokenStr string) (uuid.UUID, error) {
		return uuid.New(), nil
	}}
	inactive := &mockResolver{ResolveEmployeeFunc: func(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
		return nil, response.NewForbiddenError("Employee is inactive", "")
	}}
	missing := &mockResolver{ResolveEmployeeFunc: func(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
		return nil, response.NewNotFoundError("Employee not found", "")
	}}

	for resolver, want := range map[EmployeeResolver]int{inactive: http.StatusForbidden, missing: http.StatusUnauthorized} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer any")
		w := httptest.NewRecorder()
		newAuthRouter(validator, resolver).ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

func TestAdminOnly(t *testing.T) {
	adminID, supervisorID := uuid.New(), uuid.New()
	validator := &mockValidator{ValidateTokenFunc: func(ctx context.Context, tokenStr string) (uuid.UUID, error) {
		if tokenStr == "admin" {
			return adminID, nil
		}
		return supervisorID, nil
	}}
	resolver := &mockResolver{ResolveEmployeeFunc: func(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
		role := domain.RoleSupervisor
		if id == adminID {
			role = domain.RoleAdmin
		}
		return &domain.Employee{BaseModel: domain.BaseModel{ID: id}, Role: role, Status: domain.EmployeeActive}, nil
	}}
	router := newAuthRouter(validator, resolver, AdminOnly())

	for token, want := range map[string]int{"admin": http.StatusOK, "supervisor": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, token)
	}
}

func TestRecoveryAndLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(zap.NewNop()), Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("formwork collapsed") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), response.ErrCodeInternal)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
