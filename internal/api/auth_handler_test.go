package api

import (
	"context"
	"net/http"
	"testing"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t, nil)
	ctx := context.Background()

	register := RegisterRequest{
		FullName:             "Jane Coach",
		Email:                "Jane@Example.com",
		Password:             "Secret1!x",
		PasswordConfirmation: "Secret1!x",
		Role:                 domain.RoleCoach,
	}
	rr := ts.do(t, http.MethodPost, "/api/v1/users/register", "", register)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[UserResponse](t, rr)
	assert.Equal(t, "jane@example.com", created.Email)
	assert.False(t, created.IsActive)
	assert.NotContains(t, rr.Body.String(), "password")

	// Duplicate email
	rr = ts.do(t, http.MethodPost, "/api/v1/users/register", "", register)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Login before activation is refused.
	login := LoginRequest{Email: "jane@example.com", Password: "Secret1!x"}
	rr = ts.do(t, http.MethodPost, "/api/v1/users/login", "", login)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	stored, err := ts.users.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, stored.ActivationToken)
	msg, ok := ts.mail.Last()
	require.True(t, ok)
	assert.Contains(t, msg.Body, "http://app.test/activate-account/"+stored.ActivationToken)

	rr = ts.do(t, http.MethodGet, "/api/v1/users/activate/"+stored.ActivationToken, "", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, decode[UserResponse](t, rr).IsActive)

	rr = ts.do(t, http.MethodGet, "/api/v1/users/activate/"+stored.ActivationToken, "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/v1/users/login", "", login)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	loggedIn := decode[LoginResponse](t, rr)
	claims, err := service.ParseJWT(testJWTSecret, loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, domain.RoleCoach, claims.Role)

	// The token opens protected routes.
	rr = ts.do(t, http.MethodGet, "/api/v1/users/profile", loggedIn.Token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/v1/users/login", "", LoginRequest{Email: "jane@example.com", Password: "Wrong1!xx"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegister_Validation(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		req  RegisterRequest
		code int
	}{
		{
			name: "unknown role",
			req:  RegisterRequest{FullName: "A", Email: "a@example.com", Password: "Secret1!x", PasswordConfirmation: "Secret1!x", Role: "admin"},
			code: http.StatusBadRequest,
		},
		{
			name: "passwords differ",
			req:  RegisterRequest{FullName: "A", Email: "a@example.com", Password: "Secret1!x", PasswordConfirmation: "Secret1!y", Role: domain.RoleAthlete},
			code: http.StatusBadRequest,
		},
		{
			name: "weak password",
			req:  RegisterRequest{FullName: "A", Email: "a@example.com", Password: "secret", PasswordConfirmation: "secret", Role: domain.RoleAthlete},
			code: http.StatusBadRequest,
		},
		{
			name: "bad coach id",
			req:  RegisterRequest{FullName: "A", Email: "a@example.com", Password: "Secret1!x", PasswordConfirmation: "Secret1!x", Role: domain.RoleAthlete, Coach: "nope"},
			code: http.StatusBadRequest,
		},
		{
			name: "invalid email",
			req:  RegisterRequest{FullName: "A", Email: "not-an-email", Password: "Secret1!x", PasswordConfirmation: "Secret1!x", Role: domain.RoleAthlete},
			code: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, http.MethodPost, "/api/v1/users/register", "", tt.req)
			assert.Equal(t, tt.code, rr.Code, rr.Body.String())
		})
	}
}

func TestPasswordReset(t *testing.T) {
	ts := newTestServer(t, nil)
	ctx := context.Background()
	user, _ := ts.addUser(t, "ann", domain.RoleAthlete, nil)

	// Unknown emails get the same answer.
	rr := ts.do(t, http.MethodPost, "/api/v1/users/password-recovery", "", PasswordRecoveryRequest{Email: "ghost@example.com"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, ts.mail.Sent)

	rr = ts.do(t, http.MethodPost, "/api/v1/users/password-recovery", "", PasswordRecoveryRequest{Email: user.Email})
	require.Equal(t, http.StatusOK, rr.Code)
	stored, err := ts.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ResetToken)

	rr = ts.do(t, http.MethodPost, "/api/v1/users/reset-password", "", ResetPasswordRequest{Token: stored.ResetToken, NewPassword: "short"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/v1/users/reset-password", "", ResetPasswordRequest{Token: stored.ResetToken, NewPassword: "Brand1!new"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ts.do(t, http.MethodPost, "/api/v1/users/login", "", LoginRequest{Email: user.Email, Password: "Brand1!new"})
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}
