package api

import (
	"fmt"
	"net/http"
	"time"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, userService service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	FullName             string      `json:"fullName" binding:"required"`
	Email                string      `json:"email" binding:"required,email"`
	Password             string      `json:"password" binding:"required"`
	PasswordConfirmation string      `json:"passwordConfirmation" binding:"required"`
	Role                 domain.Role `json:"role" binding:"required,oneof=coach athlete"`
	Coach                string      `json:"coach"` // Optional coach id for athletes
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID                string      `json:"_id"`
	UserID            string      `json:"id"` // same value as ID
	FullName          string      `json:"fullName"`
	Email             string      `json:"email"`
	Role              domain.Role `json:"role"`
	IsActive          bool        `json:"isActive"`
	CoachID           *string     `json:"coachId,omitempty"`
	LinkedAt          *time.Time  `json:"linkedAt,omitempty"`
	ProfilePictureURL string      `json:"profilePictureUrl,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type PasswordRecoveryRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new user (Coach or Athlete)
// @Description Creates an inactive account and emails an activation link.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} UserResponse "User created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Router /users/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	coachID, err := parseOptionalID(req.Coach)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid coach ID format")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		FullName:             req.FullName,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		Role:                 req.Role,
		CoachID:              coachID,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user, ""))
}

// Activate godoc
// @Summary Activate an account
// @Tags Auth
// @Produce json
// @Param token path string true "Activation token"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Invalid activation token"
// @Router /users/activate/{token} [get]
func (h *AuthHandler) Activate(c *gin.Context) {
	user, err := h.authService.Activate(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user, ""))
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Failure 403 {object} gin.H "Account not activated"
// @Router /users/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user, h.userService.ProfilePictureURL(c.Request.Context(), user)),
	})
}

// PasswordRecovery godoc
// @Summary Request a password reset email
// @Description Always answers 200 so that registered emails cannot be discovered.
// @Tags Auth
// @Accept json
// @Param body body PasswordRecoveryRequest true "Account email"
// @Success 200 {object} gin.H
// @Router /users/password-recovery [post]
func (h *AuthHandler) PasswordRecovery(c *gin.Context) {
	var req PasswordRecoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent"})
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags Auth
// @Accept json
// @Param body body ResetPasswordRequest true "Token and new password"
// @Success 201 {object} gin.H
// @Failure 400 {object} gin.H "Invalid token or weak password"
// @Router /users/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Password updated"})
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
// Crucially excludes PasswordHash and converts ObjectIDs to strings.
func MapUserToResponse(user *domain.User, pictureURL string) UserResponse {
	if user == nil {
		return UserResponse{}
	}

	resp := UserResponse{
		ID:                user.ID.Hex(),
		UserID:            user.ID.Hex(),
		FullName:          user.FullName,
		Email:             user.Email,
		Role:              user.Role,
		IsActive:          user.IsActive,
		LinkedAt:          user.LinkedAt,
		ProfilePictureURL: pictureURL,
		CreatedAt:         user.CreatedAt,
	}
	if user.CoachID != nil {
		coachIDHex := user.CoachID.Hex()
		resp.CoachID = &coachIDHex
	}
	return resp
}
