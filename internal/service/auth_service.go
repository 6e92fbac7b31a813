package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/mailer"
	"alcyxob/coaching-api/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists      = errors.New("user with this email already exists")
	ErrAuthenticationFailed   = errors.New("authentication failed: invalid email or password")
	ErrAccountInactive        = errors.New("account is not activated yet")
	ErrHashingFailed          = errors.New("failed to hash password")
	ErrTokenGeneration        = errors.New("failed to generate authentication token")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrInvalidActivationToken = errors.New("invalid activation token")
	ErrInvalidResetToken      = errors.New("invalid or expired password reset token")
	ErrWeakPassword           = errors.New("password must be at least 8 characters and contain an uppercase letter, a number and one of !@#$%^&*")
	ErrPasswordMismatch       = errors.New("passwords do not match")
	ErrInvalidRole            = errors.New("role must be coach or athlete")
)

const (
	resetTokenTTL     = time.Hour
	minPasswordLength = 8
	passwordSymbols   = "!@#$%^&*"
	tokenIssuer       = "coaching-api"
)

type RegisterInput struct {
	FullName             string
	Email                string
	Password             string
	PasswordConfirmation string
	Role                 domain.Role
	// CoachID optionally links a new athlete to an existing coach.
	CoachID *primitive.ObjectID
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Activate(ctx context.Context, token string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	mail          mailer.Mailer
	jwtSecret     string
	jwtExpiration time.Duration
	frontendURL   string
	bcryptCost    int
	now           func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo repository.UserRepository,
	mail mailer.Mailer,
	jwtSecret string,
	jwtExpiration time.Duration,
	frontendURL string,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		mail:          mail,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		frontendURL:   strings.TrimRight(frontendURL, "/"),
		bcryptCost:    bcrypt.DefaultCost,
		now:           time.Now,
	}
}

// ValidatePassword enforces the password policy.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	var upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	if !upper || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an inactive account and mails its activation link.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = normalizeEmail(input.Email)
	if input.FullName == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: full name, email and password are required", ErrInvalidInput)
	}
	if input.Role != domain.RoleCoach && input.Role != domain.RoleAthlete {
		return nil, ErrInvalidRole
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if input.Password != input.PasswordConfirmation {
		return nil, ErrPasswordMismatch
	}

	_, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user := &domain.User{
		FullName:        input.FullName,
		Email:           input.Email,
		Role:            input.Role,
		ActivationToken: uuid.NewString(),
	}

	if input.CoachID != nil && input.Role == domain.RoleAthlete {
		coach, err := s.userRepo.GetByID(ctx, *input.CoachID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if !coach.IsCoach() {
			return nil, ErrNotCoach
		}
		now := s.now().UTC()
		user.CoachID = &coach.ID
		user.LinkedAt = &now
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, ErrHashingFailed
	}
	user.PasswordHash = string(hashedPassword)

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// Lost a race against a concurrent registration of the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID

	link := fmt.Sprintf("%s/activate-account/%s", s.frontendURL, url.PathEscape(user.ActivationToken))
	if err := s.mail.Send(ctx, mailer.ActivationMessage(user.Email, user.FullName, link)); err != nil {
		// The account exists; activation can be resent through password recovery flows later.
		log.WithError(err).Errorf("failed to send activation email to %s", user.Email)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Activate(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.userRepo.GetByActivationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidActivationToken
		}
		return nil, err
	}
	if err := s.userRepo.Activate(ctx, user.ID); err != nil {
		return nil, err
	}
	user.IsActive = true
	user.ActivationToken = ""
	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		err = fmt.Errorf("%w: email and password cannot be empty", ErrInvalidInput)
		return
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
		}
		user = nil
		return
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}
	if !user.IsActive {
		return "", nil, ErrAccountInactive
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// RequestPasswordReset mails a reset link. Unknown emails are not reported
// so the endpoint cannot be used to enumerate accounts.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Debugf("password recovery requested for unknown email")
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := s.userRepo.SetResetToken(ctx, user.ID, token, s.now().Add(resetTokenTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(token))
	if err := s.mail.Send(ctx, mailer.PasswordResetMessage(user.Email, user.FullName, link)); err != nil {
		// Same answer as for an unknown email.
		log.WithError(err).Errorf("failed to send password reset email to %s", user.Email)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if user.ResetTokenExpiresAt == nil || s.now().After(*user.ResetTokenExpiresAt) {
		return ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return ErrHashingFailed
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword))
}

// --- JWT Helpers ---

// Claims defines the structure of the JWT payload.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseJWT validates tokenString against secret and returns its claims.
func ParseJWT(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
