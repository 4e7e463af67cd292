package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"arenda/internal/customerrors"
	"arenda/internal/models"
	"arenda/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Username string `form:"username" json:"username" validate:"required,max=80"`
	Email    string `form:"email" json:"email" validate:"required,email,max=120"`
	Password string `form:"password" json:"password" validate:"required,max=72"`
	Phone    string `form:"phone" json:"phone" validate:"omitempty,max=20"`
}

// LoginInput is the login form.
type LoginInput struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which the session token is valid
	validate   *validator.Validate
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenDuration,
		validate:   newValidator(),
	}
}

// TokenDuration is how long an issued session token stays valid.
func (s *AuthService) TokenDuration() time.Duration {
	return s.tokenDurat
}

// RegisterUser validates the form, hashes the password and saves the user.
// A taken username is reported before a taken email.
func (s *AuthService) RegisterUser(in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if err := s.ensureAvailable(in.Username, in.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt limits input to 72 bytes; multi-byte passwords can pass the rune count.
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, customerrors.Validationf("password must be at most 72 bytes")
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Phone:        in.Phone,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, customerrors.ErrDuplicateUser) {
			// A concurrent registration won the unique index; report which field.
			if availErr := s.ensureAvailable(in.Username, in.Email); availErr != nil {
				return nil, availErr
			}
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

func (s *AuthService) ensureAvailable(username, email string) error {
	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return customerrors.ErrUsernameTaken
	} else if !errors.Is(err, customerrors.ErrUserNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return customerrors.ErrEmailTaken
	} else if !errors.Is(err, customerrors.ErrUserNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}
	return nil
}

// LoginUser authenticates a user and returns a signed session token.
func (s *AuthService) LoginUser(in LoginInput) (string, *models.User, error) {
	in.Username = strings.TrimSpace(in.Username)

	if err := s.validate.Struct(in); err != nil {
		return "", nil, validationError(err)
	}

	user, err := s.userRepo.GetByUsername(in.Username)
	if err != nil {
		if errors.Is(err, customerrors.ErrUserNotFound) {
			return "", nil, customerrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load user %s: %w", in.Username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return "", nil, customerrors.ErrInvalidCredentials
	}

	tokenString, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return tokenString, user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a session token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
