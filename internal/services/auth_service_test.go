package services_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"arenda/internal/customerrors"
	"arenda/internal/models"
	"arenda/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func newAuthService(repo *MockUserRepository) *services.AuthService {
	return services.NewAuthService(repo, testJWTSecret, time.Hour)
}

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	input := services.RegisterInput{Username: "ann", Email: "a@x.com", Password: "pw", Phone: "123"}

	mockRepo.On("GetByUsername", "ann").Return(nil, customerrors.ErrUserNotFound).Once()
	mockRepo.On("GetByEmail", "a@x.com").Return(nil, customerrors.ErrUserNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := authService.RegisterUser(input)
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)
	assert.Equal(t, "123", user.Phone)
	assert.NotEqual(t, "pw", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw")))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUserDuplicates(t *testing.T) {
	existing := &models.User{ID: 1, Username: "ann", Email: "a@x.com"}
	input := services.RegisterInput{Username: "ann", Email: "a@x.com", Password: "pw"}

	t.Run("username taken short-circuits the email check", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByUsername", "ann").Return(existing, nil).Once()

		_, err := newAuthService(mockRepo).RegisterUser(input)
		assert.ErrorIs(t, err, customerrors.ErrUsernameTaken)
		mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("email taken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByUsername", "ann").Return(nil, customerrors.ErrUserNotFound).Once()
		mockRepo.On("GetByEmail", "a@x.com").Return(existing, nil).Once()

		_, err := newAuthService(mockRepo).RegisterUser(input)
		assert.ErrorIs(t, err, customerrors.ErrEmailTaken)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("unique index wins a race", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByUsername", "ann").Return(nil, customerrors.ErrUserNotFound).Once()
		mockRepo.On("GetByEmail", "a@x.com").Return(nil, customerrors.ErrUserNotFound).Once()
		mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(customerrors.ErrDuplicateUser).Once()
		// Second lookup sees the concurrent winner.
		mockRepo.On("GetByUsername", "ann").Return(nil, customerrors.ErrUserNotFound).Once()
		mockRepo.On("GetByEmail", "a@x.com").Return(existing, nil).Once()

		_, err := newAuthService(mockRepo).RegisterUser(input)
		assert.ErrorIs(t, err, customerrors.ErrEmailTaken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("lookup failure is internal", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("GetByUsername", "ann").Return(nil, fmt.Errorf("database is locked")).Once()

		_, err := newAuthService(mockRepo).RegisterUser(input)
		assert.Error(t, err)
		assert.Equal(t, customerrors.Internal, customerrors.KindOf(err))
	})
}

func TestAuthService_RegisterUserValidation(t *testing.T) {
	testCases := []struct {
		name    string
		input   services.RegisterInput
		message string
	}{
		{"missing username", services.RegisterInput{Email: "a@x.com", Password: "pw"}, "username is required"},
		{"blank username", services.RegisterInput{Username: "   ", Email: "a@x.com", Password: "pw"}, "username is required"},
		{"bad email", services.RegisterInput{Username: "ann", Email: "not-an-email", Password: "pw"}, "email must be a valid email address"},
		{"missing password", services.RegisterInput{Username: "ann", Email: "a@x.com"}, "password is required"},
		{"long password", services.RegisterInput{Username: "ann", Email: "a@x.com", Password: strings.Repeat("p", 73)}, "password must be at most 72 characters"},
		{"long phone", services.RegisterInput{Username: "ann", Email: "a@x.com", Password: "pw", Phone: "123456789012345678901"}, "phone must be at most 20 characters"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			_, err := newAuthService(mockRepo).RegisterUser(tc.input)
			require.Error(t, err)
			assert.Equal(t, customerrors.Validation, customerrors.KindOf(err))
			assert.Contains(t, err.Error(), tc.message)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything)
		})
	}
}

func TestAuthService_RegisterUserMultiBytePasswordTooLong(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("GetByUsername", "ann").Return(nil, customerrors.ErrUserNotFound).Once()
	mockRepo.On("GetByEmail", "a@x.com").Return(nil, customerrors.ErrUserNotFound).Once()

	// 40 characters, 80 bytes.
	input := services.RegisterInput{Username: "ann", Email: "a@x.com", Password: strings.Repeat("п", 40)}
	_, err := newAuthService(mockRepo).RegisterUser(input)
	require.Error(t, err)
	assert.Equal(t, customerrors.Validation, customerrors.KindOf(err))
	assert.Contains(t, err.Error(), "password must be at most 72 bytes")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo)

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{ID: 7, Username: "testuser", Email: "test@example.com", PasswordHash: string(hashedPassword)}

	// Test successful login
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	token, loggedIn, err := authService.LoginUser(services.LoginInput{Username: "testuser", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, "testuser", claims["username"])

	// Test invalid credentials (wrong password)
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	_, _, err = authService.LoginUser(services.LoginInput{Username: "testuser", Password: "wrongpassword"})
	assert.ErrorIs(t, err, customerrors.ErrInvalidCredentials)

	// Test invalid credentials (user not found)
	mockRepo.On("GetByUsername", "nobody").Return(nil, customerrors.ErrUserNotFound).Once()
	_, _, err = authService.LoginUser(services.LoginInput{Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, customerrors.ErrInvalidCredentials)

	// Surrounding spaces are ignored, as on registration
	mockRepo.On("GetByUsername", "testuser").Return(user, nil).Once()
	_, loggedIn, err = authService.LoginUser(services.LoginInput{Username: "  testuser ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	// Missing fields never reach the repository
	_, _, err = authService.LoginUser(services.LoginInput{Username: "testuser"})
	assert.Equal(t, customerrors.Validation, customerrors.KindOf(err))

	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newAuthService(new(MockUserRepository))

	// Generate a valid token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  7,
		"username": "testuser",
		"exp":      jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	assert.NoError(t, err)
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, "testuser", claims["username"])

	// Test malformed token
	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	// Test wrong secret
	forged, _ := token.SignedString([]byte("other_secret"))
	_, err = authService.ValidateToken(forged)
	assert.Error(t, err)

	// Test expired token
	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  7,
		"username": "testuser",
		"exp":      jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}
