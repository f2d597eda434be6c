package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type stubIssuer struct {
	token string
	err   error
	got   string
}

func (s *stubIssuer) GenerateToken(userID string) (string, error) {
	s.got = userID
	return s.token, s.err
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	t.Run("Success: Should register a valid user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, &stubIssuer{})
		ctx := context.Background()

		input := RegisterInput{Email: " Test_Success@Kanso.app ", Password: "StrongPassword123!"}

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := service.Register(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, "test_success@kanso.app", user.Email)
		assert.NotEmpty(t, user.ID)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NoError(t, user.CheckPassword(input.Password))

		mockRepo.AssertExpectations(t)
	})

	t.Run("Fail: Should return error for invalid email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, &stubIssuer{})

		user, err := service.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "password123"})

		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		assert.Nil(t, user)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should return error for short password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, &stubIssuer{})

		user, err := service.Register(context.Background(), RegisterInput{Email: "valid@email.com", Password: "short"})

		assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
		assert.Nil(t, user)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Duplicate email is returned unwrapped", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, &stubIssuer{})
		ctx := context.Background()

		mockRepo.On("Create", ctx, mock.Anything).Return(domain.ErrEmailAlreadyExists)

		user, err := service.Register(ctx, RegisterInput{Email: "duplicate@email.com", Password: "StrongPassword123!"})

		assert.Equal(t, domain.ErrEmailAlreadyExists, err)
		assert.Nil(t, user)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Fail: Storage errors are wrapped", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, &stubIssuer{})
		dbErr := errors.New("connection reset")

		mockRepo.On("Create", mock.Anything, mock.Anything).Return(dbErr)

		_, err := service.Register(context.Background(), RegisterInput{Email: "x@kanso.app", Password: "StrongPassword123!"})

		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "auth service")
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	user, err := domain.NewUser("user-1", "login@kanso.app")
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("correct-horse"))

	t.Run("Success: Returns the issued token for the user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		issuer := &stubIssuer{token: "signed.jwt.token"}
		service := NewAuthService(mockRepo, issuer)

		mockRepo.On("GetByEmail", mock.Anything, "login@kanso.app").Return(user, nil)

		token, err := service.Login(context.Background(), LoginInput{Email: " LOGIN@kanso.app", Password: "correct-horse"})

		require.NoError(t, err)
		assert.Equal(t, "signed.jwt.token", token)
		assert.Equal(t, "user-1", issuer.got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Fail: Wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, &stubIssuer{})

		mockRepo.On("GetByEmail", mock.Anything, "login@kanso.app").Return(user, nil)

		_, err := service.Login(context.Background(), LoginInput{Email: "login@kanso.app", Password: "wrong-horse"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Fail: Unknown email looks like a wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, &stubIssuer{})

		mockRepo.On("GetByEmail", mock.Anything, "ghost@kanso.app").Return(nil, domain.ErrUserNotFound)

		_, err := service.Login(context.Background(), LoginInput{Email: "ghost@kanso.app", Password: "whatever1"})
		assert.Equal(t, domain.ErrInvalidCredentials, err)
	})

	t.Run("Fail: Signing errors propagate", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewAuthService(mockRepo, &stubIssuer{err: errors.New("no key")})

		mockRepo.On("GetByEmail", mock.Anything, "login@kanso.app").Return(user, nil)

		token, err := service.Login(context.Background(), LoginInput{Email: "login@kanso.app", Password: "correct-horse"})
		assert.Error(t, err)
		assert.Empty(t, token)
	})
}
