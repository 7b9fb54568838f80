package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"coursehub/internal/auth"
	apperrors "coursehub/internal/errors"
	"coursehub/internal/model"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, role model.Role, account *model.Account) error {
	args := m.Called(ctx, role, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByUsername(ctx context.Context, role model.Role, username string) (*model.Account, error) {
	args := m.Called(ctx, role, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, role model.Role, id uint) (*model.Account, error) {
	args := m.Called(ctx, role, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

// MockSessionManager is a mock implementation of SessionManagerInterface.
type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) Rotate(ctx context.Context, previousToken string, payload auth.Payload) (*auth.Session, error) {
	args := m.Called(ctx, previousToken, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockSessionManager) Destroy(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockHasher is a mock implementation of auth.Hasher.
type MockHasher struct {
	mock.Mock
}

func (m *MockHasher) Hash(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Verify(plaintext, hashed string) (bool, error) {
	args := m.Called(plaintext, hashed)
	return args.Bool(0), args.Error(1)
}

func testHasher() auth.Hasher {
	return auth.NewBcryptHasher(bcrypt.MinCost)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hashed, err := testHasher().Hash(password)
	require.NoError(t, err)
	return hashed
}

func TestAuthService_Signup(t *testing.T) {
	tests := []struct {
		name          string
		role          model.Role
		setupMock     func(*MockAccountRepository)
		expectedPath  string
		expectedError error
	}{
		{
			name: "user signup redirects to login",
			role: model.RoleUser,
			setupMock: func(m *MockAccountRepository) {
				m.On("Create", mock.Anything, model.RoleUser, mock.AnythingOfType("*model.Account")).Return(nil)
			},
			expectedPath: "/login",
		},
		{
			name: "admin signup redirects to admin login",
			role: model.RoleAdmin,
			setupMock: func(m *MockAccountRepository) {
				m.On("Create", mock.Anything, model.RoleAdmin, mock.AnythingOfType("*model.Account")).Return(nil)
			},
			expectedPath: "/adminlogin",
		},
		{
			name: "username already taken",
			role: model.RoleUser,
			setupMock: func(m *MockAccountRepository) {
				m.On("Create", mock.Anything, model.RoleUser, mock.Anything).Return(apperrors.ErrDuplicateAccount)
			},
			expectedError: apperrors.ErrDuplicateAccount,
		},
		{
			name: "store failure",
			role: model.RoleUser,
			setupMock: func(m *MockAccountRepository) {
				m.On("Create", mock.Anything, model.RoleUser, mock.Anything).Return(errors.New("connection refused"))
			},
			expectedError: apperrors.ErrStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockAccountRepository)
			mockSessions := new(MockSessionManager)
			tt.setupMock(mockRepo)

			svc := NewAuthService(mockRepo, testHasher(), mockSessions, nil, 0)
			path, err := svc.Signup(context.Background(), tt.role, "alice", "s3cret", "alice@example.com")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, path)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedPath, path)
			}

			mockRepo.AssertExpectations(t)
			mockSessions.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_SignupStoresHashNotPlaintext(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	var created *model.Account
	mockRepo.On("Create", mock.Anything, model.RoleUser, mock.AnythingOfType("*model.Account")).
		Run(func(args mock.Arguments) { created = args.Get(2).(*model.Account) }).
		Return(nil)

	svc := NewAuthService(mockRepo, testHasher(), new(MockSessionManager), nil, 0)
	_, err := svc.Signup(context.Background(), model.RoleUser, "alice", "s3cret", "alice@example.com")
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.NotEqual(t, "s3cret", created.PasswordHash)
	ok, err := testHasher().Verify("s3cret", created.PasswordHash)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthService_SignupHashingFailureSkipsInsert(t *testing.T) {
	mockRepo := new(MockAccountRepository)
	mockHasher := new(MockHasher)
	mockHasher.On("Hash", "s3cret").Return("", apperrors.ErrHashing)

	svc := NewAuthService(mockRepo, mockHasher, new(MockSessionManager), nil, 0)
	_, err := svc.Signup(context.Background(), model.RoleAdmin, "alice", "s3cret", "")

	assert.ErrorIs(t, err, apperrors.ErrHashing)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	hashed := mustHash(t, "s3cret")

	tests := []struct {
		name          string
		role          model.Role
		password      string
		setupMock     func(*MockAccountRepository, *MockSessionManager)
		expectedPath  string
		expectedError error
	}{
		{
			name:     "successful admin login",
			role:     model.RoleAdmin,
			password: "s3cret",
			setupMock: func(mRepo *MockAccountRepository, mSess *MockSessionManager) {
				mRepo.On("FindByUsername", mock.Anything, model.RoleAdmin, "alice").
					Return(&model.Account{ID: 7, Username: "alice", PasswordHash: hashed}, nil)
				mSess.On("Rotate", mock.Anything, "previous", auth.Payload{Role: model.RoleAdmin, AccountID: 7, Username: "alice"}).
					Return(&auth.Session{Token: "rotated"}, nil)
			},
			expectedPath: "/adminhome",
		},
		{
			name:     "wrong password",
			role:     model.RoleUser,
			password: "wrong",
			setupMock: func(mRepo *MockAccountRepository, mSess *MockSessionManager) {
				mRepo.On("FindByUsername", mock.Anything, model.RoleUser, "alice").
					Return(&model.Account{ID: 1, Username: "alice", PasswordHash: hashed}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unknown username",
			role:     model.RoleUser,
			password: "s3cret",
			setupMock: func(mRepo *MockAccountRepository, mSess *MockSessionManager) {
				mRepo.On("FindByUsername", mock.Anything, model.RoleUser, "alice").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "store failure on lookup",
			role:     model.RoleUser,
			password: "s3cret",
			setupMock: func(mRepo *MockAccountRepository, mSess *MockSessionManager) {
				mRepo.On("FindByUsername", mock.Anything, model.RoleUser, "alice").Return(nil, errors.New("timeout"))
			},
			expectedError: apperrors.ErrStore,
		},
		{
			name:     "malformed stored hash",
			role:     model.RoleUser,
			password: "s3cret",
			setupMock: func(mRepo *MockAccountRepository, mSess *MockSessionManager) {
				mRepo.On("FindByUsername", mock.Anything, model.RoleUser, "alice").
					Return(&model.Account{ID: 1, Username: "alice", PasswordHash: "not-a-hash"}, nil)
			},
			expectedError: apperrors.ErrHashing,
		},
		{
			name:     "session write failure",
			role:     model.RoleUser,
			password: "s3cret",
			setupMock: func(mRepo *MockAccountRepository, mSess *MockSessionManager) {
				mRepo.On("FindByUsername", mock.Anything, model.RoleUser, "alice").
					Return(&model.Account{ID: 1, Username: "alice", PasswordHash: hashed}, nil)
				mSess.On("Rotate", mock.Anything, "previous", mock.Anything).Return(nil, errors.New("redis down"))
			},
			expectedError: apperrors.ErrStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockAccountRepository)
			mockSessions := new(MockSessionManager)
			tt.setupMock(mockRepo, mockSessions)

			svc := NewAuthService(mockRepo, testHasher(), mockSessions, nil, 0)
			sess, path, err := svc.Login(context.Background(), tt.role, "previous", "alice", tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, sess)
				assert.Empty(t, path)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedPath, path)
				require.NotNil(t, sess)
				assert.Equal(t, "rotated", sess.Token)
			}

			mockRepo.AssertExpectations(t)
			mockSessions.AssertExpectations(t)
			if errors.Is(tt.expectedError, apperrors.ErrInvalidCredentials) {
				mockSessions.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAuthService_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	hashed := mustHash(t, "s3cret")
	mockRepo := new(MockAccountRepository)
	mockRepo.On("FindByUsername", mock.Anything, model.RoleUser, "alice").
		Return(&model.Account{ID: 1, Username: "alice", PasswordHash: hashed}, nil)
	mockRepo.On("FindByUsername", mock.Anything, model.RoleUser, "ghost").Return(nil, gorm.ErrRecordNotFound)

	svc := NewAuthService(mockRepo, testHasher(), new(MockSessionManager), nil, 0)
	_, _, wrongPassword := svc.Login(context.Background(), model.RoleUser, "a", "alice", "nope")
	_, _, unknownUser := svc.Login(context.Background(), model.RoleUser, "b", "ghost", "nope")

	assert.Equal(t, wrongPassword, unknownUser)
	assert.Equal(t, apperrors.MessageInvalidCredentials, apperrors.MapErrorToHTTP(unknownUser).Message)
}

func TestAuthService_SignupThenLoginBindsRoleMarker(t *testing.T) {
	accounts := map[string]*model.Account{}
	mockRepo := new(MockAccountRepository)
	mockRepo.On("Create", mock.Anything, model.RoleAdmin, mock.AnythingOfType("*model.Account")).
		Run(func(args mock.Arguments) {
			acc := args.Get(2).(*model.Account)
			acc.ID = uint(len(accounts) + 1)
			accounts[acc.Username] = acc
		}).
		Return(nil)

	manager := auth.NewManager(auth.NewMemoryStore(), auth.ManagerConfig{})
	svc := NewAuthService(mockRepo, testHasher(), manager, nil, 0)
	ctx := context.Background()

	path, err := svc.Signup(ctx, model.RoleAdmin, "alice", "s3cret", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "/adminlogin", path)
	require.Contains(t, accounts, "alice")
	mockRepo.On("FindByUsername", mock.Anything, model.RoleAdmin, "alice").Return(accounts["alice"], nil)

	before, err := manager.Create()
	require.NoError(t, err)
	sess, path, err := svc.Login(ctx, model.RoleAdmin, before.Token, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "/adminhome", path)
	assert.NotEqual(t, before.Token, sess.Token)

	stored, err := manager.Read(ctx, sess.Token)
	require.NoError(t, err)
	marker, ok := stored.Marker(model.RoleAdmin)
	assert.True(t, ok)
	assert.Equal(t, "alice", marker)
	_, ok = stored.Marker(model.RoleUser)
	assert.False(t, ok)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	_, err = manager.Read(ctx, sess.Token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	assert.NoError(t, svc.Logout(ctx, sess.Token))
}

func TestAuthService_LogoutStoreFailure(t *testing.T) {
	mockSessions := new(MockSessionManager)
	mockSessions.On("Destroy", mock.Anything, "token").Return(errors.New("redis down"))

	svc := NewAuthService(new(MockAccountRepository), testHasher(), mockSessions, nil, 0)
	err := svc.Logout(context.Background(), "token")

	assert.ErrorIs(t, err, apperrors.ErrStore)
	mockSessions.AssertExpectations(t)
}

func TestAuthService_LoginDoesNotReuseCarriedToken(t *testing.T) {
	hashed := mustHash(t, "s3cret")
	mockRepo := new(MockAccountRepository)
	mockRepo.On("FindByUsername", mock.Anything, model.RoleUser, "mallory").
		Return(&model.Account{ID: 9, Username: "mallory", PasswordHash: hashed}, nil)
	mockRepo.On("FindByUsername", mock.Anything, model.RoleAdmin, "alice").
		Return(&model.Account{ID: 1, Username: "alice", PasswordHash: hashed}, nil)

	manager := auth.NewManager(auth.NewMemoryStore(), auth.ManagerConfig{})
	svc := NewAuthService(mockRepo, testHasher(), manager, nil, 0)
	ctx := context.Background()

	planted, _, err := svc.Login(ctx, model.RoleUser, "", "mallory", "s3cret")
	require.NoError(t, err)

	victim, _, err := svc.Login(ctx, model.RoleAdmin, planted.Token, "alice", "s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, planted.Token, victim.Token)

	_, err = manager.Read(ctx, planted.Token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}
