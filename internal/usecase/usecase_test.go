package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"contact-manager-backend/internal/domain"
	"contact-manager-backend/internal/usecase"
	"contact-manager-backend/pkg/apperror"
	"contact-manager-backend/pkg/audit"
	"contact-manager-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Mock Repositories
type MockContactRepo struct {
	mock.Mock
}

func (m *MockContactRepo) List(ctx context.Context) ([]domain.Contact, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}

func (m *MockContactRepo) GetByID(ctx context.Context, id int64) (*domain.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *MockContactRepo) FindByName(ctx context.Context, name string, excludeID int64) (*domain.Contact, error) {
	args := m.Called(ctx, name, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *MockContactRepo) Create(ctx context.Context, contact *domain.Contact) error {
	return m.Called(ctx, contact).Error(0)
}

func (m *MockContactRepo) Update(ctx context.Context, contact *domain.Contact) error {
	return m.Called(ctx, contact).Error(0)
}

func (m *MockContactRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockContactRepo) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newUsecase(repo *MockContactRepo) domain.ContactUsecase {
	return usecase.NewContactUsecase(repo, validation.New())
}

func requireAppError(t *testing.T, err error, kind apperror.Kind, status int) *apperror.AppError {
	t.Helper()
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected *apperror.AppError, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
	assert.Equal(t, status, appErr.Code)
	return appErr
}

func TestCreateContactValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		contact domain.Contact
		message string
	}{
		{"Should reject empty name before anything else", domain.Contact{Name: "", Mobile: "", Country: ""}, "Name field cannot be empty"},
		{"Should treat whitespace name as empty", domain.Contact{Name: "   ", Mobile: "123", Country: "US"}, "Name field cannot be empty"},
		{"Should reject empty mobile after name", domain.Contact{Name: "Ann", Mobile: "\t", Country: ""}, "Mobile field cannot be empty"},
		{"Should reject empty country last", domain.Contact{Name: "Ann", Mobile: "123", Country: " "}, "Country field cannot be empty"},
		{"Should report blank mobile ahead of a long name", domain.Contact{Name: strings.Repeat("a", 101), Mobile: "", Country: "US"}, "Mobile field cannot be empty"},
		{"Should reject long mobile", domain.Contact{Name: "Ann", Mobile: strings.Repeat("1", 21), Country: "US"}, "Mobile must be at most 20 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockContactRepo)
			uc := newUsecase(repo)

			c := tt.contact
			_, err := uc.CreateContact(ctx, &c)

			appErr := requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
			assert.Equal(t, tt.message, appErr.Message)
			repo.AssertNotCalled(t, "FindByName", mock.Anything, mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateContact(t *testing.T) {
	ctx := context.Background()

	t.Run("Should insert and return the assigned id", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("FindByName", ctx, "Ann", int64(0)).Return(nil, domain.ErrNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Contact")).Return(nil).Run(func(args mock.Arguments) {
			c := args.Get(1).(*domain.Contact)
			assert.Equal(t, int64(0), c.ID, "client supplied id must be ignored")
			c.ID = 1
		})

		created, err := uc.CreateContact(ctx, &domain.Contact{ID: 42, Name: "Ann", Mobile: "123", Country: "US"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		repo.AssertExpectations(t)
	})

	t.Run("Should reject a duplicate found by the pre-check", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("FindByName", ctx, "ann", int64(0)).Return(&domain.Contact{ID: 1, Name: "Ann"}, nil)

		_, err := uc.CreateContact(ctx, &domain.Contact{Name: "ann", Mobile: "123", Country: "US"})
		appErr := requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
		assert.Equal(t, "A contact with this name already exists", appErr.Message)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should surface a lost race as a server error", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("FindByName", ctx, "Ann", int64(0)).Return(nil, domain.ErrNotFound)
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrDuplicateName)

		_, err := uc.CreateContact(ctx, &domain.Contact{Name: "Ann", Mobile: "123", Country: "US"})
		appErr := requireAppError(t, err, apperror.KindConflict, http.StatusInternalServerError)
		assert.Equal(t, "Error saving contact. This name may already exist.", appErr.Message)
		assert.NotEmpty(t, appErr.Detail())
	})

	t.Run("Should map other store failures to internal errors", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("FindByName", ctx, "Ann", int64(0)).Return(nil, domain.ErrNotFound)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("connection reset"))

		_, err := uc.CreateContact(ctx, &domain.Contact{Name: "Ann", Mobile: "123", Country: "US"})
		appErr := requireAppError(t, err, apperror.KindInternal, http.StatusInternalServerError)
		assert.Equal(t, "Error creating contact", appErr.Message)
		assert.Equal(t, "connection reset", appErr.Detail())
	})

	t.Run("Should map a failing pre-check to an internal error", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("FindByName", ctx, "Ann", int64(0)).Return(nil, errors.New("timeout"))

		_, err := uc.CreateContact(ctx, &domain.Contact{Name: "Ann", Mobile: "123", Country: "US"})
		requireAppError(t, err, apperror.KindInternal, http.StatusInternalServerError)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUpdateContact(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject id mismatch before any store access", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		_, err := uc.UpdateContact(ctx, 1, &domain.Contact{ID: 2, Name: "", Mobile: "", Country: ""})
		appErr := requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
		assert.Equal(t, "ID mismatch", appErr.Message)
		assert.Empty(t, repo.Calls)
	})

	t.Run("Should allow keeping its own name", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("FindByName", ctx, "Ann", int64(1)).Return(nil, domain.ErrNotFound)
		repo.On("Update", ctx, mock.AnythingOfType("*domain.Contact")).Return(nil)

		updated, err := uc.UpdateContact(ctx, 1, &domain.Contact{ID: 1, Name: "Ann", Mobile: "456", Country: "US"})
		require.NoError(t, err)
		assert.Equal(t, "456", updated.Mobile)
		repo.AssertExpectations(t)
	})

	t.Run("Should reject another contact's name", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("FindByName", ctx, "BOB", int64(1)).Return(&domain.Contact{ID: 2, Name: "Bob"}, nil)

		_, err := uc.UpdateContact(ctx, 1, &domain.Contact{ID: 1, Name: "BOB", Mobile: "456", Country: "US"})
		appErr := requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
		assert.Equal(t, "A contact with this name already exists", appErr.Message)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Should return not found when the row vanished", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("FindByName", ctx, "Ann", int64(1)).Return(nil, domain.ErrNotFound)
		repo.On("Update", ctx, mock.Anything).Return(domain.ErrNotFound)

		_, err := uc.UpdateContact(ctx, 1, &domain.Contact{ID: 1, Name: "Ann", Mobile: "456", Country: "US"})
		appErr := requireAppError(t, err, apperror.KindNotFound, http.StatusNotFound)
		assert.Equal(t, "Contact not found", appErr.Message)
	})

	t.Run("Should hint at a name collision on constraint failure", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("FindByName", ctx, "Ann", int64(1)).Return(nil, domain.ErrNotFound)
		repo.On("Update", ctx, mock.Anything).Return(domain.ErrDuplicateName)

		_, err := uc.UpdateContact(ctx, 1, &domain.Contact{ID: 1, Name: "Ann", Mobile: "456", Country: "US"})
		appErr := requireAppError(t, err, apperror.KindConflict, http.StatusInternalServerError)
		assert.Equal(t, "Error updating contact. This name may already exist.", appErr.Message)
	})

	t.Run("Should validate fields after the id check", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		_, err := uc.UpdateContact(ctx, 1, &domain.Contact{ID: 1, Name: "Ann", Mobile: "", Country: "US"})
		appErr := requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
		assert.Equal(t, "Mobile field cannot be empty", appErr.Message)
		assert.Empty(t, repo.Calls)
	})
}

func TestDeleteContact(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return not found for a missing id", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("GetByID", ctx, int64(99)).Return(nil, domain.ErrNotFound)

		err := uc.DeleteContact(ctx, 99)
		requireAppError(t, err, apperror.KindNotFound, http.StatusNotFound)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Should return not found when a concurrent delete wins", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("GetByID", ctx, int64(1)).Return(&domain.Contact{ID: 1, Name: "Ann"}, nil)
		repo.On("Delete", ctx, int64(1)).Return(domain.ErrNotFound)

		err := uc.DeleteContact(ctx, 1)
		requireAppError(t, err, apperror.KindNotFound, http.StatusNotFound)
	})

	t.Run("Should delete an existing contact", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("GetByID", ctx, int64(1)).Return(&domain.Contact{ID: 1, Name: "Ann"}, nil)
		repo.On("Delete", ctx, int64(1)).Return(nil)

		require.NoError(t, uc.DeleteContact(ctx, 1))
		repo.AssertExpectations(t)
	})

	t.Run("Should map lookup failures to internal errors", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("GetByID", ctx, int64(1)).Return(nil, errors.New("pool closed"))

		err := uc.DeleteContact(ctx, 1)
		appErr := requireAppError(t, err, apperror.KindInternal, http.StatusInternalServerError)
		assert.Equal(t, "Error deleting contact", appErr.Message)
	})
}

func TestReadContacts(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return an empty list rather than nil", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("List", ctx).Return(nil, nil)

		contacts, err := uc.ListContacts(ctx)
		require.NoError(t, err)
		assert.NotNil(t, contacts)
		assert.Empty(t, contacts)
	})

	t.Run("Should wrap list failures with diagnostic text", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("List", ctx).Return(nil, errors.New("relation \"contacts\" does not exist"))

		_, err := uc.ListContacts(ctx)
		appErr := requireAppError(t, err, apperror.KindInternal, http.StatusInternalServerError)
		assert.Equal(t, "Error retrieving contacts", appErr.Message)
		assert.Contains(t, appErr.Detail(), "does not exist")
	})

	t.Run("Should return not found for a missing contact", func(t *testing.T) {
		repo := new(MockContactRepo)
		uc := newUsecase(repo)

		repo.On("GetByID", ctx, int64(7)).Return(nil, domain.ErrNotFound)

		_, err := uc.GetContact(ctx, 7)
		requireAppError(t, err, apperror.KindNotFound, http.StatusNotFound)
	})
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("Should report ok when the store answers", func(t *testing.T) {
		repo := new(MockContactRepo)
		repo.On("Ping", mock.Anything).Return(nil)

		status, err := usecase.NewHealthUsecase(repo).Check(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ok", status["status"])
	})

	t.Run("Should report unavailable when the store is down", func(t *testing.T) {
		repo := new(MockContactRepo)
		repo.On("Ping", mock.Anything).Return(errors.New("dial tcp: refused"))

		status, err := usecase.NewHealthUsecase(repo).Check(ctx)
		requireAppError(t, err, apperror.KindUnavailable, http.StatusServiceUnavailable)
		assert.Equal(t, "degraded", status["status"])
	})
}

func TestContactAudit(t *testing.T) {
	ctx := audit.WithRequestID(context.Background(), "req-9")

	t.Run("Should record mutations and rejected duplicates", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		repo := new(MockContactRepo)
		uc := usecase.NewContactUsecase(repo, validation.New(), usecase.WithAudit(audit.NewWithCore(core, "contacts", "test")))

		repo.On("FindByName", ctx, "Ann", int64(0)).Return(nil, domain.ErrNotFound).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Contact")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Contact).ID = 5
		}).Return(nil).Once()
		_, err := uc.CreateContact(ctx, &domain.Contact{Name: "Ann", Mobile: "1", Country: "US"})
		require.NoError(t, err)

		repo.On("FindByName", ctx, "ANN", int64(0)).Return(&domain.Contact{ID: 5, Name: "Ann"}, nil).Once()
		_, err = uc.CreateContact(ctx, &domain.Contact{Name: "ANN", Mobile: "1", Country: "US"})
		require.Error(t, err)

		require.Equal(t, 2, logs.Len())
		created := logs.All()[0]
		assert.Equal(t, string(audit.EventContactCreated), created.Message)
		assert.Equal(t, int64(5), created.ContextMap()["contact_id"])
		assert.Equal(t, "req-9", created.ContextMap()["request_id"])
		assert.Equal(t, string(audit.EventDuplicateRejected), logs.All()[1].Message)
	})

	t.Run("Should not record failed mutations", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		repo := new(MockContactRepo)
		uc := usecase.NewContactUsecase(repo, validation.New(), usecase.WithAudit(audit.NewWithCore(core, "contacts", "test")))

		_, err := uc.UpdateContact(ctx, 1, &domain.Contact{ID: 2})
		require.Error(t, err)
		assert.Zero(t, logs.Len())
	})
}
