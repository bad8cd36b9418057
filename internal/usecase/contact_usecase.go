package usecase

import (
	"context"
	"errors"

	"contact-manager-backend/internal/domain"
	"contact-manager-backend/pkg/apperror"
	"contact-manager-backend/pkg/audit"
	"contact-manager-backend/pkg/logger"
	"contact-manager-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const (
	msgDuplicateName = "A contact with this name already exists"
	msgNotFound      = "Contact not found"
)

type contactUsecase struct {
	repo     domain.ContactRepository
	validate *validator.Validate
	audit    *audit.Logger
}

type ContactOption func(*contactUsecase)

// WithAudit records every successful mutation and every rejected
// duplicate on a.
func WithAudit(a *audit.Logger) ContactOption {
	return func(u *contactUsecase) { u.audit = a }
}

// NewContactUsecase creates the contact service over repo.
func NewContactUsecase(repo domain.ContactRepository, validate *validator.Validate, opts ...ContactOption) domain.ContactUsecase {
	if validate == nil {
		validate = validation.New()
	}
	u := &contactUsecase{
		repo:     repo,
		validate: validate,
		audit:    audit.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *contactUsecase) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	contacts, err := u.repo.List(ctx)
	if err != nil {
		logger.Log.Error("Error retrieving contacts", "error", err)
		return nil, apperror.Internal("Error retrieving contacts", err)
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	return contacts, nil
}

func (u *contactUsecase) GetContact(ctx context.Context, id int64) (*domain.Contact, error) {
	contact, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound(msgNotFound)
		}
		logger.Log.Error("Error retrieving contact", "id", id, "error", err)
		return nil, apperror.Internal("Error retrieving contact", err)
	}
	return contact, nil
}

// CreateContact validates, runs the duplicate pre-check and inserts.
// The pre-check is advisory: a concurrent writer can still win the race,
// in which case the store's unique index rejects the insert and the
// caller gets a server error rather than a validation error.
func (u *contactUsecase) CreateContact(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	if err := u.validateContact(contact); err != nil {
		return nil, err
	}

	if err := u.checkDuplicateName(ctx, contact.Name, 0); err != nil {
		if apperror.IsKind(err, apperror.KindValidation) {
			return nil, err
		}
		logger.Log.Error("Error creating contact", "error", err)
		return nil, apperror.Internal("Error creating contact", err)
	}

	contact.ID = 0
	if err := u.repo.Create(ctx, contact); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			logger.Log.Error("Error saving contact", "name", contact.Name, "error", err)
			return nil, apperror.Conflict("Error saving contact. This name may already exist.", err)
		}
		logger.Log.Error("Error creating contact", "error", err)
		return nil, apperror.Internal("Error creating contact", err)
	}

	u.audit.ContactChanged(ctx, audit.EventContactCreated, contact.ID, contact.Name)
	return contact, nil
}

// UpdateContact replaces the stored record with contact. The path id must
// match the payload id; that check runs before anything touches the store.
func (u *contactUsecase) UpdateContact(ctx context.Context, id int64, contact *domain.Contact) (*domain.Contact, error) {
	if contact == nil || contact.ID != id {
		return nil, apperror.BadRequest("ID mismatch")
	}

	if err := u.validateContact(contact); err != nil {
		return nil, err
	}

	if err := u.checkDuplicateName(ctx, contact.Name, id); err != nil {
		if apperror.IsKind(err, apperror.KindValidation) {
			return nil, err
		}
		logger.Log.Error("Error updating contact", "id", id, "error", err)
		return nil, apperror.Internal("Error updating contact", err)
	}

	if err := u.repo.Update(ctx, contact); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, apperror.NotFound(msgNotFound)
		case errors.Is(err, domain.ErrDuplicateName):
			logger.Log.Error("Error updating contact", "id", id, "name", contact.Name, "error", err)
			return nil, apperror.Conflict("Error updating contact. This name may already exist.", err)
		default:
			logger.Log.Error("Error updating contact", "id", id, "error", err)
			return nil, apperror.Internal("Error updating contact", err)
		}
	}

	u.audit.ContactChanged(ctx, audit.EventContactUpdated, contact.ID, contact.Name)
	return contact, nil
}

func (u *contactUsecase) DeleteContact(ctx context.Context, id int64) error {
	existing, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound(msgNotFound)
		}
		logger.Log.Error("Error deleting contact", "id", id, "error", err)
		return apperror.Internal("Error deleting contact", err)
	}

	if err := u.repo.Delete(ctx, id); err != nil {
		// Lost to a concurrent delete between the lookup and here.
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound(msgNotFound)
		}
		logger.Log.Error("Error deleting contact", "id", id, "error", err)
		return apperror.Internal("Error deleting contact", err)
	}

	u.audit.ContactChanged(ctx, audit.EventContactDeleted, id, existing.Name)
	return nil
}

// validateContact checks name, mobile and country in that order and
// reports only the first failure.
func (u *contactUsecase) validateContact(contact *domain.Contact) error {
	if contact == nil {
		return apperror.BadRequest("Request body is required")
	}
	if err := u.validate.Struct(contact); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return apperror.Internal("Error validating contact", err)
		}
		return apperror.BadRequest(validation.FirstMessage(err))
	}
	return nil
}

func (u *contactUsecase) checkDuplicateName(ctx context.Context, name string, excludeID int64) error {
	existing, err := u.repo.FindByName(ctx, name, excludeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing != nil && existing.ID != excludeID {
		u.audit.DuplicateRejected(ctx, name, existing.ID)
		return apperror.BadRequest(msgDuplicateName)
	}
	return nil
}
