package domain

import (
	"context"
	"errors"
	"time"

	"golang.org/x/text/cases"
)

// Store-level errors. Repositories return these; usecases translate them.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrDuplicateName = errors.New("contact name already exists")
)

// Column limits enforced by the contacts table. The validate tags on
// Contact must carry the same values.
const (
	MaxNameLength    = 100
	MaxMobileLength  = 20
	MaxCountryLength = 100
)

// Contact is a person's contact details.
type Contact struct {
	ID        int64     `json:"contactID"`
	Name      string    `json:"name" validate:"not_blank,max=100" example:"Ann"`
	Address   string    `json:"address"`
	Telephone string    `json:"tel"`
	Mobile    string    `json:"mobile" validate:"not_blank,max=20" example:"123"`
	Email     string    `json:"email"`
	Country   string    `json:"country" validate:"not_blank,max=100" example:"US"`
	CreatedAt time.Time `json:"createdAt" swaggerignore:"true"`
	UpdatedAt time.Time `json:"updatedAt" swaggerignore:"true"`
}

// NameKey is the folded form of a contact name. Two names collide when
// their keys are equal. Unicode full case folding is used so the result
// does not depend on the process locale.
func NameKey(name string) string {
	// A Caser is stateful, so one is built per call.
	return cases.Fold().String(name)
}

type ContactRepository interface {
	List(ctx context.Context) ([]Contact, error)
	GetByID(ctx context.Context, id int64) (*Contact, error)
	// FindByName returns a contact whose name collides with name, skipping
	// excludeID. ErrNotFound when there is none.
	FindByName(ctx context.Context, name string, excludeID int64) (*Contact, error)
	Create(ctx context.Context, contact *Contact) error
	Update(ctx context.Context, contact *Contact) error
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

type ContactUsecase interface {
	ListContacts(ctx context.Context) ([]Contact, error)
	GetContact(ctx context.Context, id int64) (*Contact, error)
	CreateContact(ctx context.Context, contact *Contact) (*Contact, error)
	UpdateContact(ctx context.Context, id int64, contact *Contact) (*Contact, error)
	DeleteContact(ctx context.Context, id int64) error
}

// ExportableColumns are the wire names a contact export may include, in
// their default order.
var ExportableColumns = []string{"contactID", "name", "address", "tel", "mobile", "email", "country"}

type ExportRequest struct {
	Format  string // xlsx (default) or csv
	Columns []string
}

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportUsecase interface {
	ExportContacts(ctx context.Context, req ExportRequest) (*ExportFile, error)
}
