package postgres

import (
	"context"
	"errors"
	"fmt"

	"contact-manager-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

const contactColumns = `contact_id, name, address, tel, mobile, email, country, created_at, updated_at`

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

var _ DB = (*pgxpool.Pool)(nil)

type contactRepo struct {
	db DB
}

// NewContactRepository creates a contact repository backed by Postgres.
func NewContactRepository(db DB) domain.ContactRepository {
	return &contactRepo{db: db}
}

func scanContact(row pgx.Row, c *domain.Contact) error {
	return row.Scan(
		&c.ID, &c.Name, &c.Address, &c.Telephone, &c.Mobile,
		&c.Email, &c.Country, &c.CreatedAt, &c.UpdatedAt,
	)
}

// translateError maps driver errors onto the domain's store errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateName, pgErr.Message)
	}
	return err
}

func (r *contactRepo) List(ctx context.Context) ([]domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts ORDER BY contact_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		var c domain.Contact
		if err := scanContact(rows, &c); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *contactRepo) GetByID(ctx context.Context, id int64) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE contact_id = $1`

	var c domain.Contact
	if err := scanContact(r.db.QueryRow(ctx, query, id), &c); err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

func (r *contactRepo) FindByName(ctx context.Context, name string, excludeID int64) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE name_key = $1 AND contact_id <> $2 LIMIT 1`

	var c domain.Contact
	if err := scanContact(r.db.QueryRow(ctx, query, domain.NameKey(name), excludeID), &c); err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

func (r *contactRepo) Create(ctx context.Context, contact *domain.Contact) error {
	query := `
		INSERT INTO contacts (name, name_key, address, tel, mobile, email, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING contact_id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		contact.Name, domain.NameKey(contact.Name), contact.Address, contact.Telephone,
		contact.Mobile, contact.Email, contact.Country,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)

	return translateError(err)
}

// Update replaces every client-owned column. No row means the contact was
// removed in the meantime.
func (r *contactRepo) Update(ctx context.Context, contact *domain.Contact) error {
	query := `
		UPDATE contacts
		SET name = $2, name_key = $3, address = $4, tel = $5, mobile = $6,
		    email = $7, country = $8, updated_at = NOW()
		WHERE contact_id = $1
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		contact.ID, contact.Name, domain.NameKey(contact.Name), contact.Address, contact.Telephone,
		contact.Mobile, contact.Email, contact.Country,
	).Scan(&contact.CreatedAt, &contact.UpdatedAt)

	return translateError(err)
}

func (r *contactRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE contact_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *contactRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
