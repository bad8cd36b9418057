package contactclient

import (
	"context"
	"errors"
	"sync"
	"time"
)

const DefaultBannerDelay = 3 * time.Second

const (
	MsgRequiredFields     = "Please fill all required fields"
	MsgNoUpdateSelection  = "No contact selected for update"
	MsgNoDeleteSelection  = "No contact selected for deletion"
	MsgContactSaved       = "Contact saved successfully"
	MsgContactUpdated     = "Contact updated successfully"
	MsgContactDeleted     = "Contact deleted successfully"
	msgUnexpectedResponse = "An unexpected error occurred"
)

var (
	ErrNoSelection = errors.New("no contact selected")
	ErrCancelled   = errors.New("cancelled")
)

// Banner holds one success and one error message. Setting either
// schedules both to clear after Delay; a newer message restarts the timer.
type Banner struct {
	Delay time.Duration

	mu      sync.Mutex
	success string
	failure string
	gen     uint64
	timer   *time.Timer
}

func (b *Banner) Success() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.success
}

func (b *Banner) Error() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failure
}

func (b *Banner) SetSuccess(msg string) { b.set(msg, "") }

func (b *Banner) SetError(msg string) { b.set("", msg) }

// Clear drops both messages immediately.
func (b *Banner) Clear() { b.set("", "") }

func (b *Banner) set(success, failure string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.success, b.failure = success, failure
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if success == "" && failure == "" {
		return
	}

	delay := b.Delay
	if delay <= 0 {
		delay = DefaultBannerDelay
	}
	gen := b.gen
	b.timer = time.AfterFunc(delay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.gen == gen {
			b.success, b.failure = "", ""
			b.timer = nil
		}
	})
}

// Editor is the form state of a contact UI. Draft is a copy; editing it
// never touches the Store's snapshot until Save or Update succeeds.
type Editor struct {
	Draft            Contact
	ValidationErrors FieldErrors
	Banner           *Banner
	// Confirm is asked before Delete; nil means yes.
	Confirm func(c Contact) bool

	store *Store
}

func NewEditor(store *Store, bannerDelay time.Duration) *Editor {
	return &Editor{
		Banner: &Banner{Delay: bannerDelay},
		store:  store,
	}
}

// Select copies c into the draft.
func (e *Editor) Select(c Contact) {
	e.Draft = c
	e.ValidationErrors = nil
	e.Banner.Clear()
}

// New resets the draft to an empty, unsaved contact.
func (e *Editor) New() {
	e.Draft = Contact{}
	e.ValidationErrors = nil
	e.Banner.Clear()
}

func (e *Editor) validate() bool {
	e.ValidationErrors = ValidateFields(e.Draft)
	if e.ValidationErrors != nil {
		e.Banner.SetError(MsgRequiredFields)
		return false
	}
	return true
}

// Save creates the draft as a new contact. On success the draft is reset.
func (e *Editor) Save(ctx context.Context) (Contact, error) {
	if !e.validate() {
		return Contact{}, e.ValidationErrors
	}
	created, err := e.store.Add(ctx, e.Draft)
	if err != nil {
		e.Banner.SetError(errorMessage(err))
		return Contact{}, err
	}
	e.Draft = Contact{}
	e.Banner.SetSuccess(MsgContactSaved)
	return created, nil
}

// Update writes the draft over the selected contact. On success the draft
// is reset and the selection cleared.
func (e *Editor) Update(ctx context.Context) (Contact, error) {
	if e.Draft.ID == 0 {
		e.Banner.SetError(MsgNoUpdateSelection)
		return Contact{}, ErrNoSelection
	}
	if !e.validate() {
		return Contact{}, e.ValidationErrors
	}
	updated, err := e.store.Update(ctx, e.Draft.ID, e.Draft)
	if err != nil {
		e.Banner.SetError(errorMessage(err))
		return Contact{}, err
	}
	e.Draft = Contact{}
	e.ValidationErrors = nil
	e.Banner.SetSuccess(MsgContactUpdated)
	return updated, nil
}

// Delete removes the selected contact after confirmation.
func (e *Editor) Delete(ctx context.Context) error {
	if e.Draft.ID == 0 {
		e.Banner.SetError(MsgNoDeleteSelection)
		return ErrNoSelection
	}
	if e.Confirm != nil && !e.Confirm(e.Draft) {
		return ErrCancelled
	}
	if err := e.store.Delete(ctx, e.Draft.ID); err != nil {
		e.Banner.SetError(errorMessage(err))
		return err
	}
	e.Draft = Contact{}
	e.ValidationErrors = nil
	e.Banner.SetSuccess(MsgContactDeleted)
	return nil
}

func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgUnexpectedResponse
}
