package entity

import (
	"errors"
	"strings"
)

// Validation errors. All are raised before any persistence write.
var (
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrProtectedCategory = errors.New("protected category")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidDimension  = errors.New("invalid dimension")
	ErrInvalidRange      = errors.New("invalid range")
	ErrOutOfWindow       = errors.New("date out of window")
	ErrMissingStageName  = errors.New("missing stage name")
	ErrIncompleteProduct = errors.New("incomplete product")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidExtension  = errors.New("invalid extension")
)

// Authorization errors.
var (
	ErrTimelineLocked = errors.New("timeline locked")
	ErrNotApprover    = errors.New("marketing approver required")
)

// Not-found errors: the caller's view is stale.
var (
	ErrUnknownProduct  = errors.New("unknown product")
	ErrUnknownStage    = errors.New("unknown stage")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownLine     = errors.New("unknown material line")
	ErrUnknownRoom     = errors.New("unknown room")
)

// Conflicts.
var (
	ErrStaleVersion     = errors.New("work item was modified by another session")
	ErrWorkItemExists   = errors.New("work item already exists")
	ErrAlreadyResponded = errors.New("already responded")
	ErrAlreadyResolved  = errors.New("extension request already resolved")
	ErrExtensionPending = errors.New("extension request already pending")
	ErrNotPublished     = errors.New("work item is not published")
	ErrTrackExists      = errors.New("response track already open")
)

// DomainError carries the identity of the offending row so the caller can
// re-prompt without reloading.
type DomainError struct {
	Kind     error
	Product  string
	Category string
	Stage    string
	Field    string
	Detail   string
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	var parts []string
	if e.Product != "" {
		parts = append(parts, "product "+e.Product)
	}
	if e.Category != "" {
		parts = append(parts, "category "+e.Category)
	}
	if e.Stage != "" {
		parts = append(parts, "stage "+e.Stage)
	}
	if e.Field != "" {
		parts = append(parts, "field "+e.Field)
	}
	if len(parts) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(")")
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *DomainError) Unwrap() error { return e.Kind }

// Fail builds a DomainError of the given kind.
func Fail(kind error, detail string) *DomainError {
	return &DomainError{Kind: kind, Detail: detail}
}

func (e *DomainError) WithProduct(p string) *DomainError  { e.Product = p; return e }
func (e *DomainError) WithCategory(c string) *DomainError { e.Category = c; return e }
func (e *DomainError) WithStage(s string) *DomainError    { e.Stage = s; return e }
func (e *DomainError) WithField(f string) *DomainError    { e.Field = f; return e }
