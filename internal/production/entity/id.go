package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const draftPrefix = "draft:"

// RowID identifies a row of the work-item tree. It is either a persisted
// database id or a draft id minted in the edit session and resolved on save.
type RowID struct {
	persisted uint64
	draft     uuid.UUID
}

// Persisted wraps a database id.
func Persisted(id uint64) RowID {
	return RowID{persisted: id}
}

// NewDraftID mints a fresh session-local id.
func NewDraftID() RowID {
	return RowID{draft: uuid.New()}
}

// DraftID wraps an existing draft uuid, e.g. one echoed back by a client.
func DraftID(u uuid.UUID) RowID {
	return RowID{draft: u}
}

func (id RowID) IsZero() bool  { return id.persisted == 0 && id.draft == uuid.Nil }
func (id RowID) IsDraft() bool { return id.draft != uuid.Nil }

// Value returns the persisted id and true, or 0 and false for drafts.
func (id RowID) Value() (uint64, bool) {
	if id.IsDraft() || id.persisted == 0 {
		return 0, false
	}
	return id.persisted, true
}

func (id RowID) String() string {
	if id.IsDraft() {
		return draftPrefix + id.draft.String()
	}
	return strconv.FormatUint(id.persisted, 10)
}

// ParseRowID accepts "123" or "draft:<uuid>".
func ParseRowID(s string) (RowID, error) {
	if strings.HasPrefix(s, draftPrefix) {
		u, err := uuid.Parse(strings.TrimPrefix(s, draftPrefix))
		if err != nil {
			return RowID{}, fmt.Errorf("invalid draft id %q: %w", s, err)
		}
		return DraftID(u), nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return RowID{}, fmt.Errorf("invalid id %q", s)
	}
	return Persisted(n), nil
}

// MarshalJSON encodes persisted ids as numbers and drafts as strings.
func (id RowID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if id.IsDraft() {
		return json.Marshal(id.String())
	}
	return []byte(strconv.FormatUint(id.persisted, 10)), nil
}

func (id *RowID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = RowID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*id = RowID{}
			return nil
		}
		parsed, err := ParseRowID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = Persisted(n)
	return nil
}
