package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Identity tells an uncommitted draft apart from a workout stored in the
// entity store. The zero value is a draft.
type Identity struct {
	id        uuid.UUID
	persisted bool
}

// DraftIdentity returns the identity of a workout that was never committed.
func DraftIdentity() Identity {
	return Identity{}
}

// PersistedIdentity returns the identity of a stored workout.
func PersistedIdentity(id uuid.UUID) Identity {
	return Identity{id: id, persisted: true}
}

// IsDraft reports whether the workout has never been committed.
func (i Identity) IsDraft() bool {
	return !i.persisted
}

// ID returns the stored id and true, or uuid.Nil and false for a draft.
func (i Identity) ID() (uuid.UUID, bool) {
	return i.id, i.persisted
}

func (i Identity) String() string {
	if !i.persisted {
		return "draft"
	}
	return i.id.String()
}

type identityJSON struct {
	Kind string     `json:"kind"`
	ID   *uuid.UUID `json:"id,omitempty"`
}

// MarshalJSON encodes the identity as {"kind":"draft"} or {"kind":"persisted","id":"..."}.
func (i Identity) MarshalJSON() ([]byte, error) {
	if !i.persisted {
		return json.Marshal(identityJSON{Kind: "draft"})
	}
	id := i.id
	return json.Marshal(identityJSON{Kind: "persisted", ID: &id})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (i *Identity) UnmarshalJSON(data []byte) error {
	var raw identityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "draft", "":
		*i = DraftIdentity()
	case "persisted":
		if raw.ID == nil {
			return fmt.Errorf("persisted identity without id")
		}
		*i = PersistedIdentity(*raw.ID)
	default:
		return fmt.Errorf("unknown identity kind %q", raw.Kind)
	}
	return nil
}
