package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// UserRef references a user. The persistence API returns populated user
// objects on reads and accepts bare ids on writes.
type UserRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
	Email string `json:"email,omitempty"`
}

// MarshalJSON encodes the reference as its bare id.
func (u UserRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.ID)
}

// UnmarshalJSON accepts either a bare id string or a user object.
func (u *UserRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*u = UserRef{ID: id}
		return nil
	}

	type plain UserRef
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("decode user reference: %w", err)
	}
	*u = UserRef(p)
	return nil
}

// Initials returns up to two upper-case initials of the user's name.
func (u UserRef) Initials() string {
	var b strings.Builder
	for _, w := range strings.Fields(u.Name) {
		b.WriteString(strings.ToUpper(string([]rune(w)[0])))
		if b.Len() >= 2 {
			break
		}
	}
	return b.String()
}

// UniqueTeam drops empty and repeated ids, keeping first occurrences in order.
func UniqueTeam(team []UserRef) []UserRef {
	seen := make(map[string]struct{}, len(team))
	out := make([]UserRef, 0, len(team))
	for _, u := range team {
		id := strings.TrimSpace(u.ID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		u.ID = id
		out = append(out, u)
	}
	return out
}

// TeamFromIDs builds user references from bare ids.
func TeamFromIDs(ids []string) []UserRef {
	team := make([]UserRef, 0, len(ids))
	for _, id := range ids {
		team = append(team, UserRef{ID: id})
	}
	return UniqueTeam(team)
}
