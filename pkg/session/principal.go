package session

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the account type the server assigns to every user.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleLeader     Role = "leader"
	RoleMember     Role = "member"
	RoleClient     Role = "client"
)

// Roles lists every valid role.
var Roles = []Role{RoleSuperadmin, RoleAdmin, RoleLeader, RoleMember, RoleClient}

// ParseRole normalizes a raw role string from the API.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Roles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role: %q", raw)
}

// Principal is the authenticated user's identity for the current session.
// It is owned by the Manager; everything else reads it.
type Principal struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"type"`
	Subscribed   bool   `json:"subscribed"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// principalWire matches the server's user payload. Subscription state comes
// over the wire as the integer is_subscribe.
type principalWire struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Type         string          `json:"type"`
	IsSubscribe  json.RawMessage `json:"is_subscribe"`
	ProfileImage string          `json:"profile_image"`
}

// DecodePrincipal parses a server user object into a Principal.
func DecodePrincipal(raw []byte) (*Principal, error) {
	var wire principalWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	role, err := ParseRole(wire.Type)
	if err != nil {
		return nil, err
	}
	return &Principal{
		ID:           wire.ID,
		Name:         wire.Name,
		Email:        wire.Email,
		Role:         role,
		Subscribed:   string(wire.IsSubscribe) == "1" || string(wire.IsSubscribe) == "true",
		ProfileImage: wire.ProfileImage,
	}, nil
}

// encode serializes a Principal for the session store.
func (p *Principal) encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeStored(value string) (*Principal, error) {
	var p Principal
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
