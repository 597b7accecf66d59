package party

import (
	"errors"
	"strings"
)

// Role is the two-valued party selection supplied at session start.
type Role string

const (
	RolePrimary Role = "PRIMARY"
	RolePartner Role = "PARTNER"
)

// ErrInvalidRole indicates a role outside PRIMARY/PARTNER.
var ErrInvalidRole = errors.New("invalid party role")

// ParseRole accepts the role case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RolePrimary:
		return RolePrimary, nil
	case RolePartner:
		return RolePartner, nil
	default:
		return "", ErrInvalidRole
	}
}

// Counterpart returns the other role.
func (r Role) Counterpart() Role {
	if r == RolePrimary {
		return RolePartner
	}
	return RolePrimary
}

// Directory holds the fixed party ids of the workspace.
type Directory struct {
	PrimaryID string `yaml:"primary_id"`
	PartnerID string `yaml:"partner_id"`
}

// ID returns the party id for a role.
func (d Directory) ID(r Role) string {
	if r == RolePrimary {
		return d.PrimaryID
	}
	return d.PartnerID
}

// Identity is the caller's view of the two parties. It is resolved once per
// session and never changes.
type Identity struct {
	Role      Role   `json:"role"`
	MyID      string `json:"my_id"`
	PartnerID string `json:"partner_id"`
}

// Resolve derives the caller's identity from the role.
func Resolve(role Role, dir Directory) (Identity, error) {
	if role != RolePrimary && role != RolePartner {
		return Identity{}, ErrInvalidRole
	}
	if dir.PrimaryID == "" || dir.PartnerID == "" || dir.PrimaryID == dir.PartnerID {
		return Identity{}, errors.New("party directory requires two distinct ids")
	}
	return Identity{
		Role:      role,
		MyID:      dir.ID(role),
		PartnerID: dir.ID(role.Counterpart()),
	}, nil
}

// IsMine reports whether a record authored by partyID belongs to the caller.
func (i Identity) IsMine(partyID string) bool {
	return partyID == i.MyID
}
