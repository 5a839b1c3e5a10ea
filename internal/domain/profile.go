// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxProfileIDLen = 64
	MaxNameLen      = 36
)

var (
	ErrProfileIDEmpty   = errors.New("profile id empty")
	ErrProfileIDTooLong = errors.New("profile id too long")
	ErrNameTooLong      = errors.New("name too long")
	ErrUnknownRole      = errors.New("unknown role")
)

// Role distinguishes the single broadcasting endpoint from its watchers.
type Role string

const (
	RoleHost   Role = "host"
	RoleViewer Role = "viewer"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleHost:
		return RoleHost, nil
	case RoleViewer:
		return RoleViewer, nil
	}
	return "", ErrUnknownRole
}

// Profile is the identity descriptor an endpoint presents on
// registration. It is trusted as presented; the id is the unique key
// for viewers, the role claims the single host slot.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (p Profile) Validate() error {
	if p.ID == "" {
		return ErrProfileIDEmpty
	}
	if len(p.ID) > MaxProfileIDLen {
		return ErrProfileIDTooLong
	}
	if len(p.Name) > MaxNameLen {
		return ErrNameTooLong
	}
	if _, err := ParseRole(string(p.Role)); err != nil {
		return err
	}
	return nil
}
