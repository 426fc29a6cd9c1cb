package models

import (
	"errors"
	"time"
)

var ErrInvalidAge = errors.New("age must be a positive integer")

// User represents a dating profile. Exactly one User is "current" per session.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Age            int       `json:"age,omitempty"`
	Location       string    `json:"location,omitempty"`
	Interests      []string  `json:"interests,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Clone returns a deep copy so callers never alias store-owned state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Interests != nil {
		c.Interests = append([]string(nil), u.Interests...)
	}
	return &c
}

// ProfileUpdate is a partial User. Nil fields are left unchanged; a non-nil
// Interests slice (even empty) replaces the existing list.
type ProfileUpdate struct {
	Username       *string
	Email          *string
	ProfilePicture *string
	Bio            *string
	Age            *int
	Location       *string
	Interests      []string
}

func (p ProfileUpdate) Validate() error {
	if p.Age != nil && *p.Age <= 0 {
		return ErrInvalidAge
	}
	return nil
}

// Apply shallow-merges p into a copy of u. ID and CreatedAt are never touched.
func (p ProfileUpdate) Apply(u *User) *User {
	merged := u.Clone()
	if p.Username != nil {
		merged.Username = *p.Username
	}
	if p.Email != nil {
		merged.Email = *p.Email
	}
	if p.ProfilePicture != nil {
		merged.ProfilePicture = *p.ProfilePicture
	}
	if p.Bio != nil {
		merged.Bio = *p.Bio
	}
	if p.Age != nil {
		merged.Age = *p.Age
	}
	if p.Location != nil {
		merged.Location = *p.Location
	}
	if p.Interests != nil {
		merged.Interests = append([]string{}, p.Interests...)
	}
	return merged
}
