package users

import (
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("profile not found")

// Profile mirrors the public profile row kept next to the auth user.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Timezone  string    `json:"timezone"`
}

func (p *Profile) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
