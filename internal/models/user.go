package models

import "time"

type User struct {
	ID        string
	Email     string
	FirstName *string
	LastName  *string
	// Password holds the argon2id digest, never the raw password.
	Password  string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID      string
	Email   string
	IsAdmin bool
}

func (u *User) Actor() Actor {
	return Actor{
		ID:      u.ID,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
	}
}
