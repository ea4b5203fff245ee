package domain

import "time"

const (
	DefaultPhoto = "https://avatars.githubusercontent.com/u/19819005?v=4"
	DefaultBio   = "I am a new user."
)

type Role string

const (
	RoleUser    Role = "user"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

// User is the stored account record. PasswordHash is empty when the record
// was loaded without credentials.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Photo        string
	Bio          string
	Role         Role
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the client-safe projection of a User.
type PublicUser struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	Photo      string    `json:"photo"`
	Bio        string    `json:"bio"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Photo:      u.Photo,
		Bio:        u.Bio,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Identity is the caller resolved by the access gate. It is passed
// explicitly into use cases that act on behalf of the session owner.
type Identity struct {
	UserID     string
	Role       Role
	IsVerified bool
}

func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Role: u.Role, IsVerified: u.IsVerified}
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	Name  *string
	Bio   *string
	Photo *string
}

func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Bio == nil && p.Photo == nil
}
