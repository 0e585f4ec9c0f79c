package model

import "time"

// Role is the coarse authorization level of a user. It travels inside the
// access token's "role" claim and is checked by middleware.RequireRole.
type Role string

const (
	RoleUser    Role = "USER"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User mirrors the `users` table.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login name.
//	Email        – unique email address (stored lower-cased).
//	PasswordHash – bcrypt hashed password, never serialized.
//	Role         – USER, TEACHER or ADMIN.
//	Activated    – false until the activation link has been consumed.
//	Telephone    – optional unique phone number.
//	Birthday     – optional date of birth.
type User struct {
	ID           uint64     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Activated    bool       `json:"activated"`
	Telephone    *string    `json:"telephone,omitempty"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
