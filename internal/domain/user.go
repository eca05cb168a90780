package domain

import "time"

type User struct {
	ID          string    `db:"id"`
	Username    string    `db:"username"`
	Email       string    `db:"email"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	Hash        string    `db:"password_hash"`
	IsStaff     bool      `db:"is_staff"`
	IsSuperuser bool      `db:"is_superuser"`
	CreatedAt   time.Time `db:"created_at"`
}

// Role is resolved once per session.
type Role int

const (
	RoleRegular Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "regular"
}

// RoleOf classifies an account: staff or superuser accounts are admins.
func RoleOf(u *User) Role {
	if u != nil && (u.IsStaff || u.IsSuperuser) {
		return RoleAdmin
	}
	return RoleRegular
}

// Session is the authenticated caller passed to every service call.
// The zero value is an anonymous caller.
type Session struct {
	ID        string
	UserID    string
	Username  string
	Role      Role
	ExpiresAt time.Time
}

func (s Session) Authenticated() bool { return s.UserID != "" }

func (s Session) IsAdmin() bool { return s.Authenticated() && s.Role == RoleAdmin }
