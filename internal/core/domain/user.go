package domain

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

type User struct {
	ID           string `json:"_id,omitempty"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         Role   `json:"role,omitempty"`
}

// Session is the logged-in identity shared read-only by every view.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func (s Session) LoggedIn() bool {
	return s.Username != ""
}

func NewSession(u User) Session {
	role := u.Role
	if role == "" {
		role = RoleCustomer
	}
	return Session{UserID: u.ID, Username: u.Username, Role: role}
}

const minPasswordLength = 8

var (
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrPasswordNoUpper   = errors.New("password must contain an uppercase letter")
	ErrPasswordNoSpecial = errors.New("password must contain a special character")
)

// CheckPasswordStrength applies the registration password policy. Rules are
// checked in order and the first failure is returned.
func CheckPasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	var upper, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case !isASCIIAlnum(r):
			special = true
		}
	}
	if !upper {
		return ErrPasswordNoUpper
	}
	if !special {
		return ErrPasswordNoSpecial
	}
	return nil
}

func isASCIIAlnum(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
