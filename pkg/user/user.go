package user

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type User struct {
	Id          int
	Email       string
	Name        string
	Position    string
	Dept        string
	ImgUrl      string
	CreatedTime time.Time
}

// NewUser carries the registration input. The password is only ever handled
// here and in the service; the repository stores the bcrypt hash.
type NewUser struct {
	Email    string
	Password string
	Name     string
	Position string
	Dept     string
}
