package models

import (
	"strings"
	"time"
)

type UserRole string

const (
	UserRoleDriver   UserRole = "driver"
	UserRoleMechanic UserRole = "mechanic"
)

// ParseUserRole accepts any casing and surrounding whitespace.
func ParseUserRole(s string) (UserRole, bool) {
	switch UserRole(strings.ToLower(strings.TrimSpace(s))) {
	case UserRoleDriver:
		return UserRoleDriver, true
	case UserRoleMechanic:
		return UserRoleMechanic, true
	}
	return "", false
}

type User struct {
	ID           int64     `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	Phone        string    `json:"phone" bson:"phone"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         UserRole  `json:"role" bson:"role"`
	IsAvailable  bool      `json:"is_available" bson:"is_available"`
	Latitude     *float64  `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty" bson:"longitude,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsMechanic() bool {
	return u.Role == UserRoleMechanic
}

// Location returns the last stored position, if any.
func (u *User) Location() (Coordinates, bool) {
	if u.Latitude == nil || u.Longitude == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *u.Latitude, Lng: *u.Longitude}, true
}

// UserResponse is the public projection returned by /register.
type UserResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Role        UserRole `json:"role"`
	IsAvailable bool     `json:"is_available"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		IsAvailable: u.IsAvailable,
	}
}

// RegisterInput is the /register body.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,person_name"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone_digits"`
	Password string `json:"password" validate:"required,min=8,max=100,letters_digits"`
	Role     string `json:"role" validate:"required,user_role"`
}
