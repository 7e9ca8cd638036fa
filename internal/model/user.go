package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a user's authorisation level.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
)

// IsAdmin reports whether the role carries administrative rights.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// UserStatus is the account state of a user.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBlocked  UserStatus = "blocked"
	UserStatusDeleted  UserStatus = "deleted"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusBlocked, UserStatusDeleted:
		return true
	}
	return false
}

// User is a registered account.
type User struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	Name                string     `json:"name" db:"name"`
	Email               string     `json:"email" db:"email"`
	Phone               *string    `json:"phone,omitempty" db:"phone"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	ProfilePicture      *string    `json:"profilePicture,omitempty" db:"profile_picture"`
	Address             *string    `json:"address,omitempty" db:"address"`
	Role                Role       `json:"role" db:"role"`
	IsEmailVerified     bool       `json:"isEmailVerified" db:"is_email_verified"`
	Status              UserStatus `json:"status" db:"status"`
	IsDeleted           bool       `json:"isDeleted" db:"is_deleted"`
	PasswordChangedAt   *time.Time `json:"-" db:"password_changed_at"`
	ResetTokenHash      *string    `json:"-" db:"reset_token_hash"`
	ResetTokenExpiresAt *time.Time `json:"-" db:"reset_token_expires_at"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time  `json:"updatedAt" db:"updated_at"`
}

// SignUpRequest is the payload for POST /auth/sign-up.
type SignUpRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
	Password string  `json:"password"`
}

// Validate checks the sign-up payload.
func (r *SignUpRequest) Validate() error {
	v := &validator{}
	v.check(strings.TrimSpace(r.Name) != "", "name", "Name is required")
	v.check(isEmail(r.Email), "email", "Valid email is required")
	v.check(len(r.Password) >= 6, "password", "Password must be at least 6 characters")
	if r.Phone != nil {
		v.check(strings.TrimSpace(*r.Phone) != "", "phone", "Phone cannot be empty")
	}
	return v.err()
}

// LoginRequest is the payload for POST /auth/login. Either Email or Phone identifies the user.
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// Validate checks the login payload.
func (r *LoginRequest) Validate() error {
	v := &validator{}
	v.check(r.Email != "" || r.Phone != "", "email", "Email or phone is required")
	v.check(r.Password != "", "password", "Password is required")
	return v.err()
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	TokenPair
	User *User `json:"user"`
}

// RefreshTokenRequest is the payload for POST /auth/refresh-token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest is the payload for POST /auth/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Validate checks the change-password payload.
func (r *ChangePasswordRequest) Validate() error {
	v := &validator{}
	v.check(r.OldPassword != "", "oldPassword", "Old password is required")
	v.check(len(r.NewPassword) >= 6, "newPassword", "Password must be at least 6 characters")
	return v.err()
}

// PasswordResetRequest is the payload for POST /auth/request-password-reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the payload for POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Validate checks the reset-password payload.
func (r *ResetPasswordRequest) Validate() error {
	v := &validator{}
	v.check(r.Token != "", "token", "Token is required")
	v.check(len(r.NewPassword) >= 6, "newPassword", "Password must be at least 6 characters")
	return v.err()
}

// UpdateProfileRequest is the payload for PATCH /users/update.
type UpdateProfileRequest struct {
	Name           *string `json:"name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
	Address        *string `json:"address,omitempty"`
}

// Validate checks the profile payload.
func (r *UpdateProfileRequest) Validate() error {
	v := &validator{}
	if r.Name != nil {
		v.check(strings.TrimSpace(*r.Name) != "", "name", "Name cannot be empty")
	}
	return v.err()
}

// ApplyTo copies the provided fields onto u.
func (r *UpdateProfileRequest) ApplyTo(u *User) {
	if r.Name != nil {
		u.Name = strings.TrimSpace(*r.Name)
	}
	if r.Phone != nil {
		u.Phone = r.Phone
	}
	if r.ProfilePicture != nil {
		u.ProfilePicture = r.ProfilePicture
	}
	if r.Address != nil {
		u.Address = r.Address
	}
}

// UpdateUserStatusRequest is the payload for PATCH /users/update-status/{userId}.
type UpdateUserStatusRequest struct {
	Status UserStatus `json:"status"`
}

// Validate checks the status payload.
func (r *UpdateUserStatusRequest) Validate() error {
	v := &validator{}
	v.check(r.Status.Valid(), "status", "Status must be one of active, inactive, blocked, deleted")
	return v.err()
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
