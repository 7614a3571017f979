package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Image is an uploaded asset reference.
type Image struct {
	PublicID string `bson:"public_id" json:"public_id" validate:"required"`
	URL      string `bson:"url" json:"url" validate:"required"`
}

// User represents a user in the system
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name                string             `bson:"name" json:"name" validate:"required,min=3,max=30"`
	Email               string             `bson:"email" json:"email" validate:"required,email"`
	Password            string             `bson:"password" json:"-"`
	Avatar              Image              `bson:"avatar" json:"avatar"`
	Role                string             `bson:"role" json:"role" validate:"required,oneof=user admin"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpiry *time.Time         `bson:"resetPasswordExpiry,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
}

// PlaceholderAvatar is assigned on registration until the user uploads one.
var PlaceholderAvatar = Image{PublicID: "sampleId", URL: "profilePhotoUrl"}

// IsAdmin reports whether u carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary is the reduced view embedded in other documents' responses.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary identifies a user without exposing the full profile.
type UserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// RegisterInput is the payload accepted by registration.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput is the payload accepted by login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput carries the mutable profile fields.
type ProfileInput struct {
	Name  string `json:"name" validate:"required,min=3,max=30"`
	Email string `json:"email" validate:"required,email"`
}

// PasswordInput carries a new password and its confirmation.
type PasswordInput struct {
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword"`
}

// PasswordChangeInput is the payload for changing a known password.
type PasswordChangeInput struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword"`
}

// RoleInput is the admin payload for changing a user's role.
type RoleInput struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}
