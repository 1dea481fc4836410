package model

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents a storefront account.
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Phone           string     `json:"phone,omitempty"`
	IsPhoneVerified bool       `json:"isPhoneVerified"`
	IsVerified      bool       `json:"isVerified"`
	RefreshTokens   []string   `json:"-"`
	Wishlist        []string   `json:"wishlist"`
	ResetToken      string     `json:"-"`
	ResetExpires    *time.Time `json:"-"`
	OTPCode         string     `json:"-"`
	OTPExpires      *time.Time `json:"-"`
	Addresses       []Address  `json:"addresses,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// SetPassword stores the bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash. Users
// without a password (federated logins) never match.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// HasWishlistItem reports whether productID is on the wishlist.
func (u *User) HasWishlistItem(productID string) bool {
	for _, id := range u.Wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

// Address is a delivery address owned by one user.
type Address struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone"`
	Pincode   string    `json:"pincode"`
	State     string    `json:"state"`
	District  string    `json:"district"`
	City      string    `json:"city"`
	Address1  string    `json:"address1"`
	Landmark  string    `json:"landmark,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegisterRequest represents the payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"omitempty,numeric,min=10,max=15"`
}

// LoginRequest represents email and password credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserPatch lists the profile fields an update changes.
type UserPatch struct {
	Name  Field[string] `json:"name" validate:"omitempty,min=2,max=100"`
	Phone Field[string] `json:"phone" validate:"omitempty,numeric,min=10,max=15"`
}

// AddressRequest represents the payload for adding an address.
type AddressRequest struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"required,numeric,min=10,max=15"`
	Pincode  string `json:"pincode" validate:"required,numeric,len=6"`
	State    string `json:"state" validate:"required,max=100"`
	District string `json:"district" validate:"max=100"`
	City     string `json:"city" validate:"required,max=100"`
	Address1 string `json:"address1" validate:"required,max=300"`
	Landmark string `json:"landmark" validate:"max=200"`
}

// VerifyOTPRequest carries a one-time code.
type VerifyOTPRequest struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ForgotPasswordRequest asks for a password reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RefreshTokenRequest carries a refresh token issued by the auth proxy.
type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required,max=512"`
}
