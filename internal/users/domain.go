package users

import "time"

// DefaultStatus is applied when status_keanggotaan is omitted.
const DefaultStatus = "standard"

// User represents a member account. PasswordHash never leaves the process.
type User struct {
	ID               int64     `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	PasswordHash     string    `db:"password" json:"-"`
	Age              int       `db:"umur" json:"umur"`
	MembershipStatus string    `db:"status_keanggotaan" json:"status_keanggotaan"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Name                 string  `json:"name" validate:"required,max=100"`
	Email                string  `json:"email" validate:"required,email,max=100"`
	Password             string  `json:"password" validate:"required,min=6,bcryptlen,eqfield=PasswordConfirmation"`
	PasswordConfirmation string  `json:"password_confirmation"`
	Age                  *int    `json:"umur" validate:"required,min=1"`
	MembershipStatus     *string `json:"status_keanggotaan" validate:"omitempty,max=20"`
}

// CreateInput is the admin create payload. No confirmation is required.
type CreateInput struct {
	Name             string  `json:"name" validate:"required,max=100"`
	Email            string  `json:"email" validate:"required,email,max=100"`
	Password         string  `json:"password" validate:"required,min=6,bcryptlen"`
	Age              *int    `json:"umur" validate:"required,min=1"`
	MembershipStatus *string `json:"status_keanggotaan" validate:"omitempty,max=20"`
}

// UpdateInput is the admin update payload. A nil status leaves the stored
// status unchanged.
type UpdateInput struct {
	Name             string  `json:"name" validate:"required,max=100"`
	Email            string  `json:"email" validate:"required,email,max=100"`
	Age              *int    `json:"umur" validate:"required,min=1"`
	MembershipStatus *string `json:"status_keanggotaan" validate:"omitempty,max=20"`
}
