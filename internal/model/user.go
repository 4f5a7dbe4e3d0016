package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an account in the system
type User struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	Name         string     `gorm:"type:varchar(255)" json:"name"`
	ProfilePic   string     `gorm:"type:varchar(512)" json:"profilePic,omitempty"`
	Country      string     `gorm:"type:varchar(100)" json:"country,omitempty"`
	Roles        RoleSet    `gorm:"type:text;not null;default:'[\"user\"]'" json:"roles"`
	TokenVersion string     `gorm:"type:varchar(255);default:''" json:"-"` // Rotated on login, logout and password reset
	LastSeenAt   *time.Time `json:"lastSeenAt,omitempty"`

	// Password recovery
	ResetTokenHash  string     `gorm:"type:varchar(128);index" json:"-"`
	ResetTokenUntil *time.Time `json:"-"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// ClearResetToken forgets any pending password recovery.
func (u *User) ClearResetToken() {
	u.ResetTokenHash = ""
	u.ResetTokenUntil = nil
}

// UserResponse is used for API responses (without sensitive data).
// Roles is nil when the viewer may not read the roles field.
type UserResponse struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	ProfilePic string     `json:"profilePic,omitempty"`
	Country    string     `json:"country,omitempty"`
	Roles      []Role     `json:"roles,omitempty"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// ToResponse converts User to UserResponse. withRoles controls whether the
// roles field is exposed.
func (u *User) ToResponse(withRoles bool) UserResponse {
	resp := UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		ProfilePic: u.ProfilePic,
		Country:    u.Country,
		LastSeenAt: u.LastSeenAt,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	if withRoles {
		resp.Roles = u.Roles.Slice()
	}
	return resp
}
