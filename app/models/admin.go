package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// Admin is the administrative principal allowed through the access policy.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(200);not null;uniqueIndex" json:"email" validate:"required,email"`
	Name      string    `gorm:"type:varchar(150);default:''" json:"name" validate:"max=150"`
	Password  string    `gorm:"type:varchar(100);not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Admin) Validate() error {
	v := validator.New()

	return v.Struct(a)
}

// NewAdmin builds an admin with a hashed password.
func NewAdmin(email, name, password string) (*Admin, error) {
	a := &Admin{
		Email: strings.ToLower(strings.TrimSpace(email)),
		Name:  strings.TrimSpace(name),
	}
	if err := a.SetPassword(password); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (a *Admin) SetPassword(password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	a.Password = hash
	return nil
}

func (a *Admin) CheckPassword(password string) bool {
	return CheckPasswordHash(password, a.Password)
}
