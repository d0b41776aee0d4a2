package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

const (
	MembershipRoleAdmin     = "admin"
	MembershipRoleMember    = "member"
	MembershipRoleBilling   = "billing"
	MembershipRoleDeveloper = "developer"
	MembershipRoleViewer    = "viewer"
)

// OrganizationMembership links a User to an Organization. Both references are
// required and non-owning.
type OrganizationMembership struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	ClerkMembershipID string         `gorm:"type:varchar(191);not null;uniqueIndex" json:"clerk_membership_id" validate:"required,max=191"`
	OrganizationID    uint           `gorm:"not null;index" json:"organization_id" validate:"required"`
	UserID            uint           `gorm:"not null;index" json:"user_id" validate:"required"`
	Role              string         `gorm:"type:varchar(20);not null;default:'member'" json:"role" validate:"oneof=admin member billing developer viewer"`
	PublicMetadata    datatypes.JSON `json:"public_metadata,omitempty"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *OrganizationMembership) Validate() error {
	v := validator.New()

	return v.Struct(m)
}

// NormalizeMembershipRole maps provider role keys ("org:admin") onto the local
// role set. Empty and unknown roles become member.
func NormalizeMembershipRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	r = strings.TrimPrefix(r, "org:")
	switch r {
	case MembershipRoleAdmin, MembershipRoleMember, MembershipRoleBilling, MembershipRoleDeveloper, MembershipRoleViewer:
		return r
	default:
		return MembershipRoleMember
	}
}
