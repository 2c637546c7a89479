package policy

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eduflow/eduflow-server-go/pkg/types"
)

// ContentScope narrows course and lesson queries to what the role may see:
// regular users see only rows they own, moderators and admins see all.
// Applying the scope before any permission check is what turns an invisible
// resource into a 404 rather than a 403.
func ContentScope(role types.Role, userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if role == types.RoleAdmin || role == types.RoleModerator {
			return db
		}
		return db.Where("owner_id = ?", userID)
	}
}

// PaymentScope narrows payment queries: regular users see their own
// payments, moderators and admins see all.
func PaymentScope(role types.Role, userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if role == types.RoleAdmin || role == types.RoleModerator {
			return db
		}
		return db.Where("user_id = ?", userID)
	}
}

// SubscriptionScope narrows subscription queries to the requesting user for
// every role. Subscriptions are private.
func SubscriptionScope(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
