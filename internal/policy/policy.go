// Package policy centralises authorization decisions. Handlers first narrow
// queries with the visibility scopes in scope.go, then call Evaluate on the
// fetched row. Keeping both steps here means the decision table lives in one
// place instead of being re-derived inside every handler.
package policy

import (
	"github.com/google/uuid"

	"github.com/eduflow/eduflow-server-go/pkg/types"
)

// Action enumerates the operations the decision table covers.
type Action string

const (
	ActionCreate     Action = "create"
	ActionReadList   Action = "read_list"
	ActionReadDetail Action = "read_detail"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
)

// Decision is the outcome of a policy evaluation. Denials distinguish
// between hiding the resource entirely and admitting it exists.
type Decision int

const (
	Allow Decision = iota
	DenyForbidden
	DenyNotFound
)

// Allowed reports whether the decision permits the action.
func (d Decision) Allowed() bool { return d == Allow }

// Resolve maps user flags to a role. Staff or superuser wins over the
// moderator flag; a user carrying several flags gets the most powerful role.
func Resolve(isStaff, isSuperuser, isModerator bool) types.Role {
	switch {
	case isStaff || isSuperuser:
		return types.RoleAdmin
	case isModerator:
		return types.RoleModerator
	default:
		return types.RoleRegular
	}
}

// IsOwner reports whether userID owns a record with the given owner column.
// Ownerless records (deleted owner) belong to nobody.
func IsOwner(ownerID *uuid.UUID, userID uuid.UUID) bool {
	return ownerID != nil && *ownerID == userID
}

// EvaluateContent applies the decision table for courses and lessons.
//
//	          create  read_list   read_detail  update        delete
//	regular   allow   own only    owner only   owner only    owner only
//	moderator deny    all         allow        allow         deny
//	admin     allow   all         allow        allow         allow
//
// For read_detail, update and delete the caller must have fetched the row
// through ContentScope first: a regular user can only ever hold a row they
// own, so a non-owner regular user never reaches this function and gets the
// scope's not-found instead.
func EvaluateContent(role types.Role, action Action, isOwner bool) Decision {
	switch role {
	case types.RoleAdmin:
		return Allow
	case types.RoleModerator:
		switch action {
		case ActionCreate, ActionDelete:
			return DenyForbidden
		default:
			return Allow
		}
	default:
		switch action {
		case ActionCreate, ActionReadList:
			return Allow
		default:
			if isOwner {
				return Allow
			}
			// Unreachable when the row came through ContentScope, but kept
			// so Evaluate stands on its own.
			return DenyNotFound
		}
	}
}

// EvaluatePayment applies the decision table for payments: owners, moderators
// and admins may read; only admins may create, update or delete.
func EvaluatePayment(role types.Role, action Action, isOwner bool) Decision {
	switch action {
	case ActionReadList:
		return Allow
	case ActionReadDetail:
		if role == types.RoleAdmin || role == types.RoleModerator || isOwner {
			return Allow
		}
		return DenyNotFound
	case ActionCreate:
		if role == types.RoleAdmin {
			return Allow
		}
		return DenyForbidden
	default:
		if role == types.RoleAdmin {
			return Allow
		}
		if role == types.RoleRegular && !isOwner {
			// Hidden by PaymentScope; mirror the scope's not-found here.
			return DenyNotFound
		}
		return DenyForbidden
	}
}

// EvaluateSubscription applies the subscription rules: fully self-service.
// Every authenticated user may subscribe, unsubscribe and list their own
// subscriptions; nobody operates on another user's subscription.
func EvaluateSubscription(action Action, isOwner bool) Decision {
	switch action {
	case ActionCreate, ActionReadList:
		return Allow
	default:
		if isOwner {
			return Allow
		}
		return DenyNotFound
	}
}
