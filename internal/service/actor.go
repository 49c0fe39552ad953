package service

import (
	"github.com/embire2/DayResellers-sub000/internal/models"
	"github.com/embire2/DayResellers-sub000/internal/utils"
)

// Actor is the authenticated user a service call is made on behalf of.
type Actor struct {
	UserID int
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// requireAdmin fails with ErrForbidden unless the actor is an admin.
func requireAdmin(a Actor, action string) error {
	if !a.IsAdmin() {
		return utils.ForbiddenError("admin role required to " + action)
	}
	return nil
}

// canAccess reports whether the actor may see a resource owned by ownerID.
func (a Actor) canAccess(ownerID int) bool {
	return a.IsAdmin() || a.UserID == ownerID
}
