package auth

import "github.com/dmitrijs2005/hicomm/internal/server/models"

// CanDelete reports whether actor may delete a resource owned by ownerID.
// A nil ownerID means the owner has withdrawn; only administrators may act then.
func CanDelete(actor *models.Identity, ownerID *int64) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin {
		return true
	}
	return ownerID != nil && *ownerID == actor.ID
}

// CanPinNotice reports whether actor may mark posts as notices.
func CanPinNotice(actor *models.Identity) bool {
	return actor != nil && actor.IsAdmin
}
