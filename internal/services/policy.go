package services

import "github.com/adanyl0v/go-task-manager/internal/models"

// CanModify reports whether the actor may update or delete the user
// identified by targetUserID: users may modify themselves, admins anyone.
func CanModify(actor models.Actor, targetUserID string) bool {
	if actor.IsAdmin {
		return true
	}
	return actor.ID != "" && actor.ID == targetUserID
}
