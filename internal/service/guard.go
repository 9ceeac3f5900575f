package service

import "task_manager/internal/domain"

// AssertCanMutate allows the resource owner or an admin through and rejects
// everyone else with a ForbiddenError naming the action and resource.
func AssertCanMutate(ownerID, requesterID string, requesterIsAdmin bool, action domain.Action, resource string) error {
	if requesterIsAdmin || (ownerID != "" && ownerID == requesterID) {
		return nil
	}
	return &domain.ForbiddenError{Action: action, Resource: resource}
}
