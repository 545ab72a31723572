package service

import (
	"fmt"

	"stakehouse/models"
)

// ownerAuthorizer authorizes the single stored owner address. Swap the
// Authorizer for a stricter policy without changing any service.
type ownerAuthorizer struct{}

// NewOwnerAuthorizer creates the default owner-only authorizer.
func NewOwnerAuthorizer() Authorizer {
	return ownerAuthorizer{}
}

func (ownerAuthorizer) Authorize(actor string, settings *models.PlatformSettings) error {
	if settings == nil || actor == "" || actor != settings.Owner {
		return fmt.Errorf("address %q: %w", actor, models.ErrUnauthorized)
	}
	return nil
}
