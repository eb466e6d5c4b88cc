package services

import (
	"strings"

	"github.com/google/uuid"
)

// OwnsStoragePath reports whether storagePath belongs to ownerID. Staged
// uploads live under "{owner_id}/{random_id}/{filename}", so ownership is
// exactly a first-path-segment match. Any path failing this check must never
// reach the blob store or the speech service.
func OwnsStoragePath(storagePath string, ownerID uuid.UUID) bool {
	if ownerID == uuid.Nil {
		return false
	}
	if storagePath == "" {
		return false
	}
	return strings.HasPrefix(storagePath, ownerID.String()+"/")
}
