package domain

import (
	"time"

	sharedDomain "github.com/avelstrom/availsync/internal/shared/domain"
	"github.com/google/uuid"
)

// Resource is a finite-capacity entity (an instructor, a room) attachable
// to one or more products. Products sharing a resource are siblings; a
// booking on one must block the same span on the others.
type Resource struct {
	sharedDomain.BaseEntity
	name string
}

// NewResource creates a resource.
func NewResource(name string) *Resource {
	return &Resource{
		BaseEntity: sharedDomain.NewBaseEntity(),
		name:       name,
	}
}

func (r *Resource) Name() string { return r.name }

// RehydrateResource recreates a resource from persisted state.
func RehydrateResource(id uuid.UUID, name string, createdAt, updatedAt time.Time) *Resource {
	return &Resource{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		name:       name,
	}
}
