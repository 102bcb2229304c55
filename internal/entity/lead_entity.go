package entity

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusConverted LeadStatus = "converted"
)

// Lead is a marketing signup waiting to be provisioned into a store, an owner
// account and a trial subscription. Provisioned* fields make re-entry
// inspectable: a converted lead records exactly what it produced.
type Lead struct {
	Id                 uuid.UUID
	Email              string
	Name               string
	Company            string
	PlanSlug           string
	Status             LeadStatus
	ProvisionedAt      *time.Time
	ProvisionedStoreId *uuid.UUID
	ProvisionedUserId  *uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
