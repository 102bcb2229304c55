package dto

import (
	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2"`
	Company  string `json:"company" validate:"required,min=2"`
	PlanSlug string `json:"plan" validate:"required"`
}

// ProvisionResult is always returned, never thrown: a failed lead reports
// Success=false with a message so bulk jobs continue past it.
type ProvisionResult struct {
	Success            bool       `json:"success"`
	Message            string     `json:"message,omitempty"`
	TemporaryPassword  string     `json:"temporary_password,omitempty"`
	StoreId            *uuid.UUID `json:"store_id,omitempty"`
	UserId             *uuid.UUID `json:"user_id,omitempty"`
	AlreadyProvisioned bool       `json:"already_provisioned,omitempty"`
}
