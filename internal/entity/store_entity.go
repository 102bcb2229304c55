package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleOwner UserRole = "owner"
	UserRoleStaff UserRole = "staff"
)

// Store is the tenant. Products, staff users and outlets are owned rows whose
// live counts back the hard-limit checks.
type Store struct {
	Id          uuid.UUID
	Name        string
	Slug        string
	OwnerUserId *uuid.UUID
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type User struct {
	Id           uuid.UUID
	StoreId      uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Product struct {
	Id        uuid.UUID
	StoreId   uuid.UUID
	Name      string
	Sku       string
	Price     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Outlet struct {
	Id        uuid.UUID
	StoreId   uuid.UUID
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
