package entity

import (
	"fmt"

	"github.com/google/uuid"
)

type FeatureType string
type FeatureCode string
type BillingCycle string

const (
	FeatureTypeProducts     FeatureType = "products"
	FeatureTypeUsers        FeatureType = "users"
	FeatureTypeOutlets      FeatureType = "outlets"
	FeatureTypeTransactions FeatureType = "transactions"

	FeatureInventoryTracking FeatureCode = "inventory_tracking"
	FeatureMultiOutlet       FeatureCode = "multi_outlet"
	FeatureReportExport      FeatureCode = "report_export"

	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleAnnual  BillingCycle = "annual"
)

// TrackableFeatureTypes is the closed set of feature types that get a usage
// row seeded at subscription creation. Order is stable for deterministic seeding.
var TrackableFeatureTypes = []FeatureType{
	FeatureTypeProducts,
	FeatureTypeUsers,
	FeatureTypeOutlets,
	FeatureTypeTransactions,
}

// ParseFeatureType rejects keys outside the closed set.
func ParseFeatureType(key string) (FeatureType, error) {
	switch ft := FeatureType(key); ft {
	case FeatureTypeProducts, FeatureTypeUsers, FeatureTypeOutlets, FeatureTypeTransactions:
		return ft, nil
	}
	return "", fmt.Errorf("unknown feature type: %s", key)
}

type Plan struct {
	Id           uuid.UUID
	Name         string
	Slug         string
	Description  string
	MonthlyPrice int64 // IDR
	AnnualPrice  int64 // IDR
	Features     []FeatureCode
	// Limits maps a feature type to its cap. nil value = unlimited.
	// A feature type absent from the map is also treated as unlimited.
	Limits    map[FeatureType]*int64
	IsActive  bool
	SortOrder int
}

// HasFeature reports whether the plan grants a feature code. Countable feature
// types are always "available" on any plan; only their limits differ.
func (p *Plan) HasFeature(key string) bool {
	if _, err := ParseFeatureType(key); err == nil {
		return true
	}
	for _, f := range p.Features {
		if string(f) == key {
			return true
		}
	}
	return false
}

// LimitFor returns the numeric limit for a feature type, nil = unlimited.
func (p *Plan) LimitFor(ft FeatureType) *int64 {
	if p.Limits == nil {
		return nil
	}
	return p.Limits[ft]
}

// TransactionQuota is the annual transaction soft cap copied onto usage rows.
func (p *Plan) TransactionQuota() *int64 {
	return p.LimitFor(FeatureTypeTransactions)
}

// PriceFor returns the snapshot amount for a billing cycle.
func (p *Plan) PriceFor(cycle BillingCycle) int64 {
	if cycle == BillingCycleAnnual {
		return p.AnnualPrice
	}
	return p.MonthlyPrice
}
