package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreOwnedBy filters rows belonging to a store
type StoreOwnedBy struct {
	StoreID uuid.UUID
}

func (s StoreOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("store_id = ?", s.StoreID)
}

// BySubscription filters rows belonging to a subscription
type BySubscription struct {
	SubscriptionID uuid.UUID
}

func (s BySubscription) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subscription_id = ?", s.SubscriptionID)
}

// ByStatus filters by status column
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByFeatureType filters usage rows by feature type
type ByFeatureType struct {
	FeatureType string
}

func (s ByFeatureType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("feature_type = ?", s.FeatureType)
}

// DueBefore filters invoices whose due_date has passed
type DueBefore struct {
	Time time.Time
}

func (s DueBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("due_date < ?", s.Time)
}

// EndsBefore filters subscriptions whose period ends before a point in time
type EndsBefore struct {
	Time time.Time
}

func (s EndsBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ends_at < ?", s.Time)
}

// CreatedAfter filters rows created after a point in time
type CreatedAfter struct {
	Time time.Time
}

func (s CreatedAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at > ?", s.Time)
}

// CreatedBefore filters rows created before a point in time
type CreatedBefore struct {
	Time time.Time
}

func (s CreatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at < ?", s.Time)
}

// ForUpdate takes a row lock. Only meaningful inside a transaction; the
// increment path uses it so concurrent completions never lose updates.
type ForUpdate struct{}

func (s ForUpdate) Apply(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
