package contract

import (
	"context"

	"pos-billing-be/internal/entity"
	"pos-billing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.Subscription) error
	Update(ctx context.Context, sub *entity.Subscription) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)
}

type UsageRepository interface {
	Create(ctx context.Context, usage *entity.SubscriptionUsage) error
	Update(ctx context.Context, usage *entity.SubscriptionUsage) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionUsage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionUsage, error)

	// AddUsage applies delta with a single arithmetic UPDATE so concurrent
	// increments on the same row never lose updates. Returns the row as
	// persisted after the update.
	AddUsage(ctx context.Context, usageId uuid.UUID, delta int64) (*entity.SubscriptionUsage, error)
}
