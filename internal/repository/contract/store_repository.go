package contract

import (
	"context"

	"pos-billing-be/internal/entity"
	"pos-billing-be/internal/repository/specification"

	"github.com/google/uuid"
)

type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	Update(ctx context.Context, store *entity.Store) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Store, error)

	// Live counts of store-owned rows. These back hard-limit checks, so they
	// must reflect reality rather than a cached counter.
	CountProducts(ctx context.Context, storeId uuid.UUID) (int64, error)
	CountUsers(ctx context.Context, storeId uuid.UUID) (int64, error)
	CountOutlets(ctx context.Context, storeId uuid.UUID) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
}

type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	Update(ctx context.Context, lead *entity.Lead) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Lead, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Lead, error)
}
