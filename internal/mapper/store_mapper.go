package mapper

import (
	"pos-billing-be/internal/entity"
	"pos-billing-be/internal/model"
)

type StoreMapper struct{}

func NewStoreMapper() *StoreMapper {
	return &StoreMapper{}
}

func (m *StoreMapper) ToEntity(s *model.Store) *entity.Store {
	if s == nil {
		return nil
	}
	return &entity.Store{
		Id:          s.Id,
		Name:        s.Name,
		Slug:        s.Slug,
		OwnerUserId: s.OwnerUserId,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (m *StoreMapper) ToModel(s *entity.Store) *model.Store {
	if s == nil {
		return nil
	}
	return &model.Store{
		Id:          s.Id,
		Name:        s.Name,
		Slug:        s.Slug,
		OwnerUserId: s.OwnerUserId,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (m *StoreMapper) UserToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:           u.Id,
		StoreId:      u.StoreId,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         entity.UserRole(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *StoreMapper) UserToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:           u.Id,
		StoreId:      u.StoreId,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *StoreMapper) LeadToEntity(l *model.Lead) *entity.Lead {
	if l == nil {
		return nil
	}
	return &entity.Lead{
		Id:                 l.Id,
		Email:              l.Email,
		Name:               l.Name,
		Company:            l.Company,
		PlanSlug:           l.PlanSlug,
		Status:             entity.LeadStatus(l.Status),
		ProvisionedAt:      l.ProvisionedAt,
		ProvisionedStoreId: l.ProvisionedStoreId,
		ProvisionedUserId:  l.ProvisionedUserId,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func (m *StoreMapper) LeadToModel(l *entity.Lead) *model.Lead {
	if l == nil {
		return nil
	}
	return &model.Lead{
		Id:                 l.Id,
		Email:              l.Email,
		Name:               l.Name,
		Company:            l.Company,
		PlanSlug:           l.PlanSlug,
		Status:             string(l.Status),
		ProvisionedAt:      l.ProvisionedAt,
		ProvisionedStoreId: l.ProvisionedStoreId,
		ProvisionedUserId:  l.ProvisionedUserId,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}
