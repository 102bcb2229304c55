package mapper

import (
	"encoding/json"

	"pos-billing-be/internal/entity"
	"pos-billing-be/internal/model"

	"gorm.io/datatypes"
)

type PlanMapper struct{}

func NewPlanMapper() *PlanMapper {
	return &PlanMapper{}
}

func (m *PlanMapper) ToEntity(p *model.Plan) *entity.Plan {
	if p == nil {
		return nil
	}

	var features []entity.FeatureCode
	if len(p.Features) > 0 {
		_ = json.Unmarshal(p.Features, &features)
	}

	var limits map[entity.FeatureType]*int64
	if len(p.Limits) > 0 {
		_ = json.Unmarshal(p.Limits, &limits)
	}

	return &entity.Plan{
		Id:           p.Id,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		MonthlyPrice: p.MonthlyPrice,
		AnnualPrice:  p.AnnualPrice,
		Features:     features,
		Limits:       limits,
		IsActive:     p.IsActive,
		SortOrder:    p.SortOrder,
	}
}

func (m *PlanMapper) ToModel(p *entity.Plan) *model.Plan {
	if p == nil {
		return nil
	}

	features, _ := json.Marshal(p.Features)
	limits, _ := json.Marshal(p.Limits)

	return &model.Plan{
		Id:           p.Id,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		MonthlyPrice: p.MonthlyPrice,
		AnnualPrice:  p.AnnualPrice,
		Features:     datatypes.JSON(features),
		Limits:       datatypes.JSON(limits),
		IsActive:     p.IsActive,
		SortOrder:    p.SortOrder,
	}
}
