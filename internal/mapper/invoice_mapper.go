package mapper

import (
	"encoding/json"

	"pos-billing-be/internal/entity"
	"pos-billing-be/internal/model"

	"gorm.io/datatypes"
)

type InvoiceMapper struct{}

func NewInvoiceMapper() *InvoiceMapper {
	return &InvoiceMapper{}
}

func (m *InvoiceMapper) ToEntity(i *model.Invoice) *entity.Invoice {
	if i == nil {
		return nil
	}

	var items []entity.LineItem
	if len(i.LineItems) > 0 {
		_ = json.Unmarshal(i.LineItems, &items)
	}

	var meta entity.InvoiceMetadata
	if len(i.Metadata) > 0 {
		_ = json.Unmarshal(i.Metadata, &meta)
	}

	return &entity.Invoice{
		Id:             i.Id,
		SubscriptionId: i.SubscriptionId,
		InvoiceNumber:  i.InvoiceNumber,
		Amount:         i.Amount,
		TaxAmount:      i.TaxAmount,
		TotalAmount:    i.TotalAmount,
		Status:         entity.InvoiceStatus(i.Status),
		DueDate:        i.DueDate,
		PaidAt:         i.PaidAt,
		LineItems:      items,
		Metadata:       meta,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

func (m *InvoiceMapper) ToModel(i *entity.Invoice) *model.Invoice {
	if i == nil {
		return nil
	}

	items, _ := json.Marshal(i.LineItems)
	meta, _ := json.Marshal(i.Metadata)

	return &model.Invoice{
		Id:             i.Id,
		SubscriptionId: i.SubscriptionId,
		InvoiceNumber:  i.InvoiceNumber,
		Amount:         i.Amount,
		TaxAmount:      i.TaxAmount,
		TotalAmount:    i.TotalAmount,
		Status:         string(i.Status),
		DueDate:        i.DueDate,
		PaidAt:         i.PaidAt,
		LineItems:      datatypes.JSON(items),
		Metadata:       datatypes.JSON(meta),
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

func (m *InvoiceMapper) PaymentToEntity(p *model.Payment) *entity.Payment {
	if p == nil {
		return nil
	}
	return &entity.Payment{
		Id:                   p.Id,
		InvoiceId:            p.InvoiceId,
		Gateway:              p.Gateway,
		GatewayTransactionId: p.GatewayTransactionId,
		Status:               entity.PaymentStatus(p.Status),
		Amount:               p.Amount,
		PaymentMethod:        p.PaymentMethod,
		ProcessedAt:          p.ProcessedAt,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func (m *InvoiceMapper) PaymentToModel(p *entity.Payment) *model.Payment {
	if p == nil {
		return nil
	}
	return &model.Payment{
		Id:                   p.Id,
		InvoiceId:            p.InvoiceId,
		Gateway:              p.Gateway,
		GatewayTransactionId: p.GatewayTransactionId,
		Status:               string(p.Status),
		Amount:               p.Amount,
		PaymentMethod:        p.PaymentMethod,
		ProcessedAt:          p.ProcessedAt,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
