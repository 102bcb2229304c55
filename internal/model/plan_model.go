package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Plan struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string         `gorm:"type:varchar(255);not null"`
	Slug         string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description  string         `gorm:"type:text"`
	MonthlyPrice int64          `gorm:"not null"`
	AnnualPrice  int64          `gorm:"not null"`
	Features     datatypes.JSON `gorm:"type:jsonb;default:'[]'"`
	Limits       datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	IsActive     bool           `gorm:"default:true"`
	SortOrder    int            `gorm:"default:0"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

func (Plan) TableName() string {
	return "plans"
}
