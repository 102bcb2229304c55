package main

import (
	"log"
	"os"

	"pos-billing-be/internal/model"
	"pos-billing-be/pkg/database"

	"github.com/joho/godotenv"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seeds the plan catalog. Prices are IDR. Limits use null for unlimited;
// transactions is the annual soft-cap quota.
func plans() []model.Plan {
	return []model.Plan{
		{
			Name:         "Basic",
			Slug:         "basic",
			Description:  "Single outlet essentials for small warungs and kiosks.",
			MonthlyPrice: 99000,
			AnnualPrice:  990000,
			Features:     datatypes.JSON([]byte(`["inventory_tracking"]`)),
			Limits:       datatypes.JSON([]byte(`{"products":20,"users":2,"outlets":1,"transactions":12000}`)),
			IsActive:     true,
			SortOrder:    1,
		},
		{
			Name:         "Growth",
			Slug:         "growth",
			Description:  "Multi-outlet operation with reporting.",
			MonthlyPrice: 299000,
			AnnualPrice:  2990000,
			Features:     datatypes.JSON([]byte(`["inventory_tracking","multi_outlet","report_export"]`)),
			Limits:       datatypes.JSON([]byte(`{"products":500,"users":10,"outlets":5,"transactions":120000}`)),
			IsActive:     true,
			SortOrder:    2,
		},
		{
			Name:         "Enterprise",
			Slug:         "enterprise",
			Description:  "Unlimited scale for chains.",
			MonthlyPrice: 999000,
			AnnualPrice:  9990000,
			Features:     datatypes.JSON([]byte(`["inventory_tracking","multi_outlet","report_export"]`)),
			Limits:       datatypes.JSON([]byte(`{"products":null,"users":null,"outlets":null,"transactions":null}`)),
			IsActive:     true,
			SortOrder:    3,
		},
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	seedPlans(db)
}

func seedPlans(db *gorm.DB) {
	for _, plan := range plans() {
		// Upsert on slug keeps re-runs idempotent without clobbering ids
		// that live subscriptions already reference.
		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "monthly_price", "annual_price",
				"features", "limits", "is_active", "sort_order", "updated_at",
			}),
		}).Create(&plan).Error
		if err != nil {
			log.Fatalf("Error: Failed to seed plan %s: %v", plan.Slug, err)
		}
		log.Printf("Seeded plan: %s", plan.Slug)
	}

	log.Println("✅ Plan catalog seeded")
}
