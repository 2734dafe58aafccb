package models

import "gorm.io/gorm"

// MigrateTable runs AutoMigrate for every table, parents before children so
// the cascade FKs resolve.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Project{},
		&Stage{},
		&Activity{},
		&DailyLog{},
		&Material{},
		&MaterialPurchase{},
		&WarehouseExit{},
		&WarehouseWaste{},
	)
}
