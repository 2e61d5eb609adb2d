package models

import (
	"log"

	"bitbucket.org/mmdatafocus/apvalidation_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Invoice{}, &PurchaseOrder{}, &GoodsReceipt{}, &Vendor{}, &Entitlement{},
		&ValidationRun{}, &ValidationException{}, &ValidationReport{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
