package models

import "gorm.io/gorm"

// All lists every table owned by the service, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserProfile{},
		&Wallet{},
		&Category{},
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&CheckoutSession{},
		&ServiceProvider{},
		&DataPlan{},
		&CablePackage{},
		&Transaction{},
		&AirtimeTransaction{},
		&DataTransaction{},
		&CableSubscription{},
		&EPIN{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
