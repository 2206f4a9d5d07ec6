package domain

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Tenant{},
		&User{},
		&Client{},
		&Opportunity{},
		&FxRate{},
		&BoqItem{},
		&PricingPack{},
		&Approval{},
		&Notification{},
	}
}
