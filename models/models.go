package models

import "gorm.io/gorm"

// All lists every model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{}, &Profile{}, &Follow{}, &Post{}, &Comment{}, &Like{}, &AuthToken{}, &ScheduledPostJob{},
	}
}

// Migrate runs AutoMigrate for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
