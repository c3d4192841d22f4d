package model

import "gorm.io/gorm"

// allModels lists every model to be auto-migrated. Order matters for
// foreign-key creation: referenced tables first.
var allModels = []interface{}{
	&User{},
	&FriendRequest{},
	&Friendship{},
	&BlockedUser{},
	&Project{},
	&ProjectInvitation{},
	&ProjectMember{},
	&Chat{},
	&ChatMember{},
	&ChatMessage{},
	&Post{},
	&Comment{},
	&PostLike{},
	&ProjectView{},
	&Notification{},
	&AuditLog{},
}

// AutoMigrate creates or updates all tables in the given database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}
