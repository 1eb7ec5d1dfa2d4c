package app

import (
	"go-leave/internal/balance"
	"go-leave/internal/leave"
	"go-leave/internal/messaging/kafka"

	"gorm.io/gorm"
)

// Models lists every persisted table.
func Models() []any {
	return []any{
		&leave.LeaveRequest{},
		&leave.LeaveAttachment{},
		&leave.StatusHistory{},
		&balance.LeaveBalance{},
		&kafka.OutboxEvent{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
