package model

import "time"

// NotificationRecord is the durable proof that a reminder was sent for a quiet hour block. At most one
// record may exist for each (block ID, owner ID) pair. The start and end times are a snapshot of the
// block at the time the reminder was sent.
type NotificationRecord struct {
	ID        uint      `gorm:"primaryKey"`
	BlockID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_notification_block_owner,priority:1"`
	OwnerID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_notification_block_owner,priority:2"`
	StartTime time.Time `gorm:"not null"`
	EndTime   time.Time `gorm:"not null"`
	SentAt    time.Time `gorm:"index;not null"`
}

// TableName implements the GORM tabler interface.
func (NotificationRecord) TableName() string { return "notifications" }

// NewNotificationRecord returns the record for a reminder that was sent for block at sentAt.
func NewNotificationRecord(block *QuietHourBlock, sentAt time.Time) *NotificationRecord {
	return &NotificationRecord{
		BlockID:   block.ID,
		OwnerID:   block.OwnerID,
		StartTime: block.StartTime.UTC(),
		EndTime:   block.EndTime.UTC(),
		SentAt:    sentAt.UTC(),
	}
}
