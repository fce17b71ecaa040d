package domain

import "time"

// Message Model
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                                                                             // Primary key
	Message   string    `gorm:"type:text;not null" json:"message"`                                                                                // Message body
	Sender    string    `gorm:"size:255;not null" json:"sender"`                                                                                  // Sender label
	ItemID    *int64    `json:"item_id"`                                                                                                          // Optional linked item, NULL when absent
	Amount    *int64    `json:"amount"`                                                                                                           // Optional amount, NULL when absent
	GroupName string    `gorm:"size:255;not null;index:idx_messages_group_created,priority:1" json:"group_name"`                                  // Partition label
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_messages_group_created,priority:2;index:idx_messages_created" json:"created_at"` // Server-assigned creation time
}
