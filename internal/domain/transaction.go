package domain

import "time"

// Transaction Model
type Transaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                                                                                     // Primary key
	ItemID    int64     `gorm:"not null;index:idx_transactions_item_id" json:"item_id"`                                                                   // Linked item identifier
	Item      string    `gorm:"size:255;not null" json:"item"`                                                                                            // Item label
	User      string    `gorm:"size:255;not null;index:idx_transactions_user" json:"user"`                                                                // Acting user label
	Amount    int64     `gorm:"not null" json:"amount"`                                                                                                   // Signed amount, meaning left to the caller
	GroupName string    `gorm:"size:255;not null;index:idx_transactions_group_created,priority:1" json:"group_name"`                                      // Partition label
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:idx_transactions_group_created,priority:2;index:idx_transactions_created" json:"created_at"` // Server-assigned creation time
}
