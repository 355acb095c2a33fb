package model

import "time"

// OrderSequence é o contador durável de números de pedido. Cada INSERT
// aloca um número via auto-increment, nunca "max+1", que duplica sob
// concorrência. Rollback do pedido deixa buraco na numeração, nunca repetição.
type OrderSequence struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
