package model

// DiningTable representa uma mesa física. O Token vai no QR code impresso
// na mesa e autoriza o envio de pedidos pelo canal MESA.
type DiningTable struct {
	DTO
	Number int    `gorm:"uniqueIndex;not null" json:"number"`
	Token  string `gorm:"uniqueIndex;size:64" json:"-"`
	Active bool   `gorm:"default:true" json:"active"`
}
