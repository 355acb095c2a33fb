package model

type Customer struct {
	DTO
	Name    string `json:"name"`
	Phone   string `gorm:"uniqueIndex;size:20" json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}
