package model

// Product é o item de cardápio consultado no snapshot de preço.
// O CRUD de cardápio fica fora deste serviço; aqui só leitura.
type Product struct {
	DTO
	Name      string  `gorm:"not null" json:"name"`
	Slug      string  `gorm:"uniqueIndex;size:120" json:"slug"`
	Price     float64 `gorm:"not null" json:"price"`
	Category  string  `json:"category"`
	Available bool    `gorm:"default:true" json:"available"`
}

// Addon é um complemento opcional (ex: bacon extra, borda recheada).
type Addon struct {
	DTO
	Name      string  `gorm:"not null" json:"name"`
	Price     float64 `gorm:"not null" json:"price"`
	Available bool    `gorm:"default:true" json:"available"`
}
