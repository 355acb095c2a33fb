package model

type Account struct {
	DTO
	Username string `gorm:"unique;not null" json:"username"`
	Password string `json:"-"`
	Name     string `json:"name"`
	Role     string `json:"role"` // ADMIN, MANAGER, STAFF
	Active   bool   `gorm:"default:true" json:"active"`
}
