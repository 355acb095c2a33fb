package database

import (
	"log"
	"restaurant_manager/constants"
	"restaurant_manager/model"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func SeedData(db *gorm.DB) {
	bytes, err := bcrypt.GenerateFromPassword([]byte("123456rm"), 10)
	HashPassword := string(bytes)
	if err != nil {
		HashPassword = "123456rm"
	}
	accounts := []model.Account{
		{Username: "Administration", Password: HashPassword, Name: "Administrador", Active: true, Role: constants.ROLE_ADMIN},
		{Username: "caixa01", Password: HashPassword, Name: "Caixa 01", Active: true, Role: constants.ROLE_STAFF},
	}

	for _, account := range accounts {
		if err := db.Where(model.Account{Username: account.Username}).FirstOrCreate(&account).Error; err != nil {
			log.Println("failed to seed data for account:", account.Username, "error:", err)
		}
	}

	products := []model.Product{
		{Name: "X-Burguer", Price: 18.00, Category: "LANCHES", Available: true},
		{Name: "X-Salada", Price: 20.00, Category: "LANCHES", Available: true},
		{Name: "Pizza Calabresa", Price: 45.00, Category: "PIZZAS", Available: true},
		{Name: "Coca-Cola Lata", Price: 6.00, Category: "BEBIDAS", Available: true},
		{Name: "Suco de Laranja", Price: 8.00, Category: "BEBIDAS", Available: true},
	}
	for _, product := range products {
		product.Slug = slug.Make(product.Name)
		if err := db.Where(model.Product{Slug: product.Slug}).FirstOrCreate(&product).Error; err != nil {
			log.Println("failed to seed product:", product.Name, "error:", err)
		}
	}

	addons := []model.Addon{
		{Name: "Bacon Extra", Price: 4.00, Available: true},
		{Name: "Queijo Extra", Price: 3.00, Available: true},
		{Name: "Borda Recheada", Price: 8.00, Available: true},
	}
	for _, addon := range addons {
		if err := db.Where(model.Addon{Name: addon.Name}).FirstOrCreate(&addon).Error; err != nil {
			log.Println("failed to seed addon:", addon.Name, "error:", err)
		}
	}

	// Mesas com token de QR code
	for number := 1; number <= 10; number++ {
		table := model.DiningTable{Number: number, Token: uuid.New().String(), Active: true}
		if err := db.Where(model.DiningTable{Number: number}).FirstOrCreate(&table).Error; err != nil {
			log.Println("failed to seed table:", number, "error:", err)
		}
	}
}
