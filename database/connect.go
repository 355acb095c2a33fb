package database

import (
	"fmt"
	"restaurant_manager/config"
	"restaurant_manager/model"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	p := config.ConfigOr("DB_PORT", "5432")
	port, err := strconv.ParseUint(p, 10, 32)

	if err != nil {
		panic("failed to parse database port")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		config.Config("DB_HOST"), port, config.Config("DB_USER"), config.Config("DB_PASSWORD"), config.Config("DB_NAME"))
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true, // precisa para detectar gorm.ErrDuplicatedKey na idempotência
	})

	if err != nil {
		panic("failed to connect database")
	}

	fmt.Println("Connection Opened to Database")
	DB.AutoMigrate(
		&model.Account{},
		&model.Customer{},
		&model.Product{},
		&model.Addon{},
		&model.DiningTable{},
		&model.OrderSequence{},
		&model.IdempotencyRecord{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderItemAddon{},
		&model.OrderPayment{},
		&model.PendingOrder{},
		&model.PendingOrderItem{},
		&model.PendingOrderItemAddon{},
		&model.PendingPayment{},
		&model.CashSession{},
		&model.CashMovement{},
	)
	fmt.Println("Database Migrated")

	// dados iniciais
	SeedData(DB)
}
