package handler

import (
	"restaurant_manager/constants"
	"restaurant_manager/database"
	"restaurant_manager/model"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Banco em memória com uma conexão só, suficiente para os fluxos de fila
// e notificação que não dependem de FOR UPDATE.
func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("erro ao abrir banco de teste: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("erro ao obter conexão: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.PendingOrder{},
		&model.PendingOrderItem{},
		&model.PendingOrderItemAddon{},
		&model.PendingPayment{},
		&model.Order{},
	); err != nil {
		t.Fatalf("erro ao migrar banco de teste: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

func seedPending(t *testing.T, db *gorm.DB, convertedOrderId *uint) model.PendingOrder {
	t.Helper()
	pending := model.PendingOrder{
		Channel:      constants.CHANNEL_TABLE,
		CustomerName: "Cliente",
		Total:        25,
		Items: []model.PendingOrderItem{{
			ProductID:   1,
			ProductName: "X-Burguer",
			UnitPrice:   10,
			Quantity:    2,
			Addons: []model.PendingOrderItemAddon{{
				AddonID:   1,
				AddonName: "Bacon",
				UnitPrice: 2.5,
				Quantity:  1,
			}},
		}},
		Payments:         []model.PendingPayment{{Method: constants.PAYMENT_PIX, Amount: 25}},
		ConvertedOrderID: convertedOrderId,
	}
	if err := db.Create(&pending).Error; err != nil {
		t.Fatalf("erro ao preparar entrada da fila: %v", err)
	}
	return pending
}

// Uma entrada aceita entre a seleção de expirados e a remoção não pode ser
// apagada: a reconferência dentro da transação a deixa de fora.
func TestDeletePendingTreeKeepsConvertedRows(t *testing.T) {
	db := newHandlerTestDB(t)

	orderId := uint(99)
	accepted := seedPending(t, db, &orderId)
	expired := seedPending(t, db, nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		return deletePendingTree(tx, []uint{accepted.ID, expired.ID})
	})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	var kept model.PendingOrder
	if err := db.Preload("Items").Preload("Items.Addons").Preload("Payments").
		First(&kept, accepted.ID).Error; err != nil {
		t.Fatalf("entrada aceita deveria ficar para auditoria: %v", err)
	}
	if len(kept.Items) != 1 || len(kept.Items[0].Addons) != 1 || len(kept.Payments) != 1 {
		t.Errorf("auditoria da entrada aceita perdeu filhos: %d itens, %d pagamentos",
			len(kept.Items), len(kept.Payments))
	}

	var count int64
	db.Model(&model.PendingOrder{}).Where("id = ?", expired.ID).Count(&count)
	if count != 0 {
		t.Error("entrada expirada sem aceite deveria ter sido removida")
	}
}

func TestDeletePendingTreeRemovesChildren(t *testing.T) {
	db := newHandlerTestDB(t)
	expired := seedPending(t, db, nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		return deletePendingTree(tx, []uint{expired.ID})
	})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	var items, addons, payments int64
	db.Model(&model.PendingOrderItem{}).Where("pending_order_id = ?", expired.ID).Count(&items)
	db.Model(&model.PendingPayment{}).Where("pending_order_id = ?", expired.ID).Count(&payments)
	db.Model(&model.PendingOrderItemAddon{}).Count(&addons)
	if items != 0 || addons != 0 || payments != 0 {
		t.Errorf("remoção deveria levar os filhos junto: %d itens, %d complementos, %d pagamentos",
			items, addons, payments)
	}
}
