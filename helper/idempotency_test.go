package helper

import (
	"encoding/json"
	"errors"
	"restaurant_manager/apperr"
	"restaurant_manager/constants"
	"restaurant_manager/database"
	"restaurant_manager/model"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Banco em memória com uma conexão só: transação e leituras fora dela
// nunca rodam ao mesmo tempo nos testes.
func newIdempotencyTestDB(t *testing.T) *gorm.DB {
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
		&model.IdempotencyRecord{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderItemAddon{},
		&model.OrderPayment{},
	); err != nil {
		t.Fatalf("erro ao migrar banco de teste: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

func countOrders(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&model.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("erro ao contar pedidos: %v", err)
	}
	return count
}

func TestExecuteIdempotentWithoutKey(t *testing.T) {
	newIdempotencyTestDB(t)

	// chave vazia desliga o guard: work roda direto, nada é registrado
	calls := 0
	payload, replayed, err := ExecuteIdempotent("", "create_order", func(tx *gorm.DB) (any, error) {
		calls++
		return map[string]int{"number": 42}, nil
	})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if replayed {
		t.Error("sem chave não existe replay")
	}
	if calls != 1 {
		t.Errorf("work deveria rodar uma vez, rodou %d", calls)
	}

	var decoded map[string]int
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload não é JSON válido: %v", err)
	}
	if decoded["number"] != 42 {
		t.Errorf("payload = %v", decoded)
	}
}

func TestExecuteIdempotentErrorRollsBackWork(t *testing.T) {
	db := newIdempotencyTestDB(t)

	wantErr := apperr.BusinessRule("produto indisponível")
	_, _, err := ExecuteIdempotent("chave-1", "create_order", func(tx *gorm.DB) (any, error) {
		order := model.Order{PublicCode: "PED-FALHOU", Number: 1, Status: model.OrderPendente, Channel: constants.CHANNEL_COUNTER}
		if err := tx.Create(&order).Error; err != nil {
			return nil, err
		}
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("erro do work deveria ser propagado, veio %v", err)
	}

	// falha do work desfaz tudo: um retry com a mesma chave pode rodar de novo
	if count := countOrders(t, db); count != 0 {
		t.Errorf("pedido de work com erro não pode persistir, há %d no banco", count)
	}
	var records int64
	db.Model(&model.IdempotencyRecord{}).Count(&records)
	if records != 0 {
		t.Errorf("erro não gera registro de idempotência, há %d", records)
	}
}

func TestExecuteIdempotentReplaysStoredResult(t *testing.T) {
	db := newIdempotencyTestDB(t)

	calls := 0
	work := func(tx *gorm.DB) (any, error) {
		calls++
		order := model.Order{PublicCode: "PED-UNICO1", Number: 7, Status: model.OrderPendente, Channel: constants.CHANNEL_COUNTER}
		if err := tx.Create(&order).Error; err != nil {
			return nil, err
		}
		return &order, nil
	}

	first, replayed, err := ExecuteIdempotent("chave-retry", "create_order", work)
	if err != nil {
		t.Fatalf("primeira execução falhou: %v", err)
	}
	if replayed {
		t.Error("primeira execução não é replay")
	}

	second, replayed, err := ExecuteIdempotent("chave-retry", "create_order", work)
	if err != nil {
		t.Fatalf("retry falhou: %v", err)
	}
	if !replayed {
		t.Error("retry com a mesma chave deveria ser replay")
	}
	if calls != 1 {
		t.Errorf("work deveria rodar uma vez, rodou %d", calls)
	}
	if string(first) != string(second) {
		t.Errorf("replay deveria devolver o mesmo payload: %s != %s", first, second)
	}
	if count := countOrders(t, db); count != 1 {
		t.Errorf("mesma chave deveria deixar 1 pedido no banco, há %d", count)
	}
}

func TestExecuteIdempotentRaceLoserLeavesNoSideEffect(t *testing.T) {
	db := newIdempotencyTestDB(t)

	// vencedor já gravou registro e pedido
	winnerOrder := model.Order{PublicCode: "PED-GANHOU", Number: 1, Status: model.OrderPendente, Channel: constants.CHANNEL_COUNTER}
	if err := db.Create(&winnerOrder).Error; err != nil {
		t.Fatalf("erro ao preparar pedido do vencedor: %v", err)
	}
	winner := model.IdempotencyRecord{Key: "chave-corrida", Operation: "create_order", Response: `{"publicCode":"PED-GANHOU"}`}
	if err := db.Create(&winner).Error; err != nil {
		t.Fatalf("erro ao preparar registro do vencedor: %v", err)
	}

	// o perdedor passou pela consulta antes do commit do vencedor e só
	// descobre a disputa no insert do registro: o pedido dele não pode ficar
	_, err := runIdempotentWork(db, "chave-corrida", "create_order", func(tx *gorm.DB) (any, error) {
		order := model.Order{PublicCode: "PED-PERDEU", Number: 2, Status: model.OrderPendente, Channel: constants.CHANNEL_COUNTER}
		if err := tx.Create(&order).Error; err != nil {
			return nil, err
		}
		return &order, nil
	})
	if !errors.Is(err, errIdempotencyRace) {
		t.Fatalf("insert duplicado deveria sinalizar corrida perdida, veio %v", err)
	}

	if count := countOrders(t, db); count != 1 {
		t.Errorf("mesma chave deveria deixar 1 pedido no banco, há %d", count)
	}

	// na camada de cima o perdedor recebe o resultado do vencedor
	payload, replayed, err := ExecuteIdempotent("chave-corrida", "create_order", func(tx *gorm.DB) (any, error) {
		t.Fatal("work não pode rodar de novo com registro gravado")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if !replayed {
		t.Error("perdedor deveria receber replay do vencedor")
	}
	var decoded map[string]string
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload não é JSON válido: %v", err)
	}
	if decoded["publicCode"] != "PED-GANHOU" {
		t.Errorf("payload deveria ser o do vencedor, veio %s", payload)
	}
}
