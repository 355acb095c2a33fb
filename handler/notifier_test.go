package handler

import (
	"errors"
	"restaurant_manager/constants"
	"restaurant_manager/model"
	"testing"
	"time"
)

func registerSweepSubject(t *testing.T, orderId uint, last orderSnapshot) {
	t.Helper()
	watcherMu.Lock()
	watchers[orderId] = make(map[*watcherConn]bool)
	lastEmitted[orderId] = last
	watcherMu.Unlock()
	t.Cleanup(func() {
		watcherMu.Lock()
		delete(watchers, orderId)
		delete(lastEmitted, orderId)
		watcherMu.Unlock()
	})
}

func emittedSnapshot(orderId uint) orderSnapshot {
	watcherMu.Lock()
	defer watcherMu.Unlock()
	return lastEmitted[orderId]
}

// Publicação que falha não pode avançar o estado emitido: a mudança fica
// pendente e a próxima varredura publica de novo.
func TestSweepOrderChangesRetriesAfterPublishFailure(t *testing.T) {
	db := newHandlerTestDB(t)

	order := model.Order{PublicCode: "PED-ACOMP1", Number: 1, Status: model.OrderEmPreparo, Channel: constants.CHANNEL_TABLE}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("erro ao preparar pedido: %v", err)
	}

	stale := orderSnapshot{Status: model.OrderPendente, UpdatedAt: order.UpdatedAt.Add(-time.Minute)}
	registerSweepSubject(t, order.ID, stale)

	prevPublish := publishOrderUpdate
	t.Cleanup(func() { publishOrderUpdate = prevPublish })

	published := 0
	publishOrderUpdate = func(channel string, payload []byte) error {
		published++
		return errors.New("redis fora do ar")
	}

	SweepOrderChanges()
	if published != 1 {
		t.Fatalf("varredura deveria tentar publicar uma vez, tentou %d", published)
	}
	if got := emittedSnapshot(order.ID); got.Status != stale.Status {
		t.Error("falha de publicação não pode avançar o estado emitido")
	}

	var gotChannel string
	publishOrderUpdate = func(channel string, payload []byte) error {
		published++
		gotChannel = channel
		return nil
	}

	SweepOrderChanges()
	if published != 2 {
		t.Fatalf("mudança pendente deveria ser publicada de novo, tentativas = %d", published)
	}
	if gotChannel != orderChannel(order.ID) {
		t.Errorf("canal = %s", gotChannel)
	}
	if got := emittedSnapshot(order.ID); got.Status != model.OrderEmPreparo {
		t.Errorf("estado emitido deveria avançar após publicar, status = %s", got.Status)
	}

	// estado emitido em dia: nenhuma publicação nova
	SweepOrderChanges()
	if published != 2 {
		t.Errorf("estado idêntico não gera push, tentativas = %d", published)
	}
}
