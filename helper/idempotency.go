package helper

import (
	"encoding/json"
	"errors"
	"log"
	"restaurant_manager/apperr"
	"restaurant_manager/database"
	"restaurant_manager/model"
	"time"

	"gorm.io/gorm"
)

// Sinaliza que o insert do registro perdeu a corrida do unique index.
var errIdempotencyRace = errors.New("idempotency race lost")

// ExecuteIdempotent roda work no máximo uma vez por (key, operation).
// Retorna o payload serializado e replayed=true quando a resposta veio do
// registro gravado por uma execução anterior. Chave vazia desliga o guard.
//
// work recebe a transação em que o registro de idempotência será gravado:
// efeito colateral e registro entram juntos ou não entram. Se o insert do
// registro falhar (corrida perdida ou infra), o rollback desfaz também o que
// work criou; o perdedor lê o resultado do vencedor em vez de deixar um
// pedido duplicado no banco.
func ExecuteIdempotent(key, operation string, work func(tx *gorm.DB) (any, error)) (json.RawMessage, bool, error) {
	db := database.DB

	if key == "" {
		var payload json.RawMessage
		err := db.Transaction(func(tx *gorm.DB) error {
			result, err := work(tx)
			if err != nil {
				return err
			}
			payload, err = json.Marshal(result)
			if err != nil {
				return apperr.Infrastructure("Falha ao serializar resposta", err)
			}
			return nil
		})
		if err != nil {
			return nil, false, err
		}
		return payload, false, nil
	}

	var record model.IdempotencyRecord
	err := db.Where("key = ? AND operation = ?", key, operation).First(&record).Error
	if err == nil {
		return json.RawMessage(record.Response), true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, apperr.Infrastructure("Falha ao consultar idempotência", err)
	}

	payload, err := runIdempotentWork(db, key, operation, work)
	if errors.Is(err, errIdempotencyRace) {
		// perdeu a corrida: o rollback já desfez os efeitos de work,
		// devolve o resultado do vencedor
		var winner model.IdempotencyRecord
		if err := db.Where("key = ? AND operation = ?", key, operation).First(&winner).Error; err != nil {
			return nil, false, apperr.Infrastructure("Falha ao ler registro de idempotência", err)
		}
		return json.RawMessage(winner.Response), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, false, nil
}

// runIdempotentWork executa work e grava o registro na mesma transação.
// O unique index (key, operation) é o árbitro real entre requisições
// simultâneas: quem perde recebe errIdempotencyRace com tudo desfeito.
func runIdempotentWork(db *gorm.DB, key, operation string, work func(tx *gorm.DB) (any, error)) (json.RawMessage, error) {
	var payload json.RawMessage
	err := db.Transaction(func(tx *gorm.DB) error {
		result, err := work(tx)
		if err != nil {
			// nada é gravado: um retry com a mesma chave pode tentar de novo
			return err
		}
		payload, err = json.Marshal(result)
		if err != nil {
			return apperr.Infrastructure("Falha ao serializar resposta", err)
		}
		record := model.IdempotencyRecord{Key: key, Operation: operation, Response: string(payload)}
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errIdempotencyRace
			}
			return apperr.Infrastructure("Falha ao gravar idempotência", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// PurgeIdempotencyRecords apaga registros além da janela de retenção.
func PurgeIdempotencyRecords(retention time.Duration) {
	cutoff := time.Now().Add(-retention)
	result := database.DB.Where("created_at < ?", cutoff).Delete(&model.IdempotencyRecord{})
	if result.Error != nil {
		log.Printf("[CRON] Erro ao limpar registros de idempotência: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[CRON] Removidos %d registros de idempotência expirados", result.RowsAffected)
	}
}
