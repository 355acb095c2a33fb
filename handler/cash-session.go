package handler

import (
	"errors"
	"restaurant_manager/apperr"
	"restaurant_manager/database"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OpenSession abre a sessão de caixa do turno. A regra "no máximo uma sessão
// ABERTA/PAUSADA" é checada dentro da transação, no banco. Vale mesmo com
// várias instâncias do servidor rodando.
func OpenSession(c *fiber.Ctx) error {
	account, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Sessão inválida", err)
	}
	input := c.Locals("input").(model.OpenSessionInput)
	db := database.DB

	var session model.CashSession
	err = db.Transaction(func(tx *gorm.DB) error {
		active, err := helper.ActiveSession(tx, true)
		if err != nil {
			return err
		}
		if active != nil {
			return apperr.BusinessRule("Já existe uma sessão de caixa aberta, feche antes de abrir outra")
		}

		var lastNumber int
		if err := tx.Model(&model.CashSession{}).
			Select("COALESCE(MAX(number), 0)").
			Scan(&lastNumber).Error; err != nil {
			return apperr.Infrastructure("Falha ao numerar sessão", err)
		}

		now := time.Now()
		session = model.CashSession{
			Number:        lastNumber + 1,
			Date:          now.Truncate(24 * time.Hour),
			Status:        model.SessionAberta,
			AccountID:     account.ID,
			OpeningAmount: input.OpeningAmount,
			OpenedAt:      now,
		}
		if err := tx.Create(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// duas aberturas simultâneas: o unique index do número decide
				return apperr.Conflict("Abertura concorrente de caixa, tente de novo")
			}
			return apperr.Infrastructure("Falha ao abrir sessão", err)
		}
		return nil
	})
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, session)
}

func GetActiveSession(c *fiber.Ctx) error {
	session, err := helper.ActiveSession(database.DB, false)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	if session == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Nenhuma sessão de caixa aberta", nil)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, session)
}

// PauseSession / ResumeSession alternam ABERTA↔PAUSADA com guarda de versão.
func PauseSession(c *fiber.Ctx) error {
	return switchSessionStatus(c, model.SessionAberta, model.SessionPausada)
}

func ResumeSession(c *fiber.Ctx) error {
	return switchSessionStatus(c, model.SessionPausada, model.SessionAberta)
}

func switchSessionStatus(c *fiber.Ctx, from, to string) error {
	if _, err := helper.GetInfoAccountFromToken(c); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Sessão inválida", err)
	}
	id := c.Locals("inputId").(int)
	db := database.DB

	var session model.CashSession
	if err := db.First(&session, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sessão de caixa não encontrada", err)
	}
	if session.Status != from {
		return utils.AppErrorResponse(c, apperr.BusinessRule("Sessão não está "+from))
	}

	result := db.Model(&model.CashSession{}).
		Where("id = ? AND version = ?", session.ID, session.Version).
		Updates(map[string]any{"status": to, "version": session.Version + 1})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Erro ao atualizar sessão", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.AppErrorResponse(c, apperr.Conflict("Sessão foi alterada por outro terminal, recarregue e tente de novo"))
	}

	session.Status = to
	session.Version++
	return utils.SuccessResponse(c, fiber.StatusOK, session)
}

// RegisterMovement grava sangria ou suprimento na sessão ativa.
func RegisterMovement(c *fiber.Ctx) error {
	account, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Sessão inválida", err)
	}
	id := c.Locals("inputId").(int)
	input := c.Locals("input").(model.CashMovementInput)
	db := database.DB

	var session model.CashSession
	if err := db.First(&session, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sessão de caixa não encontrada", err)
	}
	if session.Status != model.SessionAberta {
		return utils.AppErrorResponse(c, apperr.BusinessRule("Movimentação só em sessão ABERTA"))
	}

	movement := model.CashMovement{
		CashSessionID: session.ID,
		AccountID:     account.ID,
		Kind:          input.Kind,
		Amount:        input.Amount,
		Description:   input.Description,
	}
	if err := db.Create(&movement).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Erro ao registrar movimentação", err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, movement)
}

func GetSessionMovements(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)

	var movements []model.CashMovement
	if err := database.DB.
		Where("cash_session_id = ?", id).
		Order("created_at asc").
		Find(&movements).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Erro ao carregar movimentações", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, movements)
}

// GetSessionSummary devolve o fechamento calculado da sessão.
func GetSessionSummary(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)
	db := database.DB

	var session model.CashSession
	if err := db.First(&session, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sessão de caixa não encontrada", err)
	}

	summary, err := buildSessionSummary(db, session)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, summary)
}

func buildSessionSummary(db *gorm.DB, session model.CashSession) (model.SessionSummary, error) {
	cashSales, err := helper.SessionCashSales(db, session.ID)
	if err != nil {
		return model.SessionSummary{}, err
	}
	withdrawals, deposits, err := helper.SessionMovementTotals(db, session.ID)
	if err != nil {
		return model.SessionSummary{}, err
	}
	return helper.ComputeSummary(session, cashSales, withdrawals, deposits), nil
}

// CloseSession fecha o caixa com o valor declarado na gaveta. A diferença
// contra o esperado é informada ao operador, mas nunca impede o fechamento:
// divergência é sinal de auditoria, não erro do sistema.
func CloseSession(c *fiber.Ctx) error {
	if _, err := helper.GetInfoAccountFromToken(c); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Sessão inválida", err)
	}
	id := c.Locals("inputId").(int)
	input := c.Locals("input").(model.CloseSessionInput)
	db := database.DB

	var session model.CashSession
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Sessão de caixa não encontrada")
			}
			return apperr.Infrastructure("Falha ao travar sessão", err)
		}
		if session.Status == model.SessionFechada {
			return apperr.BusinessRule("Sessão já está fechada")
		}

		now := time.Now()
		result := tx.Model(&model.CashSession{}).
			Where("id = ? AND version = ?", session.ID, session.Version).
			Updates(map[string]any{
				"status":         model.SessionFechada,
				"closing_amount": input.ClosingAmount,
				"closed_at":      now,
				"version":        session.Version + 1,
			})
		if result.Error != nil {
			return apperr.Infrastructure("Falha ao fechar sessão", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.Conflict("Sessão foi alterada por outro terminal, recarregue e tente de novo")
		}

		session.Status = model.SessionFechada
		session.ClosingAmount = &input.ClosingAmount
		session.ClosedAt = &now
		session.Version++
		return nil
	})
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	summary, err := buildSessionSummary(db, session)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"session": session,
		"summary": summary,
	})
}
