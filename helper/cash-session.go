package helper

import (
	"errors"
	"restaurant_manager/apperr"
	"restaurant_manager/constants"
	"restaurant_manager/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActiveSession devolve a sessão ABERTA ou PAUSADA, se existir.
// Com forUpdate, trava a linha: usado na abertura para serializar a checagem
// de "no máximo uma sessão ativa" entre instâncias concorrentes.
func ActiveSession(tx *gorm.DB, forUpdate bool) (*model.CashSession, error) {
	query := tx.Where("status IN ?", []string{model.SessionAberta, model.SessionPausada})
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var session model.CashSession
	if err := query.First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Infrastructure("Falha ao consultar sessão de caixa", err)
	}
	return &session, nil
}

// ComputeSummary aplica a fórmula de fechamento:
// esperado = abertura + vendas em dinheiro − sangrias + suprimentos.
// A diferença só existe depois do fechamento (declarado − esperado).
func ComputeSummary(session model.CashSession, cashSales, withdrawals, deposits float64) model.SessionSummary {
	summary := model.SessionSummary{
		SessionID:        session.ID,
		OpeningAmount:    session.OpeningAmount,
		CashSalesTotal:   cashSales,
		WithdrawalsTotal: withdrawals,
		DepositsTotal:    deposits,
		ExpectedBalance:  session.OpeningAmount + cashSales - withdrawals + deposits,
	}
	if session.Status == model.SessionFechada && session.ClosingAmount != nil {
		summary.ClosingAmount = session.ClosingAmount
		diff := *session.ClosingAmount - summary.ExpectedBalance
		summary.Difference = &diff
	}
	return summary
}

// SessionCashSales soma os pagamentos em DINHEIRO dos pedidos não cancelados
// da sessão. Derivado na hora, não há contador separado para divergir.
func SessionCashSales(db *gorm.DB, sessionID uint) (float64, error) {
	var total float64
	err := db.Model(&model.OrderPayment{}).
		Joins("JOIN orders ON orders.id = order_payments.order_id").
		Where("orders.cash_session_id = ? AND orders.status <> ? AND order_payments.method = ?",
			sessionID, model.OrderCancelado, constants.PAYMENT_CASH).
		Select("COALESCE(SUM(order_payments.amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, apperr.Infrastructure("Falha ao somar vendas em dinheiro", err)
	}
	return total, nil
}

// SessionMovementTotals soma sangrias e suprimentos da sessão.
func SessionMovementTotals(db *gorm.DB, sessionID uint) (withdrawals, deposits float64, err error) {
	rows := []struct {
		Kind  string
		Total float64
	}{}
	err = db.Model(&model.CashMovement{}).
		Where("cash_session_id = ?", sessionID).
		Select("kind, COALESCE(SUM(amount), 0) as total").
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, apperr.Infrastructure("Falha ao somar movimentações de caixa", err)
	}
	for _, row := range rows {
		switch row.Kind {
		case model.MovementSangria:
			withdrawals = row.Total
		case model.MovementSuprimento:
			deposits = row.Total
		}
	}
	return withdrawals, deposits, nil
}
