package model

import "time"

// Status da sessão de caixa. No máximo uma ABERTA ou PAUSADA no sistema.
const (
	SessionAberta  = "ABERTA"
	SessionPausada = "PAUSADA"
	SessionFechada = "FECHADA"
)

// Tipos de movimentação manual de caixa.
const (
	MovementSangria    = "SANGRIA"    // retirada
	MovementSuprimento = "SUPRIMENTO" // aporte
)

type CashSession struct {
	DTO
	Number        int        `gorm:"uniqueIndex;not null" json:"number"`
	Date          time.Time  `gorm:"not null" json:"date"` // dia de trabalho
	Status        string     `gorm:"size:20;not null;default:ABERTA" json:"status"`
	AccountID     uint       `gorm:"not null" json:"accountId"`
	OpeningAmount float64    `gorm:"not null" json:"openingAmount"`
	ClosingAmount *float64   `json:"closingAmount,omitempty"` // só em FECHADA
	OpenedAt      time.Time  `json:"openedAt"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
	Version       int        `gorm:"not null;default:1" json:"version"`

	Movements []CashMovement `gorm:"foreignKey:CashSessionID" json:"movements,omitempty"`
}

type CashMovement struct {
	DTO
	CashSessionID uint    `gorm:"index;not null" json:"cashSessionId"`
	AccountID     uint    `gorm:"not null" json:"accountId"`
	Kind          string  `gorm:"size:20;not null" json:"kind"` // SANGRIA ou SUPRIMENTO
	Amount        float64 `gorm:"not null" json:"amount"`       // sempre positivo
	Description   string  `json:"description"`
}

// SessionSummary é o fechamento calculado, nunca persistido: o total de
// vendas em dinheiro deriva dos pagamentos dos pedidos da sessão.
type SessionSummary struct {
	SessionID        uint     `json:"sessionId"`
	OpeningAmount    float64  `json:"openingAmount"`
	CashSalesTotal   float64  `json:"cashSalesTotal"`
	WithdrawalsTotal float64  `json:"withdrawalsTotal"`
	DepositsTotal    float64  `json:"depositsTotal"`
	ExpectedBalance  float64  `json:"expectedBalance"`
	ClosingAmount    *float64 `json:"closingAmount,omitempty"`
	Difference       *float64 `json:"difference,omitempty"`
}

// ----- Inputs -----

type OpenSessionInput struct {
	OpeningAmount float64 `json:"openingAmount" validate:"gte=0"`
}

type CloseSessionInput struct {
	ClosingAmount float64 `json:"closingAmount" validate:"gte=0"`
}

type CashMovementInput struct {
	Kind        string  `json:"kind" validate:"required,oneof=SANGRIA SUPRIMENTO"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"required"`
}
