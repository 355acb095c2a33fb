package model

import "time"

// PendingOrder é a fila de espera dos canais não assistidos (mesa/delivery).
// Não é um Order: vira um quando o atendente aceita. A aceitação grava
// ConvertedOrderID e a linha some do "list pending" mas fica para auditoria.
type PendingOrder struct {
	DTO
	Channel          string             `gorm:"size:20;not null" json:"channel"` // MESA ou DELIVERY
	TableID          *uint              `json:"tableId,omitempty"`
	Table            *DiningTable       `json:"table,omitempty"`
	CustomerName     string             `json:"customerName"`
	DeliveryPhone    string             `json:"deliveryPhone"`
	DeliveryAddr     string             `json:"deliveryAddr"`
	Notes            string             `json:"notes"`
	Total            float64            `json:"total"`
	Items            []PendingOrderItem `gorm:"foreignKey:PendingOrderID" json:"items"`
	Payments         []PendingPayment   `gorm:"foreignKey:PendingOrderID" json:"payments"`
	ConvertedOrderID *uint              `gorm:"index" json:"convertedOrderId,omitempty"`
}

// WaitingFor é derivado na leitura, nunca armazenado.
func (p *PendingOrder) WaitingFor(now time.Time) time.Duration {
	return now.Sub(p.CreatedAt)
}

type PendingOrderItem struct {
	DTO
	PendingOrderID uint                    `gorm:"index;not null" json:"pendingOrderId"`
	ProductID      uint                    `json:"productId"`
	ProductName    string                  `json:"productName"` // snapshot no momento do envio
	UnitPrice      float64                 `json:"unitPrice"`   // snapshot no momento do envio
	Quantity       int                     `gorm:"not null" json:"quantity"`
	Notes          string                  `json:"notes"`
	Addons         []PendingOrderItemAddon `gorm:"foreignKey:PendingOrderItemID" json:"addons"`
}

type PendingOrderItemAddon struct {
	DTO
	PendingOrderItemID uint    `gorm:"index;not null" json:"pendingOrderItemId"`
	AddonID            uint    `json:"addonId"`
	AddonName          string  `json:"addonName"`
	UnitPrice          float64 `json:"unitPrice"`
	Quantity           int     `gorm:"not null" json:"quantity"`
}

// PendingPayment é a intenção de pagamento informada no envio; só vira
// pagamento de verdade quando o pedido é aceito.
type PendingPayment struct {
	DTO
	PendingOrderID uint    `gorm:"index;not null" json:"pendingOrderId"`
	Method         string  `gorm:"size:20;not null" json:"method"`
	Amount         float64 `gorm:"not null" json:"amount"`
}

// ----- Inputs -----

type SubmitTableOrderInput struct {
	Token        string           `json:"token" validate:"required"`
	CustomerName string           `json:"customerName" validate:"required"`
	Items        []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Notes        string           `json:"notes"`
	Payments     []PaymentInput   `json:"payments" validate:"omitempty,dive"`
}

type SubmitDeliveryOrderInput struct {
	CustomerName string           `json:"customerName" validate:"required"`
	Phone        string           `json:"phone" validate:"required"`
	Address      string           `json:"address" validate:"required"`
	Items        []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Notes        string           `json:"notes"`
	Payments     []PaymentInput   `json:"payments" validate:"omitempty,dive"`
}

type RejectPendingInput struct {
	Reason string `json:"reason"`
}
