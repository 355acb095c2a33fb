package model

import "time"

// Status do pedido. Transições só andam para frente; CANCELADO é alcançável
// de qualquer estado não terminal.
const (
	OrderPendente   = "PENDENTE"
	OrderEmPreparo  = "EM_PREPARO"
	OrderPronto     = "PRONTO"
	OrderFinalizado = "FINALIZADO"
	OrderCancelado  = "CANCELADO"
)

type Order struct {
	DTO
	PublicCode    string         `gorm:"uniqueIndex;size:20" json:"publicCode"` // PED-XXXXXX
	Number        int            `gorm:"uniqueIndex;not null" json:"number"`    // número sequencial humano
	Status        string         `gorm:"size:20;not null;default:PENDENTE" json:"status"`
	Channel       string         `gorm:"size:20;not null" json:"channel"` // MESA, BALCAO, DELIVERY, FUNCIONARIO
	Notes         string         `json:"notes"`
	Total         float64        `json:"total"`
	TableID       *uint          `json:"tableId,omitempty"`
	Table         *DiningTable   `json:"table,omitempty"`
	CustomerID    *uint          `json:"customerId,omitempty"`
	Customer      *Customer      `json:"customer,omitempty"`
	CustomerName  string         `json:"customerName"`
	DeliveryPhone string         `json:"deliveryPhone"`
	DeliveryAddr  string         `json:"deliveryAddr"`
	CashSessionID *uint          `json:"cashSessionId,omitempty"`
	Items         []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	Payments      []OrderPayment `gorm:"foreignKey:OrderID" json:"payments"`
	CreatedBy     *uint          `json:"createdBy,omitempty"`
	FinalizedAt   *time.Time     `json:"finalizedAt,omitempty"`
	CancelledAt   *time.Time     `json:"cancelledAt,omitempty"`
	Version       int            `gorm:"not null;default:1" json:"version"` // controle otimista
}

// OrderItem guarda snapshot de nome/preço: edições posteriores de cardápio
// não alteram pedidos já criados.
type OrderItem struct {
	DTO
	OrderID     uint             `gorm:"index;not null" json:"orderId"`
	ProductID   uint             `json:"productId"`
	ProductName string           `json:"productName"`
	UnitPrice   float64          `json:"unitPrice"`
	Quantity    int              `gorm:"not null" json:"quantity"`
	Notes       string           `json:"notes"`
	Addons      []OrderItemAddon `gorm:"foreignKey:OrderItemID" json:"addons"`
}

type OrderItemAddon struct {
	DTO
	OrderItemID uint    `gorm:"index;not null" json:"orderItemId"`
	AddonID     uint    `json:"addonId"`
	AddonName   string  `json:"addonName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `gorm:"not null" json:"quantity"`
}

type OrderPayment struct {
	DTO
	OrderID uint    `gorm:"index;not null" json:"orderId"`
	Method  string  `gorm:"size:20;not null" json:"method"` // DINHEIRO, CARTAO, PIX, ONLINE
	Amount  float64 `gorm:"not null" json:"amount"`
}

// ----- Inputs -----

type OrderItemAddonInput struct {
	AddonID  uint `json:"addonId" validate:"required,gt=0"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
}

type OrderItemInput struct {
	ProductID uint                  `json:"productId" validate:"required,gt=0"`
	Quantity  int                   `json:"quantity" validate:"required,gt=0"`
	Notes     string                `json:"notes"`
	Addons    []OrderItemAddonInput `json:"addons" validate:"omitempty,dive"`
}

type PaymentInput struct {
	Method string  `json:"method" validate:"required,oneof=DINHEIRO CARTAO PIX ONLINE"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type CreateOrderInput struct {
	Channel       string           `json:"channel" validate:"required,oneof=BALCAO FUNCIONARIO"`
	Items         []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Notes         string           `json:"notes"`
	CustomerID    *uint            `json:"customerId"`
	CustomerPhone string           `json:"customerPhone"`
	CustomerName  string           `json:"customerName"`
	Payments      []PaymentInput   `json:"payments" validate:"omitempty,dive"`
}

type UpdateOrderStatusInput struct {
	Status  string `json:"status" validate:"required,oneof=EM_PREPARO PRONTO FINALIZADO CANCELADO"`
	Version int    `json:"version" validate:"required,gt=0"`
}

type RegisterPaymentInput struct {
	Payments []PaymentInput `json:"payments" validate:"required,min=1,dive"`
	Version  int            `json:"version" validate:"required,gt=0"`
}

type ReplaceItemsInput struct {
	Items   []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	Version int              `json:"version" validate:"required,gt=0"`
}
