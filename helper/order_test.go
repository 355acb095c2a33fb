package helper

import (
	"math"
	"restaurant_manager/apperr"
	"restaurant_manager/model"
	"testing"
)

func TestLineSubtotal(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice float64
		quantity  int
		addons    []PricedAddonLine
		want      float64
	}{
		{
			name:      "sem complementos",
			unitPrice: 25.0,
			quantity:  3,
			want:      75.0,
		},
		{
			name:      "complemento multiplicado pela quantidade do item",
			unitPrice: 10.0,
			quantity:  2,
			addons: []PricedAddonLine{
				{Addon: model.Addon{Price: 5.0}, Quantity: 1},
			},
			want: 30.0,
		},
		{
			name:      "varios complementos",
			unitPrice: 30.0,
			quantity:  1,
			addons: []PricedAddonLine{
				{Addon: model.Addon{Price: 4.0}, Quantity: 2},
				{Addon: model.Addon{Price: 3.0}, Quantity: 1},
			},
			want: 41.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineSubtotal(tt.unitPrice, tt.quantity, tt.addons)
			if math.Abs(got-tt.want) > amountEpsilon {
				t.Errorf("LineSubtotal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeOrderTotal(t *testing.T) {
	// dois itens simples: 10×2 + 5×1 = 25
	simple := []model.OrderItem{
		{UnitPrice: 10.0, Quantity: 2},
		{UnitPrice: 5.0, Quantity: 1},
	}
	if got := ComputeOrderTotal(simple); math.Abs(got-25.0) > amountEpsilon {
		t.Errorf("ComputeOrderTotal(simple) = %v, want 25", got)
	}

	items := []model.OrderItem{
		{
			UnitPrice: 45.90,
			Quantity:  2,
			Addons: []model.OrderItemAddon{
				{UnitPrice: 6.0, Quantity: 1},
			},
		},
		{UnitPrice: 12.0, Quantity: 1},
	}

	got := ComputeOrderTotal(items)
	want := 45.90*2 + 6.0*2 + 12.0
	if math.Abs(got-want) > amountEpsilon {
		t.Errorf("ComputeOrderTotal() = %v, want %v", got, want)
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantErr bool
	}{
		{"pendente para em preparo", model.OrderPendente, model.OrderEmPreparo, false},
		{"em preparo para pronto", model.OrderEmPreparo, model.OrderPronto, false},
		{"pronto para finalizado", model.OrderPronto, model.OrderFinalizado, false},
		{"pendente para cancelado", model.OrderPendente, model.OrderCancelado, false},
		{"pronto para cancelado", model.OrderPronto, model.OrderCancelado, false},
		{"pula etapa", model.OrderPendente, model.OrderPronto, true},
		{"volta de estado", model.OrderPronto, model.OrderEmPreparo, true},
		{"finalizado e imutavel", model.OrderFinalizado, model.OrderCancelado, true},
		{"cancelado e imutavel", model.OrderCancelado, model.OrderEmPreparo, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTransition(%s, %s) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
			if err != nil && !apperr.IsKind(err, apperr.KindBusinessRule) {
				t.Errorf("ValidateTransition(%s, %s) kind = %v, want BusinessRule", tt.from, tt.to, err)
			}
		})
	}
}

func TestIsTerminalStatus(t *testing.T) {
	if !IsTerminalStatus(model.OrderFinalizado) || !IsTerminalStatus(model.OrderCancelado) {
		t.Error("FINALIZADO e CANCELADO devem ser terminais")
	}
	if IsTerminalStatus(model.OrderPendente) || IsTerminalStatus(model.OrderPronto) {
		t.Error("PENDENTE e PRONTO não são terminais")
	}
}

func TestValidatePaymentSum(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		payments []model.PaymentInput
		wantErr  bool
		wantKind apperr.Kind
	}{
		{
			name:  "soma exata",
			total: 100.0,
			payments: []model.PaymentInput{
				{Method: "DINHEIRO", Amount: 100.0},
			},
			wantErr: false,
		},
		{
			name:  "dividido em dois metodos",
			total: 80.0,
			payments: []model.PaymentInput{
				{Method: "DINHEIRO", Amount: 50.0},
				{Method: "PIX", Amount: 30.0},
			},
			wantErr: false,
		},
		{
			name:  "centavos de float nao rejeitam",
			total: 0.3,
			payments: []model.PaymentInput{
				{Method: "PIX", Amount: 0.1},
				{Method: "PIX", Amount: 0.2},
			},
			wantErr: false,
		},
		{
			name:  "pagamento parcial rejeitado",
			total: 100.0,
			payments: []model.PaymentInput{
				{Method: "CARTAO", Amount: 60.0},
			},
			wantErr:  true,
			wantKind: apperr.KindBusinessRule,
		},
		{
			name:  "pagamento a maior rejeitado",
			total: 50.0,
			payments: []model.PaymentInput{
				{Method: "DINHEIRO", Amount: 70.0},
			},
			wantErr:  true,
			wantKind: apperr.KindBusinessRule,
		},
		{
			name:     "lista vazia",
			total:    10.0,
			payments: nil,
			wantErr:  true,
			wantKind: apperr.KindValidation,
		},
		{
			name:  "valor negativo",
			total: 10.0,
			payments: []model.PaymentInput{
				{Method: "DINHEIRO", Amount: -5.0},
				{Method: "PIX", Amount: 15.0},
			},
			wantErr:  true,
			wantKind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePaymentSum(tt.total, tt.payments)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePaymentSum() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperr.IsKind(err, tt.wantKind) {
				t.Errorf("ValidatePaymentSum() kind errado: %v", err)
			}
		})
	}
}

func TestBuildOrderItemsFromPending(t *testing.T) {
	pendingItems := []model.PendingOrderItem{
		{
			ProductID:   7,
			ProductName: "X-Burguer (preço antigo)",
			UnitPrice:   22.0,
			Quantity:    2,
			Addons: []model.PendingOrderItemAddon{
				{AddonID: 3, AddonName: "Bacon extra", UnitPrice: 5.0, Quantity: 1},
			},
		},
	}

	items := BuildOrderItemsFromPending(pendingItems)
	if len(items) != 1 {
		t.Fatalf("esperava 1 item, veio %d", len(items))
	}
	// o snapshot congelado deve ser preservado ao pé da letra
	if items[0].ProductName != "X-Burguer (preço antigo)" || items[0].UnitPrice != 22.0 {
		t.Errorf("snapshot não preservado: %+v", items[0])
	}
	if len(items[0].Addons) != 1 || items[0].Addons[0].UnitPrice != 5.0 {
		t.Errorf("snapshot do complemento não preservado: %+v", items[0].Addons)
	}

	total := ComputeOrderTotal(items)
	want := 22.0*2 + 5.0*2
	if math.Abs(total-want) > amountEpsilon {
		t.Errorf("total do snapshot = %v, want %v", total, want)
	}
}
