package helper

import (
	"fmt"
	"math"
	"restaurant_manager/apperr"
	"restaurant_manager/model"

	"gorm.io/gorm"
)

// Transições permitidas. Estados terminais não saem para lugar nenhum.
var orderTransitions = map[string][]string{
	model.OrderPendente:   {model.OrderEmPreparo, model.OrderCancelado},
	model.OrderEmPreparo:  {model.OrderPronto, model.OrderCancelado},
	model.OrderPronto:     {model.OrderFinalizado, model.OrderCancelado},
	model.OrderFinalizado: {},
	model.OrderCancelado:  {},
}

func IsTerminalStatus(status string) bool {
	return status == model.OrderFinalizado || status == model.OrderCancelado
}

func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition aplica a máquina de estados do pedido.
func ValidateTransition(from, to string) error {
	if IsTerminalStatus(from) {
		return apperr.BusinessRule(fmt.Sprintf("Pedido %s é imutável", from))
	}
	if !CanTransition(from, to) {
		return apperr.BusinessRule(fmt.Sprintf("Transição de %s para %s não é permitida", from, to))
	}
	return nil
}

// ----- Precificação com snapshot -----

// PricedAddonLine é o complemento já precificado pelo catálogo.
type PricedAddonLine struct {
	Addon    model.Addon
	Quantity int
}

// PricedLine é um item de pedido precificado no momento do envio. O nome e o
// preço ficam congelados: edição posterior do cardápio não muda o pedido.
type PricedLine struct {
	Product  model.Product
	Quantity int
	Notes    string
	Addons   []PricedAddonLine
	Subtotal float64
}

// LineSubtotal: preço unitário × qtde + (soma dos complementos) × qtde do item.
func LineSubtotal(unitPrice float64, quantity int, addons []PricedAddonLine) float64 {
	addonTotal := 0.0
	for _, a := range addons {
		addonTotal += a.Addon.Price * float64(a.Quantity)
	}
	return unitPrice*float64(quantity) + addonTotal*float64(quantity)
}

// PriceItems resolve cada item no catálogo e congela nome/preço.
// Produto ou complemento indisponível rejeita o envio inteiro.
func PriceItems(db *gorm.DB, inputs []model.OrderItemInput) ([]PricedLine, float64, error) {
	lines := make([]PricedLine, 0, len(inputs))
	total := 0.0

	for _, in := range inputs {
		product, err := GetProduct(db, in.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if !product.Available {
			return nil, 0, apperr.BusinessRule(fmt.Sprintf("Produto %s indisponível", product.Name))
		}

		line := PricedLine{Product: *product, Quantity: in.Quantity, Notes: in.Notes}
		for _, addonIn := range in.Addons {
			addon, err := GetAddon(db, addonIn.AddonID)
			if err != nil {
				return nil, 0, err
			}
			if !addon.Available {
				return nil, 0, apperr.BusinessRule(fmt.Sprintf("Complemento %s indisponível", addon.Name))
			}
			line.Addons = append(line.Addons, PricedAddonLine{Addon: *addon, Quantity: addonIn.Quantity})
		}

		line.Subtotal = LineSubtotal(product.Price, in.Quantity, line.Addons)
		lines = append(lines, line)
		total += line.Subtotal
	}

	return lines, total, nil
}

// ComputeOrderTotal recalcula o total a partir dos snapshots dos itens.
func ComputeOrderTotal(items []model.OrderItem) float64 {
	total := 0.0
	for _, item := range items {
		addonTotal := 0.0
		for _, a := range item.Addons {
			addonTotal += a.UnitPrice * float64(a.Quantity)
		}
		total += item.UnitPrice*float64(item.Quantity) + addonTotal*float64(item.Quantity)
	}
	return total
}

// ----- Pagamento -----

const amountEpsilon = 0.005 // tolerância de centavo por aritmética de float

// ValidatePaymentSum exige soma exata: ou paga tudo, ou não registra nada.
// Pagamento parcial não é um estado modelado.
func ValidatePaymentSum(total float64, payments []model.PaymentInput) error {
	if len(payments) == 0 {
		return apperr.Validation("Informe ao menos uma forma de pagamento")
	}
	sum := 0.0
	for _, p := range payments {
		if p.Amount <= 0 {
			return apperr.Validation("Valor de pagamento deve ser positivo")
		}
		sum += p.Amount
	}
	if math.Abs(sum-total) > amountEpsilon {
		return apperr.BusinessRule(fmt.Sprintf("Soma dos pagamentos (%.2f) difere do total do pedido (%.2f)", sum, total))
	}
	return nil
}

// BuildOrderItems converte linhas precificadas em itens do pedido.
func BuildOrderItems(lines []PricedLine) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		item := model.OrderItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			UnitPrice:   line.Product.Price,
			Quantity:    line.Quantity,
			Notes:       line.Notes,
		}
		for _, a := range line.Addons {
			item.Addons = append(item.Addons, model.OrderItemAddon{
				AddonID:   a.Addon.ID,
				AddonName: a.Addon.Name,
				UnitPrice: a.Addon.Price,
				Quantity:  a.Quantity,
			})
		}
		items = append(items, item)
	}
	return items
}

// BuildOrderItemsFromPending reaproveita o snapshot congelado da fila.
// Nada é revalidado no catálogo vivo.
func BuildOrderItemsFromPending(pendingItems []model.PendingOrderItem) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(pendingItems))
	for _, p := range pendingItems {
		item := model.OrderItem{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			UnitPrice:   p.UnitPrice,
			Quantity:    p.Quantity,
			Notes:       p.Notes,
		}
		for _, a := range p.Addons {
			item.Addons = append(item.Addons, model.OrderItemAddon{
				AddonID:   a.AddonID,
				AddonName: a.AddonName,
				UnitPrice: a.UnitPrice,
				Quantity:  a.Quantity,
			})
		}
		items = append(items, item)
	}
	return items
}
