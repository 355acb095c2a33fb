package helper

import (
	"log"
	"restaurant_manager/model"
)

// ReceiptPrinter consome o pedido finalizado e emite o comprovante.
// A formatação de bytes da impressora térmica fica do outro lado da interface.
type ReceiptPrinter interface {
	Print(order *model.Order) error
}

// LogPrinter é o sink padrão quando não há impressora configurada.
type LogPrinter struct{}

func (LogPrinter) Print(order *model.Order) error {
	log.Printf("[PRINTER] Pedido #%d (%s) total %.2f enviado para impressão", order.Number, order.PublicCode, order.Total)
	return nil
}

var Printer ReceiptPrinter = LogPrinter{}

// PrintReceipt imprime sem bloquear o fluxo do pedido; falha só vai pro log.
func PrintReceipt(order *model.Order) {
	if err := Printer.Print(order); err != nil {
		log.Printf("[PRINTER] Erro ao imprimir pedido #%d: %v", order.Number, err)
	}
}
