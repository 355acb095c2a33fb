package utils

import (
	"bytes"
	"html/template"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// ReceiptEmailData dados para o template do comprovante
type ReceiptEmailData struct {
	OrderCode    string
	OrderNumber  int
	CustomerName string
	Items        []ReceiptEmailItem
	Total        float64
	FinalizedAt  string
}

type ReceiptEmailItem struct {
	Name     string
	Quantity int
	Subtotal float64
}

// SendReceiptEmail envia o comprovante do pedido finalizado (async)
func SendReceiptEmail(to string, data ReceiptEmailData) {
	go func() { // async para não atrasar a resposta
		tmplPath := "templates/order_receipt.html"
		tmpl, err := template.ParseFiles(tmplPath)
		if err != nil {
			log.Printf("Erro ao carregar template de email: %v", err)
			return
		}

		var body bytes.Buffer
		if err := tmpl.Execute(&body, data); err != nil {
			log.Printf("Erro ao renderizar template de email: %v", err)
			return
		}

		host := os.Getenv("SMTP_HOST")
		portStr := os.Getenv("SMTP_PORT")
		username := os.Getenv("SMTP_USERNAME")
		password := os.Getenv("SMTP_PASSWORD")
		from := os.Getenv("SMTP_FROM")

		port, _ := strconv.Atoi(portStr)

		m := gomail.NewMessage()
		m.SetHeader("From", from)
		m.SetHeader("To", to)
		m.SetHeader("Subject", "Comprovante do pedido #"+data.OrderCode)
		m.SetBody("text/html", body.String())

		d := gomail.NewDialer(host, port, username, password)
		if err := d.DialAndSend(m); err != nil {
			log.Printf("Erro ao enviar email: %v", err)
		}
	}()
}
