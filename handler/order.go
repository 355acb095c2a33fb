package handler

import (
	"fmt"
	"restaurant_manager/apperr"
	"restaurant_manager/constants"
	"restaurant_manager/database"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

func newPublicCode() string {
	return "PED-" + strings.ToUpper(uuid.New().String()[:6])
}

// CreateOrder cria um pedido direto (balcão / funcionário), sem passar pela fila.
// Honra o header de idempotência: retry com a mesma chave devolve o mesmo pedido.
func CreateOrder(c *fiber.Ctx) error {
	account, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Sessão inválida", err)
	}

	input := c.Locals("input").(model.CreateOrderInput)
	key := c.Get(constants.IDEMPOTENCY_KEY_HEADER)

	payload, replayed, err := helper.ExecuteIdempotent(key, "create_order", func(tx *gorm.DB) (any, error) {
		return createOrder(tx, input, account)
	})
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	status := fiber.StatusCreated
	if replayed {
		status = fiber.StatusOK
	}
	return utils.SuccessResponse(c, status, payload)
}

// createOrder grava o pedido dentro da transação do guard de idempotência:
// se o registro da chave perder a corrida, o pedido é desfeito junto.
func createOrder(tx *gorm.DB, input model.CreateOrderInput, account *model.Account) (*model.Order, error) {
	lines, total, err := helper.PriceItems(tx, input.Items)
	if err != nil {
		return nil, err
	}

	var payments []model.OrderPayment
	if len(input.Payments) > 0 {
		if err := helper.ValidatePaymentSum(total, input.Payments); err != nil {
			return nil, err
		}
		copier.Copy(&payments, &input.Payments)
	}

	var customer *model.Customer
	if input.CustomerID != nil {
		customer, err = helper.FindCustomerById(*input.CustomerID)
		if err != nil {
			return nil, apperr.Infrastructure("Falha ao consultar cliente", err)
		}
		if customer == nil {
			return nil, apperr.NotFound("Cliente não encontrado")
		}
	} else if input.CustomerPhone != "" {
		customer, err = helper.FindCustomerByPhone(input.CustomerPhone)
		if err != nil {
			return nil, apperr.Infrastructure("Falha ao consultar cliente", err)
		}
	}

	// O número sai de transação própria: se o pedido falhar abaixo,
	// fica um buraco na sequência, nunca duplicata.
	number, err := helper.NextOrderNumber()
	if err != nil {
		return nil, err
	}

	session, err := helper.ActiveSession(tx, false)
	if err != nil {
		return nil, err
	}

	order := model.Order{
		PublicCode:   newPublicCode(),
		Number:       number,
		Status:       model.OrderPendente,
		Channel:      input.Channel,
		Notes:        input.Notes,
		Total:        total,
		CustomerName: input.CustomerName,
		Items:        helper.BuildOrderItems(lines),
		Payments:     payments,
		CreatedBy:    &account.ID,
	}
	if customer != nil {
		order.CustomerID = &customer.ID
		if order.CustomerName == "" {
			order.CustomerName = customer.Name
		}
	}
	if session != nil {
		order.CashSessionID = &session.ID
	}

	if err := tx.Create(&order).Error; err != nil {
		return nil, apperr.Infrastructure("Falha ao gravar pedido", err)
	}

	return &order, nil
}

func GetOrders(c *fiber.Ctx) error {
	db := database.DB

	query := db.Model(&model.Order{}).
		Preload("Items").
		Preload("Items.Addons").
		Preload("Payments").
		Order("created_at desc")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if sessionId := c.QueryInt("sessionId"); sessionId > 0 {
		query = query.Where("cash_session_id = ?", sessionId)
	}

	var totalCount int64
	query.Count(&totalCount)

	limit := c.QueryInt("limit", 0)
	page := c.QueryInt("page", 0)
	if limit > 0 {
		query = utils.ApplyPagination(query, &limit, &page)
	}

	var orders []model.Order
	if err := query.Find(&orders).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Erro ao carregar pedidos", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.ResponseCustom{
		Rows:       orders,
		TotalCount: totalCount,
	})
}

func GetOrderById(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)

	var order model.Order
	if err := database.DB.
		Preload("Items").
		Preload("Items.Addons").
		Preload("Payments").
		Preload("Table").
		First(&order, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Pedido não encontrado", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// GetOrderByCode é a consulta pública (página de acompanhamento do cliente).
func GetOrderByCode(c *fiber.Ctx) error {
	code := c.Params("publicCode")

	var order model.Order
	if err := database.DB.
		Preload("Items").
		Preload("Items.Addons").
		Where("public_code = ?", code).
		First(&order).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Pedido não encontrado", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"publicCode": order.PublicCode,
		"number":     order.Number,
		"status":     order.Status,
		"total":      order.Total,
		"items":      order.Items,
		"createdAt":  order.CreatedAt,
	})
}

// UpdateOrderStatus avança a máquina de estados com guarda de versão.
// Versão defasada (outro terminal mexeu antes) devolve 409, nunca sobrescreve.
func UpdateOrderStatus(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)
	input := c.Locals("input").(model.UpdateOrderStatusInput)
	db := database.DB

	var order model.Order
	if err := db.Preload("Items").Preload("Items.Addons").Preload("Payments").First(&order, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Pedido não encontrado", err)
	}

	if err := helper.ValidateTransition(order.Status, input.Status); err != nil {
		return utils.AppErrorResponse(c, err)
	}

	updates := map[string]any{
		"status":  input.Status,
		"version": input.Version + 1,
	}
	now := time.Now()
	switch input.Status {
	case model.OrderFinalizado:
		updates["finalized_at"] = now
	case model.OrderCancelado:
		updates["cancelled_at"] = now
	}

	result := db.Model(&model.Order{}).
		Where("id = ? AND version = ?", order.ID, input.Version).
		Updates(updates)
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Erro ao atualizar pedido", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.AppErrorResponse(c, apperr.Conflict("Pedido foi alterado por outro terminal, recarregue e tente de novo"))
	}

	order.Status = input.Status
	order.Version = input.Version + 1
	if input.Status == model.OrderFinalizado {
		order.FinalizedAt = &now
		finalizeOrder(&order)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// finalizeOrder dispara os colaboradores pós-finalização (impressora, email).
func finalizeOrder(order *model.Order) {
	helper.PrintReceipt(order)

	if order.CustomerID != nil {
		customer, err := helper.FindCustomerById(*order.CustomerID)
		if err == nil && customer != nil && customer.Email != "" {
			items := make([]utils.ReceiptEmailItem, 0, len(order.Items))
			for _, item := range order.Items {
				items = append(items, utils.ReceiptEmailItem{
					Name:     item.ProductName,
					Quantity: item.Quantity,
					Subtotal: helper.ComputeOrderTotal([]model.OrderItem{item}),
				})
			}
			utils.SendReceiptEmail(customer.Email, utils.ReceiptEmailData{
				OrderCode:    order.PublicCode,
				OrderNumber:  order.Number,
				CustomerName: order.CustomerName,
				Items:        items,
				Total:        order.Total,
				FinalizedAt:  order.FinalizedAt.Format("02/01/2006 15:04"),
			})
		}
	}
}

// RegisterPayment registra o pagamento de quem pagou depois (mesa, entrega).
// A soma precisa bater com o total, pagamento parcial é rejeitado.
func RegisterPayment(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)
	input := c.Locals("input").(model.RegisterPaymentInput)
	db := database.DB

	var order model.Order
	if err := db.Preload("Payments").First(&order, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Pedido não encontrado", err)
	}

	if helper.IsTerminalStatus(order.Status) {
		return utils.AppErrorResponse(c, apperr.BusinessRule(
			fmt.Sprintf("Pedido %s não recebe pagamento", order.Status)))
	}
	if len(order.Payments) > 0 {
		return utils.AppErrorResponse(c, apperr.BusinessRule("Pedido já possui pagamento registrado"))
	}
	if err := helper.ValidatePaymentSum(order.Total, input.Payments); err != nil {
		return utils.AppErrorResponse(c, err)
	}

	var payments []model.OrderPayment
	copier.Copy(&payments, &input.Payments)
	for i := range payments {
		payments[i].OrderID = order.ID
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Order{}).
			Where("id = ? AND version = ?", order.ID, input.Version).
			Update("version", input.Version+1)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.Conflict("Pedido foi alterado por outro terminal, recarregue e tente de novo")
		}
		return tx.Create(&payments).Error
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return utils.AppErrorResponse(c, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Erro ao registrar pagamento", err)
	}

	order.Payments = payments
	order.Version = input.Version + 1
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// ReplaceOrderItems troca os itens de um pedido ainda PENDENTE e sem
// pagamento, reprecificando pelo catálogo e recalculando o total.
func ReplaceOrderItems(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)
	input := c.Locals("input").(model.ReplaceItemsInput)
	db := database.DB

	var order model.Order
	if err := db.Preload("Payments").First(&order, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Pedido não encontrado", err)
	}

	if order.Status != model.OrderPendente {
		return utils.AppErrorResponse(c, apperr.BusinessRule(
			fmt.Sprintf("Itens só podem ser alterados em pedido PENDENTE (atual: %s)", order.Status)))
	}
	if len(order.Payments) > 0 {
		return utils.AppErrorResponse(c, apperr.BusinessRule("Pedido pago não pode ter itens alterados"))
	}

	lines, total, err := helper.PriceItems(db, input.Items)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}
	items := helper.BuildOrderItems(lines)
	for i := range items {
		items[i].OrderID = order.ID
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Order{}).
			Where("id = ? AND version = ?", order.ID, input.Version).
			Updates(map[string]any{"total": total, "version": input.Version + 1})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.Conflict("Pedido foi alterado por outro terminal, recarregue e tente de novo")
		}

		var oldItemIds []uint
		if err := tx.Model(&model.OrderItem{}).Where("order_id = ?", order.ID).Pluck("id", &oldItemIds).Error; err != nil {
			return err
		}
		if len(oldItemIds) > 0 {
			if err := tx.Where("order_item_id IN ?", oldItemIds).Delete(&model.OrderItemAddon{}).Error; err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", order.ID).Delete(&model.OrderItem{}).Error; err != nil {
				return err
			}
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return utils.AppErrorResponse(c, err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Erro ao alterar itens", err)
	}

	order.Items = items
	order.Total = total
	order.Version = input.Version + 1
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

// CancelOrder é o atalho de cancelamento (equivale à transição CANCELADO).
func CancelOrder(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)
	db := database.DB

	var order model.Order
	if err := db.First(&order, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Pedido não encontrado", err)
	}

	if err := helper.ValidateTransition(order.Status, model.OrderCancelado); err != nil {
		return utils.AppErrorResponse(c, err)
	}

	now := time.Now()
	result := db.Model(&model.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]any{
			"status":       model.OrderCancelado,
			"cancelled_at": now,
			"version":      order.Version + 1,
		})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Erro ao cancelar pedido", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.AppErrorResponse(c, apperr.Conflict("Pedido foi alterado por outro terminal, recarregue e tente de novo"))
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"message":     "Pedido cancelado",
		"cancelledAt": now,
	})
}
