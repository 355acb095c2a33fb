package handler

import (
	"errors"
	"log"
	"restaurant_manager/apperr"
	"restaurant_manager/constants"
	"restaurant_manager/database"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PendingTTL: pedido na fila que ninguém aceitou em 30 minutos expira.
const PendingTTL = 30 * time.Minute

// SubmitTableOrder recebe o pedido do QR code da mesa. Preço e nome são
// congelados aqui: edição de cardápio depois não muda o que está na fila.
func SubmitTableOrder(c *fiber.Ctx) error {
	input := c.Locals("input").(model.SubmitTableOrderInput)
	key := c.Get(constants.IDEMPOTENCY_KEY_HEADER)

	payload, replayed, err := helper.ExecuteIdempotent(key, "submit_table_order", func(tx *gorm.DB) (any, error) {
		var table model.DiningTable
		if err := tx.Where("token = ? AND active = ?", input.Token, true).First(&table).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("Mesa não encontrada ou inativa")
			}
			return nil, apperr.Infrastructure("Falha ao consultar mesa", err)
		}

		return submitPending(tx, model.PendingOrder{
			Channel:      constants.CHANNEL_TABLE,
			TableID:      &table.ID,
			CustomerName: input.CustomerName,
			Notes:        input.Notes,
		}, input.Items, input.Payments)
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

// SubmitDeliveryOrder recebe o pedido do canal de entrega.
func SubmitDeliveryOrder(c *fiber.Ctx) error {
	input := c.Locals("input").(model.SubmitDeliveryOrderInput)
	key := c.Get(constants.IDEMPOTENCY_KEY_HEADER)

	payload, replayed, err := helper.ExecuteIdempotent(key, "submit_delivery_order", func(tx *gorm.DB) (any, error) {
		return submitPending(tx, model.PendingOrder{
			Channel:       constants.CHANNEL_DELIVERY,
			CustomerName:  input.CustomerName,
			DeliveryPhone: input.Phone,
			DeliveryAddr:  input.Address,
			Notes:         input.Notes,
		}, input.Items, input.Payments)
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

// submitPending grava a entrada da fila na transação do guard de idempotência.
func submitPending(tx *gorm.DB, pending model.PendingOrder, items []model.OrderItemInput, payments []model.PaymentInput) (*model.PendingOrder, error) {
	lines, total, err := helper.PriceItems(tx, items)
	if err != nil {
		return nil, err
	}

	if len(payments) > 0 {
		if err := helper.ValidatePaymentSum(total, payments); err != nil {
			return nil, err
		}
		copier.Copy(&pending.Payments, &payments)
	}

	pending.Total = total
	for _, line := range lines {
		item := model.PendingOrderItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			UnitPrice:   line.Product.Price,
			Quantity:    line.Quantity,
			Notes:       line.Notes,
		}
		for _, a := range line.Addons {
			item.Addons = append(item.Addons, model.PendingOrderItemAddon{
				AddonID:   a.Addon.ID,
				AddonName: a.Addon.Name,
				UnitPrice: a.Addon.Price,
				Quantity:  a.Quantity,
			})
		}
		pending.Items = append(pending.Items, item)
	}

	if err := tx.Create(&pending).Error; err != nil {
		return nil, apperr.Infrastructure("Falha ao gravar pedido na fila", err)
	}

	return &pending, nil
}

type pendingRow struct {
	model.PendingOrder
	WaitingSeconds int `json:"waitingSeconds"`
}

// ListPending lista a fila FIFO (mais antigo primeiro), expirando antes
// o que ficou além do TTL sem aceite.
func ListPending(c *fiber.Ctx) error {
	purgeExpiredPending(PendingTTL)

	var pendings []model.PendingOrder
	if err := database.DB.
		Preload("Items").
		Preload("Items.Addons").
		Preload("Payments").
		Preload("Table").
		Where("converted_order_id IS NULL").
		Order("created_at asc").
		Find(&pendings).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Erro ao carregar fila", err)
	}

	now := time.Now()
	rows := make([]pendingRow, 0, len(pendings))
	for _, p := range pendings {
		rows = append(rows, pendingRow{
			PendingOrder:   p,
			WaitingSeconds: int(p.WaitingFor(now).Seconds()),
		})
	}

	return utils.SuccessResponse(c, fiber.StatusOK, rows)
}

func CountPending(c *fiber.Ctx) error {
	purgeExpiredPending(PendingTTL)

	var count int64
	if err := database.DB.Model(&model.PendingOrder{}).
		Where("converted_order_id IS NULL").
		Count(&count).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Erro ao contar fila", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"count": count})
}

// AcceptPendingOrder converte o pedido da fila em pedido de verdade.
//
// A linha é travada com FOR UPDATE antes de qualquer coisa: dois atendentes
// clicando "aceitar" ao mesmo tempo: o segundo espera o lock, enxerga
// converted_order_id preenchido e recebe 409, nunca um pedido duplicado.
// Qualquer falha depois do claim desfaz tudo e a linha volta a ser aceitável.
func AcceptPendingOrder(c *fiber.Ctx) error {
	account, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Sessão inválida", err)
	}
	id := c.Locals("inputId").(int)
	db := database.DB

	tx := db.Begin()
	if tx.Error != nil {
		return utils.AppErrorResponse(c, apperr.Infrastructure("Falha ao abrir transação", tx.Error))
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var pending model.PendingOrder
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pending, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.AppErrorResponse(c, apperr.NotFound("Pedido não está mais na fila"))
		}
		return utils.AppErrorResponse(c, apperr.Infrastructure("Falha ao travar pedido da fila", err))
	}

	if pending.ConvertedOrderID != nil {
		tx.Rollback()
		return utils.AppErrorResponse(c, apperr.Conflict("Pedido já aceito por outro atendente"))
	}

	// filhos carregados depois do lock, o pai já está travado
	if err := tx.Preload("Addons").Where("pending_order_id = ?", pending.ID).Find(&pending.Items).Error; err != nil {
		tx.Rollback()
		return utils.AppErrorResponse(c, apperr.Infrastructure("Falha ao carregar itens da fila", err))
	}
	if err := tx.Where("pending_order_id = ?", pending.ID).Find(&pending.Payments).Error; err != nil {
		tx.Rollback()
		return utils.AppErrorResponse(c, apperr.Infrastructure("Falha ao carregar pagamentos da fila", err))
	}

	// Nada é revalidado no catálogo vivo: o snapshot congelado manda.
	order := model.Order{
		PublicCode:    newPublicCode(),
		Status:        model.OrderPendente,
		Channel:       pending.Channel,
		Notes:         pending.Notes,
		Total:         pending.Total,
		TableID:       pending.TableID,
		CustomerName:  pending.CustomerName,
		DeliveryPhone: pending.DeliveryPhone,
		DeliveryAddr:  pending.DeliveryAddr,
		Items:         helper.BuildOrderItemsFromPending(pending.Items),
		CreatedBy:     &account.ID,
	}

	if len(pending.Payments) > 0 {
		inputs := make([]model.PaymentInput, 0, len(pending.Payments))
		for _, p := range pending.Payments {
			inputs = append(inputs, model.PaymentInput{Method: p.Method, Amount: p.Amount})
		}
		if err := helper.ValidatePaymentSum(pending.Total, inputs); err != nil {
			tx.Rollback()
			return utils.AppErrorResponse(c, err)
		}
		for _, p := range pending.Payments {
			order.Payments = append(order.Payments, model.OrderPayment{Method: p.Method, Amount: p.Amount})
		}
	}

	if pending.DeliveryPhone != "" {
		if customer, err := helper.FindCustomerByPhone(pending.DeliveryPhone); err == nil && customer != nil {
			order.CustomerID = &customer.ID
		}
	}

	session, err := helper.ActiveSession(tx, false)
	if err != nil {
		tx.Rollback()
		return utils.AppErrorResponse(c, err)
	}
	if session != nil {
		order.CashSessionID = &session.ID
	}

	// Número em transação própria, com o lock do claim já em mãos.
	number, err := helper.NextOrderNumber()
	if err != nil {
		tx.Rollback()
		return utils.AppErrorResponse(c, err)
	}
	order.Number = number

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return utils.AppErrorResponse(c, apperr.Infrastructure("Falha ao criar pedido", err))
	}

	if err := tx.Model(&model.PendingOrder{}).
		Where("id = ?", pending.ID).
		Update("converted_order_id", order.ID).Error; err != nil {
		tx.Rollback()
		return utils.AppErrorResponse(c, apperr.Infrastructure("Falha ao vincular aceite", err))
	}

	if err := tx.Commit().Error; err != nil {
		return utils.AppErrorResponse(c, apperr.Infrastructure("Falha ao confirmar aceite", err))
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, order)
}

// RejectPendingOrder descarta o pedido da fila sem criar pedido real.
func RejectPendingOrder(c *fiber.Ctx) error {
	if _, err := helper.GetInfoAccountFromToken(c); err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Sessão inválida", err)
	}
	id := c.Locals("inputId").(int)

	var input model.RejectPendingInput
	c.BodyParser(&input) // reason é opcional

	db := database.DB
	err := db.Transaction(func(tx *gorm.DB) error {
		var pending model.PendingOrder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pending, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Pedido não está mais na fila")
			}
			return apperr.Infrastructure("Falha ao travar pedido da fila", err)
		}
		if pending.ConvertedOrderID != nil {
			return apperr.Conflict("Pedido já aceito, não pode ser rejeitado")
		}
		if input.Reason != "" {
			log.Printf("Pedido %d rejeitado: %s", pending.ID, input.Reason)
		}
		return deletePendingTree(tx, []uint{pending.ID})
	})
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"message": "Pedido rejeitado"})
}

// PurgePendingOrders é o reset administrativo: TTL zero limpa a fila inteira.
func PurgePendingOrders(c *fiber.Ctx) error {
	account, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Sessão inválida", err)
	}
	if account.Role != constants.ROLE_ADMIN && account.Role != constants.ROLE_MANAGER {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Sem permissão para limpar a fila", nil)
	}

	removed := purgeExpiredPending(0)
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"removed": removed})
}

// purgeExpiredPending remove da fila o que passou do TTL sem aceite.
// Aceitos ficam para auditoria, independente da idade.
//
// A seleção acontece dentro da transação de remoção, com FOR UPDATE: um
// aceite disputando a mesma linha ou espera o lock ou já gravou
// converted_order_id e sai do alcance da limpeza.
func purgeExpiredPending(ttl time.Duration) int64 {
	db := database.DB
	cutoff := time.Now().Add(-ttl)

	var removed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&model.PendingOrder{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("converted_order_id IS NULL AND created_at < ?", cutoff).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		removed = int64(len(ids))
		return deletePendingTree(tx, ids)
	})
	if err != nil {
		log.Printf("Erro ao expirar pedidos da fila: %v", err)
		return 0
	}

	if removed > 0 {
		log.Printf("Fila: %d pedidos expirados removidos", removed)
	}
	return removed
}

// deletePendingTree apaga entradas da fila com seus filhos. Reconfirma na
// própria transação que nenhum dos ids foi convertido: aceite é auditoria,
// nunca entra na remoção.
func deletePendingTree(tx *gorm.DB, ids []uint) error {
	var safeIds []uint
	if err := tx.Model(&model.PendingOrder{}).
		Where("id IN ? AND converted_order_id IS NULL", ids).
		Pluck("id", &safeIds).Error; err != nil {
		return err
	}
	if len(safeIds) == 0 {
		return nil
	}

	var itemIds []uint
	if err := tx.Model(&model.PendingOrderItem{}).Where("pending_order_id IN ?", safeIds).Pluck("id", &itemIds).Error; err != nil {
		return err
	}
	if len(itemIds) > 0 {
		if err := tx.Where("pending_order_item_id IN ?", itemIds).Delete(&model.PendingOrderItemAddon{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("pending_order_id IN ?", safeIds).Delete(&model.PendingOrderItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where("pending_order_id IN ?", safeIds).Delete(&model.PendingPayment{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ? AND converted_order_id IS NULL", safeIds).Delete(&model.PendingOrder{}).Error
}

// StartPendingExpireWorker varre a fila periodicamente; o TTL também é
// aplicado de forma preguiçosa em cada list/count.
func StartPendingExpireWorker() {
	ticker := time.NewTicker(1 * time.Minute)
	go func() {
		for range ticker.C {
			purgeExpiredPending(PendingTTL)
		}
	}()
}
