package router

import (
	"restaurant_manager/handler"
	"restaurant_manager/middleware"
	"restaurant_manager/validate"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	auth := v1.Group("/auth")
	auth.Post("/login", handler.Login)
	auth.Post("/refresh-token", handler.RefreshToken)
	auth.Get("/me", middleware.Protected(), handler.Me)

	// Público: envio de pedido pelos canais não assistidos (QR da mesa, entrega)
	fila := v1.Group("/fila", logger.New())
	fila.Post("/mesa", validate.SubmitTableOrder(), handler.SubmitTableOrder)
	fila.Post("/entrega", validate.SubmitDeliveryOrder(), handler.SubmitDeliveryOrder)

	// Atendimento: fila de aceite
	fila.Get("/", middleware.Protected(), handler.ListPending)
	fila.Get("/count", middleware.Protected(), handler.CountPending)
	fila.Post("/:pendingId/aceitar", middleware.Protected(), validate.GetById("pendingId"), handler.AcceptPendingOrder)
	fila.Post("/:pendingId/rejeitar", middleware.Protected(), validate.GetById("pendingId"), handler.RejectPendingOrder)
	fila.Delete("/expirados", middleware.Protected(), handler.PurgePendingOrders)

	pedido := v1.Group("/pedido", logger.New())
	pedido.Get("/", middleware.Protected(), handler.GetOrders)
	pedido.Post("/", middleware.Protected(), validate.CreateOrder(), handler.CreateOrder)
	pedido.Get("/:orderId", middleware.Protected(), validate.GetById("orderId"), handler.GetOrderById)
	pedido.Patch("/:orderId/status", middleware.Protected(), validate.UpdateOrderStatus("orderId"), handler.UpdateOrderStatus)
	pedido.Post("/:orderId/pagamento", middleware.Protected(), validate.RegisterPayment("orderId"), handler.RegisterPayment)
	pedido.Put("/:orderId/itens", middleware.Protected(), validate.ReplaceItems("orderId"), handler.ReplaceOrderItems)
	pedido.Post("/:orderId/cancelar", middleware.Protected(), validate.GetById("orderId"), handler.CancelOrder)

	// Público: acompanhamento do cliente pelo código do pedido
	acompanhar := v1.Group("/acompanhar")
	acompanhar.Get("/:publicCode", middleware.OptionalJWT(), handler.GetOrderByCode)
	acompanhar.Get("/:publicCode/ws", websocket.New(handler.OrderStatusWebsocketByCode))

	v1.Get("/pedido-ws/:orderId", websocket.New(handler.OrderStatusWebsocket))

	caixa := v1.Group("/caixa", logger.New())
	caixa.Post("/abrir", middleware.Protected(), validate.OpenSession(), handler.OpenSession)
	caixa.Get("/ativa", middleware.Protected(), handler.GetActiveSession)
	caixa.Patch("/:sessionId/pausar", middleware.Protected(), validate.GetById("sessionId"), handler.PauseSession)
	caixa.Patch("/:sessionId/retomar", middleware.Protected(), validate.GetById("sessionId"), handler.ResumeSession)
	caixa.Post("/:sessionId/movimentacao", middleware.Protected(), validate.CashMovement("sessionId"), handler.RegisterMovement)
	caixa.Get("/:sessionId/movimentacoes", middleware.Protected(), validate.GetById("sessionId"), handler.GetSessionMovements)
	caixa.Get("/:sessionId/resumo", middleware.Protected(), validate.GetById("sessionId"), handler.GetSessionSummary)
	caixa.Post("/:sessionId/fechar", middleware.Protected(), validate.CloseSession("sessionId"), handler.CloseSession)

	mesa := v1.Group("/mesa", logger.New())
	mesa.Get("/", middleware.Protected(), handler.GetTables)
	mesa.Get("/:tableId/qr", middleware.Protected(), validate.GetById("tableId"), handler.GetTableQR)
}
