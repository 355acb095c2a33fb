package handler

import (
	"fmt"
	"restaurant_manager/config"
	"restaurant_manager/database"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
)

func GetTables(c *fiber.Ctx) error {
	var tables []model.DiningTable
	if err := database.DB.Order("number asc").Find(&tables).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Erro ao carregar mesas", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, tables)
}

// GetTableQR devolve o PNG do QR code da mesa. É ele que o cliente escaneia
// para mandar pedido pelo canal MESA.
func GetTableQR(c *fiber.Ctx) error {
	id := c.Locals("inputId").(int)

	var table model.DiningTable
	if err := database.DB.First(&table, id).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Mesa não encontrada", err)
	}

	baseURL := config.ConfigOr("PUBLIC_BASE_URL", "http://localhost:8002")
	content := fmt.Sprintf("%s/mesa?token=%s", baseURL, table.Token)

	qrBytes, err := utils.GenerateQRCode(content, 400)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Erro ao gerar QR code", err)
	}

	c.Set("Content-Type", "image/png")
	return c.Send(qrBytes)
}
