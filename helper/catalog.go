package helper

import (
	"errors"
	"fmt"
	"restaurant_manager/apperr"
	"restaurant_manager/model"

	"gorm.io/gorm"
)

// Colaborador de catálogo: só leitura, o CRUD de cardápio vive em outro lugar.

func GetProduct(db *gorm.DB, id uint) (*model.Product, error) {
	var product model.Product
	if err := db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("Produto %d não encontrado", id))
		}
		return nil, apperr.Infrastructure("Falha ao consultar produto", err)
	}
	return &product, nil
}

func GetAddon(db *gorm.DB, id uint) (*model.Addon, error) {
	var addon model.Addon
	if err := db.First(&addon, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("Complemento %d não encontrado", id))
		}
		return nil, apperr.Infrastructure("Falha ao consultar complemento", err)
	}
	return &addon, nil
}
