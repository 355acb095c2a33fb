package helper

import (
	"errors"
	"restaurant_manager/database"
	"restaurant_manager/model"

	"gorm.io/gorm"
)

// Diretório de clientes: usado para anexar um cliente conhecido ao pedido.

func FindCustomerByPhone(phone string) (*model.Customer, error) {
	var customer model.Customer
	if err := database.DB.Where("phone = ?", phone).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func FindCustomerById(id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := database.DB.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}
