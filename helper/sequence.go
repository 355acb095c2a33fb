package helper

import (
	"restaurant_manager/apperr"
	"restaurant_manager/database"
	"restaurant_manager/model"
)

// NextOrderNumber aloca o próximo número sequencial de pedido.
// O INSERT roda fora da transação do chamador: se a criação do pedido
// falhar depois, o número vira um buraco na sequência e nunca é reusado.
func NextOrderNumber() (int, error) {
	seq := model.OrderSequence{}
	if err := database.DB.Create(&seq).Error; err != nil {
		return 0, apperr.Infrastructure("Não foi possível alocar número de pedido", err)
	}
	return int(seq.ID), nil
}
