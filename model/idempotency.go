package model

// IdempotencyRecord guarda o resultado serializado de uma operação com chave.
// O unique index (key, operation) é o árbitro real entre requisições
// simultâneas com a mesma chave.
type IdempotencyRecord struct {
	DTO
	Key       string `gorm:"uniqueIndex:ux_idem_key_op,priority:1;size:80;not null" json:"key"`
	Operation string `gorm:"uniqueIndex:ux_idem_key_op,priority:2;size:40;not null" json:"operation"`
	Response  string `gorm:"type:text" json:"response"`
}
