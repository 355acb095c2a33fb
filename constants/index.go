package constants

// Roles de acesso
const (
	ROLE_ADMIN   = "ADMIN"
	ROLE_MANAGER = "MANAGER"
	ROLE_STAFF   = "STAFF"
)

// Canais de origem do pedido
const (
	CHANNEL_TABLE    = "MESA"
	CHANNEL_COUNTER  = "BALCAO"
	CHANNEL_DELIVERY = "DELIVERY"
	CHANNEL_STAFF    = "FUNCIONARIO"
)

// Métodos de pagamento
const (
	PAYMENT_CASH   = "DINHEIRO"
	PAYMENT_CARD   = "CARTAO"
	PAYMENT_PIX    = "PIX"
	PAYMENT_ONLINE = "ONLINE"
)

// Mensagens de erro genéricas
const (
	ERROR_INTERNAL_ERROR     = "Erro interno do servidor"
	DATA_INPUT_IS_NOT_NUMBER = "O parâmetro informado não é um número"
	MISSING_LOGIN_INPUT      = "Informe usuário e senha"
	INVALID_USERNAME         = "Usuário não encontrado"
	INVALID_PASSWORD         = "Senha incorreta"
	ACCOUNT_NOT_ACTIVE       = "Conta desativada"
)

// Header usado pelos clientes para deduplicar requisições de criação
const IDEMPOTENCY_KEY_HEADER = "X-Idempotency-Key"
