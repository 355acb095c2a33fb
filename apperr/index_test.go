package apperr

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation vira 400", Validation("campo invalido"), fiber.StatusBadRequest},
		{"not found vira 404", NotFound("nao achou"), fiber.StatusNotFound},
		{"conflict vira 409", Conflict("corrida perdida"), fiber.StatusConflict},
		{"business rule vira 422", BusinessRule("regra violada"), fiber.StatusUnprocessableEntity},
		{"infrastructure vira 503", Infrastructure("banco fora", errors.New("down")), fiber.StatusServiceUnavailable},
		{"erro qualquer vira 500", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	err := Conflict("pedido ja aceito")
	if !IsKind(err, KindConflict) {
		t.Error("IsKind deveria reconhecer KindConflict")
	}
	if IsKind(err, KindNotFound) {
		t.Error("IsKind não deveria confundir os kinds")
	}
	if IsKind(errors.New("cru"), KindConflict) {
		t.Error("erro fora da taxonomia não tem kind")
	}

	// embrulhado continua identificável
	wrapped := Infrastructure("falha ao gravar", errors.New("timeout"))
	if !IsKind(wrapped, KindInfrastructure) {
		t.Error("IsKind deveria atravessar o wrap")
	}
}

func TestMessage(t *testing.T) {
	if got := Message(BusinessRule("soma não bate")); got != "soma não bate" {
		t.Errorf("Message() = %q", got)
	}
	if got := Message(errors.New("cru")); got != "cru" {
		t.Errorf("Message() = %q", got)
	}
}
