package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifica o erro de domínio para o handler mapear em status HTTP.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindConflict
	KindBusinessRule
	KindInfrastructure
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error            { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) error              { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) error              { return &Error{Kind: KindConflict, Message: msg} }
func BusinessRule(msg string) error          { return &Error{Kind: KindBusinessRule, Message: msg} }
func Infrastructure(msg string, err error) error {
	return &Error{Kind: KindInfrastructure, Message: msg, Err: err}
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Status devolve o status HTTP correspondente ao Kind.
// Erros de infraestrutura retornam 503 para sinalizar retry ao cliente.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return fiber.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindBusinessRule:
		return fiber.StatusUnprocessableEntity
	case KindInfrastructure:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Message extrai a mensagem amigável; cai no texto cru se não for *Error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
