package service

import (
	"errors"
	"fmt"
)

// Domain failures of the caixa lifecycle. All are returned synchronously at
// the operation boundary; none performs a partial write.
var (
	// ErrCaixaJaAberto: open attempted while the recebedor already has an
	// open caixa. The existing caixa and its entries are left untouched.
	ErrCaixaJaAberto = errors.New("você já possui um caixa aberto")
	// ErrCaixaFechado: an append or close was attempted against a caixa that
	// is not open (stale handle or already closed).
	ErrCaixaFechado = errors.New("o caixa não está aberto")
	ErrCaixaNaoEncontrado = errors.New("caixa não encontrado")
)

// ValidationError reports a rejected lançamento or sangria draft. The
// operator fixes the input and retries; no state changes.
type ValidationError struct {
	Campo  string
	Motivo string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Campo, e.Motivo)
}

func invalido(campo, motivo string) *ValidationError {
	return &ValidationError{Campo: campo, Motivo: motivo}
}
