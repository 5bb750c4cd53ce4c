package service_test

import (
	"testing"

	"movecaixa/internal/dto"
	"movecaixa/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var valorBordo = decimal.NewFromInt(5)

func TestNormalizarPrefixo(t *testing.T) {
	cases := []struct {
		raw      string
		expected string
	}{
		{"5", "55005"},
		{"12", "55012"},
		{"123", "55123"},
		{"12345", "55123"},
		{"", "55000"},
		{"ab7c", "55007"},
		{"  42 ", "55042"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, service.NormalizarPrefixo(tc.raw, "55"), "raw=%q", tc.raw)
	}
}

func TestNormalizarLancamentoValor(t *testing.T) {
	cases := []struct {
		qtd      int
		esperado int64
	}{
		{1, 5},
		{3, 15},
		{7, 35},
		{100, 500},
	}
	for _, tc := range cases {
		l, err := service.NormalizarLancamento(dto.LancamentoRequest{
			TipoValidador:      "prodata",
			QtdBordos:          tc.qtd,
			MatriculaMotorista: "88221",
		}, valorBordo, "55")
		require.NoError(t, err)
		assert.True(t, l.Valor.Equal(decimal.NewFromInt(tc.esperado)),
			"%d bordos: expected %d, got %s", tc.qtd, tc.esperado, l.Valor)
	}
}

func TestNormalizarLancamentoQtdInvalida(t *testing.T) {
	for _, qtd := range []int{0, -1, -100} {
		_, err := service.NormalizarLancamento(dto.LancamentoRequest{
			TipoValidador:      "prodata",
			QtdBordos:          qtd,
			MatriculaMotorista: "88221",
		}, valorBordo, "55")
		var valErr *service.ValidationError
		require.ErrorAs(t, err, &valErr, "qtd=%d", qtd)
		assert.Equal(t, "qtd_bordos", valErr.Campo)
	}
}

func TestNormalizarLancamentoMotoristaObrigatorio(t *testing.T) {
	_, err := service.NormalizarLancamento(dto.LancamentoRequest{
		TipoValidador: "prodata",
		QtdBordos:     1,
	}, valorBordo, "55")
	var valErr *service.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "matricula_motorista", valErr.Campo)

	_, err = service.NormalizarLancamento(dto.LancamentoRequest{
		TipoValidador:      "prodata",
		QtdBordos:          1,
		MatriculaMotorista: "   ",
	}, valorBordo, "55")
	assert.ErrorAs(t, err, &valErr)
}

func TestNormalizarSangria(t *testing.T) {
	s, err := service.NormalizarSangria(dto.SangriaRequest{
		Valor:  decimal.NewFromFloat(12.50),
		Motivo: "  malote para tesouraria  ",
	})
	require.NoError(t, err)
	assert.True(t, s.Valor.Equal(decimal.NewFromFloat(12.50)))
	assert.Equal(t, "malote para tesouraria", s.Motivo)
}

func TestNormalizarSangriaInvalida(t *testing.T) {
	var valErr *service.ValidationError

	_, err := service.NormalizarSangria(dto.SangriaRequest{Valor: decimal.Zero, Motivo: "troco"})
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "valor", valErr.Campo)

	_, err = service.NormalizarSangria(dto.SangriaRequest{Valor: decimal.NewFromInt(-5), Motivo: "troco"})
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "valor", valErr.Campo)

	_, err = service.NormalizarSangria(dto.SangriaRequest{Valor: decimal.NewFromInt(5)})
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "motivo", valErr.Campo)
}
