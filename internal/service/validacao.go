package service

import (
	"strings"
	"time"

	"movecaixa/internal/dto"
	"movecaixa/internal/model"

	"github.com/shopspring/decimal"
)

// NormalizarPrefixo reduces a raw site code to digits, truncates to the first
// 3 digits, left-pads with zeros and prepends the 2-digit network code:
// ("5", "55") → "55005"; ("12345", "55") → "55123"; ("", "55") → "55000".
func NormalizarPrefixo(raw, rede string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	p := digits.String()
	if len(p) > 3 {
		p = p[:3]
	}
	for len(p) < 3 {
		p = "0" + p
	}
	return rede + p
}

// NormalizarLancamento validates a raw lançamento draft and produces the
// record to persist. Valor is computed from the quantity and the fixed unit
// price — the client never supplies it.
func NormalizarLancamento(req dto.LancamentoRequest, valorBordo decimal.Decimal, rede string) (*model.Lancamento, error) {
	if req.QtdBordos <= 0 {
		return nil, invalido("qtd_bordos", "deve ser maior que zero")
	}
	motorista := strings.TrimSpace(req.MatriculaMotorista)
	if motorista == "" {
		return nil, invalido("matricula_motorista", "é obrigatória")
	}

	data := req.DataCaixa
	if data == "" {
		data = time.Now().Format("2006-01-02")
	}

	return &model.Lancamento{
		TipoValidador:      strings.TrimSpace(req.TipoValidador),
		QtdBordos:          req.QtdBordos,
		Valor:              valorBordo.Mul(decimal.NewFromInt(int64(req.QtdBordos))),
		Prefixo:            NormalizarPrefixo(req.Prefixo, rede),
		DataCaixa:          data,
		MatriculaMotorista: motorista,
	}, nil
}

// NormalizarSangria validates a raw sangria draft.
func NormalizarSangria(req dto.SangriaRequest) (*model.Sangria, error) {
	if !req.Valor.IsPositive() {
		return nil, invalido("valor", "deve ser maior que zero")
	}
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		return nil, invalido("motivo", "é obrigatório")
	}
	return &model.Sangria{Valor: req.Valor, Motivo: motivo}, nil
}
