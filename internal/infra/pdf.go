package infra

// pdf.go — PDF rendering with go-pdf/fpdf.
// Two documents are produced from the assembler's output:
//   - the multi-page A4 closing report of a caixa, saved as
//     {matricula}-{data}.pdf
//   - the 80×120mm thermal-style recibo for a single lançamento
// Both are pure renderers: every number and row comes from the report
// assembler, nothing is computed here.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"movecaixa/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GerarRelatorioPDF renders the closing report of a caixa to an A4 PDF.
// Returns the absolute path to the generated file.
func GerarRelatorioPDF(reporte *dto.ReporteCaixaResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("%s-%s.pdf", reporte.Matricula, time.Now().Format("2006-01-02"))
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 28

	greenBar := func() {
		pdf.SetFillColor(46, 139, 87)
		pdf.Rect(14, pdf.GetY(), contentW, 1.5, "F")
		pdf.Ln(4)
	}

	// ── Cabeçalho ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr("RELATÓRIO DE FECHAMENTO DE CAIXA"), "", 1, "C", false, 0, "")
	greenBar()

	abertoEm, _ := time.Parse(time.RFC3339, reporte.AbertoEm)
	fechadoEm := time.Now()
	if reporte.FechadoEm != nil {
		if t, err := time.Parse(time.RFC3339, *reporte.FechadoEm); err == nil {
			fechadoEm = t
		}
	}

	pdf.SetFont("Helvetica", "", 10)
	colW := contentW / 2
	left := []string{
		fmt.Sprintf("Matrícula Recebedor: %s", reporte.Matricula),
		fmt.Sprintf("Data Abertura: %s", abertoEm.Format("02/01/2006")),
		fmt.Sprintf("Data Fechamento: %s", fechadoEm.Format("02/01/2006")),
	}
	right := []string{
		fmt.Sprintf("Nome: %s", reporte.Nome),
		fmt.Sprintf("Hora Abertura: %s", abertoEm.Format("15:04:05")),
		fmt.Sprintf("Hora Fechamento: %s", fechadoEm.Format("15:04:05")),
	}
	for i := range left {
		pdf.CellFormat(colW, 6, tr(left[i]), "", 0, "L", false, 0, "")
		pdf.CellFormat(colW, 6, tr(right[i]), "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 7, tr(fmt.Sprintf("Status: %s   -   Caixa Nº: %s", reporte.Status, reporte.CaixaID)), "", 1, "C", false, 0, "")
	greenBar()

	// ── Lançamentos ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr("Lançamentos"), "", 1, "L", false, 0, "")

	lcols := []struct {
		label string
		w     float64
	}{
		{"Horário", 0.12}, {"Validador", 0.20}, {"Prefixo", 0.14},
		{"Bordos", 0.12}, {"Valor (R$)", 0.16}, {"Matr. Motorista", 0.26},
	}
	pdf.SetFont("Helvetica", "B", 9)
	for _, col := range lcols {
		pdf.CellFormat(contentW*col.w, 6, tr(col.label), "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range reporte.Lancamentos {
		cells := []string{
			row.Horario, row.TipoValidador, row.Prefixo,
			fmt.Sprintf("%d", row.QtdBordos), row.Valor.StringFixed(2), row.MatriculaMotorista,
		}
		for i, col := range lcols {
			pdf.CellFormat(contentW*col.w, 6, tr(cells[i]), "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(reporte.Lancamentos) == 0 {
		pdf.CellFormat(contentW, 6, tr("- Nenhum"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	greenBar()

	// ── Sangrias ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, "Sangrias", "", 1, "L", false, 0, "")

	if len(reporte.Sangrias) == 0 {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 6, tr("- Nenhuma"), "", 1, "L", false, 0, "")
	} else {
		scols := []struct {
			label string
			w     float64
		}{{"Horário", 0.15}, {"Valor (R$)", 0.20}, {"Motivo", 0.65}}
		pdf.SetFont("Helvetica", "B", 9)
		for _, col := range scols {
			pdf.CellFormat(contentW*col.w, 6, tr(col.label), "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		for _, row := range reporte.Sangrias {
			cells := []string{row.Horario, row.Valor.StringFixed(2), row.Motivo}
			for i, col := range scols {
				pdf.CellFormat(contentW*col.w, 6, tr(cells[i]), "", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}
	pdf.Ln(2)
	greenBar()

	// ── Resumo Financeiro ────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, "Resumo Financeiro", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("Total Abastecido: R$ %s", reporte.Resumo.TotalLancamentos.StringFixed(2))), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("Total Sangrias: R$ %s", reporte.Resumo.TotalSangrias.StringFixed(2))), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 7, tr(fmt.Sprintf("Saldo Final: R$ %s", reporte.Resumo.SaldoFinal.StringFixed(2))), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// ── Assinatura ───────────────────────────────────────────────────────────
	y := pdf.GetY() + 12
	pdf.Line(pageW/2-55, y, pageW/2+55, y)
	pdf.SetY(y + 2)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Assinatura do Recebedor", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// GerarReciboPDF renders the thermal-style receipt for one lançamento.
// 80×120mm approximates the receipt printer paper.
func GerarReciboPDF(recibo *dto.ReciboResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("recibo_%s_%d.pdf", recibo.MatriculaRecebedor, time.Now().UnixNano())
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: 120},
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	bar := func() {
		pdf.SetFillColor(42, 107, 42)
		pdf.Rect(4, pdf.GetY(), contentW, 0.8, "F")
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, "RECIBO DE PAGAMENTO MANUAL", "", 1, "C", false, 0, "")
	bar()

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW*0.55, 5, tr(label), "", 0, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(contentW*0.45, 5, tr(value), "", 1, "R", false, 0, "")
	}

	row("Tipo de validador:", recibo.TipoValidador)
	row("PREFIXO:", recibo.Prefixo)
	row("QUANTIDADE BORDOS:", fmt.Sprintf("%d", recibo.QtdBordos))
	row("VALOR:", "R$ "+recibo.Valor.StringFixed(2))
	row("MATRÍCULA MOTORISTA:", recibo.MatriculaMotorista)
	row("MATRÍCULA RECEBEDOR:", recibo.MatriculaRecebedor)
	row("DATA RECEBIMENTO:", recibo.DataRecebimento)
	bar()

	pdf.Ln(10)
	y := pdf.GetY()
	pdf.Line(12, y, pageW-12, y)
	pdf.SetY(y + 1)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "ASSINATURA RECEBEDOR", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
