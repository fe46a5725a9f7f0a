package adminsvc

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	admindto "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/admin/dto"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
)

const (
	exportPageSize = 100
	exportMaxPages = 200
	sheetName      = "Relatórios"
)

var exportHeader = []interface{}{
	"Nº OS", "ID", "Data", "Tipo", "Porteiro", "Motorista", "Matrícula", "Veículo", "Status", "Valor", "Documentos", "Conteúdo",
}

// ExportFileName é o nome do arquivo exportado: relatorios_<AAAA-MM-DD>.<ext>
func ExportFileName(now time.Time, ext string) string {
	return "relatorios_" + now.In(relatorio.Location).Format(relatorio.ISODateLayout) + "." + ext
}

// ExportHTML repassa a exportação HTML do backend para os filtros atuais
func (s *AdminService) ExportHTML(ctx context.Context, cookie string, filters admindto.FilterQuery) (backend.Export, error) {
	return s.api.ExportHTML(ctx, cookie, FilterValues(NormalizeFilters(filters)))
}

// collectAll percorre todas as páginas da listagem filtrada
func (s *AdminService) collectAll(ctx context.Context, cookie string, filters admindto.FilterQuery) ([]relatorio.Report, error) {
	var all []relatorio.Report
	for page := 1; page <= exportMaxPages; page++ {
		q := FilterValues(filters)
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(exportPageSize))

		res, err := s.api.ListReports(ctx, cookie, q)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Reports...)
		if len(res.Reports) < exportPageSize || len(all) >= res.Count {
			return all, nil
		}
	}
	logger.WithModule("admin").WithField("linhas", len(all)).Warn("Exportação truncada no limite de páginas")
	return all, nil
}

// ExportXLSX gera a planilha com todas as linhas que atendem aos filtros
func (s *AdminService) ExportXLSX(ctx context.Context, cookie string, filters admindto.FilterQuery) ([]byte, error) {
	reports, err := s.collectAll(ctx, cookie, NormalizeFilters(filters))
	if err != nil {
		return nil, err
	}
	return BuildWorkbook(reports)
}

// BuildWorkbook monta a planilha com cabeçalho em negrito e uma linha por relatório
func BuildWorkbook(reports []relatorio.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, "A1", &exportHeader); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeader))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", bold); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(sheetName, "A", lastCol, 18)
	_ = f.SetColWidth(sheetName, lastCol, lastCol, 60)

	for i, r := range reports {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		var valor interface{} = ""
		if r.Valor != nil {
			valor = *r.Valor
		}
		row := []interface{}{
			r.NumeroOS,
			r.ID,
			relatorio.FormatDateTime(r.CreatedAt),
			r.Tipo.Nome,
			r.Porteiro.Nome,
			r.DriverName(),
			relatorio.ExtractOr(r.Content, relatorio.Matricula),
			relatorio.ExtractOr(r.Content, relatorio.Veiculo),
			r.Status.Label(),
			valor,
			strings.Join(r.Documentos, ", "),
			r.Content.String(),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
