package adminsvc

import (
	"context"
	"net/url"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	admindto "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/admin/dto"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/inflight"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/notify"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

// Backend é a parte do cliente REST usada pela revisão administrativa
type Backend interface {
	ListReports(ctx context.Context, cookie string, query url.Values) (backend.ReportPage, error)
	Stats(ctx context.Context, cookie string, query url.Values) (backend.Stats, error)
	ListReportTypes(ctx context.Context, cookie string) ([]backend.ReportType, error)
	ListPorteiros(ctx context.Context, cookie string) ([]backend.Porteiro, error)
	GetReport(ctx context.Context, cookie, id string) (relatorio.Report, error)
	GetReportByNumero(ctx context.Context, cookie, numeroOS string) (relatorio.Report, error)
	UpdateStatus(ctx context.Context, cookie, id string, update backend.StatusUpdate) error
	ExportHTML(ctx context.Context, cookie string, query url.Values) (backend.Export, error)
}

// Notifier recebe as mudanças de status concluídas
type Notifier interface {
	Notify(ev notify.Event)
}

// AdminService monta as páginas do administrativo
type AdminService struct {
	api      Backend
	guard    inflight.Guard
	notifier Notifier
}

// NewAdminService cria o serviço
func NewAdminService(api Backend, guard inflight.Guard, notifier Notifier) *AdminService {
	return &AdminService{api: api, guard: guard, notifier: notifier}
}

// Row é uma linha da tabela de relatórios
type Row struct {
	ID         string
	NumeroOS   string
	Data       string
	Motorista  string
	Veiculo    string
	Tipo       string
	Status     string
	BadgeClass string
}

// NewRow monta a linha a partir do relatório normalizado
func NewRow(r relatorio.Report) Row {
	return Row{
		ID:         r.ID,
		NumeroOS:   r.NumeroOS,
		Data:       relatorio.FormatDate(r.CreatedAt),
		Motorista:  r.DriverName(),
		Veiculo:    relatorio.ExtractOr(r.Content, relatorio.Veiculo),
		Tipo:       r.Tipo.Nome,
		Status:     r.Status.Label(),
		BadgeClass: r.Status.BadgeClass(),
	}
}

// StatItem é um contador do painel de estatísticas
type StatItem struct {
	Label      string
	BadgeClass string
	Count      int
}

// StatsView é o painel de estatísticas
type StatsView struct {
	Total int
	Items []StatItem
	Error string
}

// NewStatsView ordena os status do fluxo primeiro e os desconhecidos depois, por nome
func NewStatsView(s backend.Stats) StatsView {
	v := StatsView{Total: s.Total}
	seen := make(map[string]bool, len(s.PorStatus))
	for _, st := range relatorio.Statuses {
		if n, ok := s.PorStatus[string(st)]; ok {
			v.Items = append(v.Items, StatItem{Label: st.StatLabel(), BadgeClass: st.BadgeClass(), Count: n})
			seen[string(st)] = true
		}
	}
	var others []string
	for k := range s.PorStatus {
		if !seen[k] {
			others = append(others, k)
		}
	}
	sort.Strings(others)
	for _, k := range others {
		st := relatorio.Status(k)
		v.Items = append(v.Items, StatItem{Label: st.StatLabel(), BadgeClass: st.BadgeClass(), Count: s.PorStatus[k]})
	}
	return v
}

// SelectOption é uma opção dos selects de filtro
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// Page é a listagem administrativa montada por requisição
type Page struct {
	Filters    admindto.FilterQuery
	Rows       []Row
	Count      int
	Pagination Pagination
	Stats      StatsView
	Tipos      []SelectOption
	Porteiros  []SelectOption
	Statuses   []SelectOption
}

// PageURL é o link de uma página preservando os filtros
func (p Page) PageURL(n int) string { return ListURL(p.Filters, n) }

// ExportQuery é a query string dos filtros para os links de exportação
func (p Page) ExportQuery() string { return FilterValues(p.Filters).Encode() }

// ListPage busca listagem, estatísticas e opções de filtro em paralelo.
// Só a falha da listagem é fatal; o resto degrada.
func (s *AdminService) ListPage(ctx context.Context, cookie string, filters admindto.FilterQuery, page int) (Page, error) {
	filters = NormalizeFilters(filters)
	if page < 1 {
		page = 1
	}

	listQuery := FilterValues(filters)
	listQuery.Set("page", strconv.Itoa(page))
	listQuery.Set("per_page", strconv.Itoa(PageSize))

	var (
		list      backend.ReportPage
		stats     backend.Stats
		statsErr  error
		tipos     []backend.ReportType
		porteiros []backend.Porteiro
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = s.api.ListReports(gctx, cookie, listQuery)
		return err
	})
	g.Go(func() error {
		stats, statsErr = s.api.Stats(gctx, cookie, FilterValues(filters))
		return nil
	})
	g.Go(func() error {
		var err error
		if tipos, err = s.api.ListReportTypes(gctx, cookie); err != nil {
			logger.WithModule("admin").WithError(err).Warn("Falha ao carregar tipos para o filtro")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if porteiros, err = s.api.ListPorteiros(gctx, cookie); err != nil {
			logger.WithModule("admin").WithError(err).Warn("Falha ao carregar porteiros para o filtro")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Page{}, err
	}

	p := Page{
		Filters:    filters,
		Count:      list.Count,
		Pagination: PageWindow(TotalPages(list.Count), page),
		Stats:      NewStatsView(stats),
	}
	if statsErr != nil {
		p.Stats = StatsView{Error: "Erro ao carregar estatísticas"}
	}
	for _, r := range list.Reports {
		p.Rows = append(p.Rows, NewRow(r))
	}
	for _, t := range tipos {
		id := t.ID.String()
		p.Tipos = append(p.Tipos, SelectOption{Value: id, Label: t.Nome, Selected: id == filters.Tipo})
	}
	for _, pt := range porteiros {
		id := pt.ID.String()
		p.Porteiros = append(p.Porteiros, SelectOption{Value: id, Label: pt.Nome, Selected: id == filters.Porteiro})
	}
	for _, st := range relatorio.Statuses {
		p.Statuses = append(p.Statuses, SelectOption{Value: string(st), Label: st.Label(), Selected: string(st) == filters.Status})
	}
	return p, nil
}

// PhotoThumb é uma miniatura que abre o visualizador
type PhotoThumb struct {
	Index int
	URL   string
}

// Detail é a página de detalhe de um relatório
type Detail struct {
	Report      relatorio.Report
	Motorista   string
	Matricula   string
	Veiculo     string
	Motoes      string
	Photos      []PhotoThumb
	CanSendToDP bool
	BackURL     string
}

// NewDetail monta o detalhe com os campos extraídos
func NewDetail(r relatorio.Report, back string) Detail {
	d := Detail{
		Report:      r,
		Motorista:   r.DriverName(),
		Matricula:   relatorio.ExtractOr(r.Content, relatorio.Matricula),
		Veiculo:     relatorio.ExtractOr(r.Content, relatorio.Veiculo),
		Motoes:      relatorio.ExtractOr(r.Content, relatorio.Motoes),
		CanSendToDP: r.Status.CanAdvanceTo(relatorio.StatusEmDP),
		BackURL:     back,
	}
	for i, u := range r.Photos {
		d.Photos = append(d.Photos, PhotoThumb{Index: i, URL: u})
	}
	return d
}

// Detail busca um relatório pelo ID
func (s *AdminService) Detail(ctx context.Context, cookie, id string, filters admindto.FilterQuery) (Detail, error) {
	r, err := s.api.GetReport(ctx, cookie, id)
	if err != nil {
		return Detail{}, err
	}
	return NewDetail(r, ListURL(NormalizeFilters(filters), 1)), nil
}

// ByNumero busca um relatório pelo número da OS
func (s *AdminService) ByNumero(ctx context.Context, cookie, numeroOS string) (relatorio.Report, error) {
	return s.api.GetReportByNumero(ctx, cookie, numeroOS)
}

// SendToDP finaliza a revisão: PENDENTE → EM_DP
func (s *AdminService) SendToDP(ctx context.Context, cookie string, user session.User, id string) (relatorio.Report, error) {
	// o token cobre leitura, checagem do status e PUT
	release, err := s.guard.Acquire(ctx, inflight.Key(user.ID, inflight.ActionSendToDP, id))
	if err != nil {
		return relatorio.Report{}, err
	}
	defer release()

	r, err := s.api.GetReport(ctx, cookie, id)
	if err != nil {
		return relatorio.Report{}, err
	}
	if !r.Status.CanAdvanceTo(relatorio.StatusEmDP) {
		return r, common.ErrInvalidTransition
	}

	if err := s.api.UpdateStatus(ctx, cookie, id, backend.StatusUpdate{Status: relatorio.StatusEmDP}); err != nil {
		return r, err
	}

	if s.notifier != nil {
		s.notifier.Notify(notify.Event{
			RelatorioID: r.ID,
			NumeroOS:    r.NumeroOS,
			From:        r.Status,
			To:          relatorio.StatusEmDP,
			UserNome:    user.Nome,
			Setor:       user.Setor,
		})
	}
	return r, nil
}
