// Package dpsvc - Departamento Pessoal: fila de relatórios EM_DP e processamento para o tráfego.
package dpsvc

import (
	"context"
	"net/url"
	"path"
	"strconv"
	"strings"

	dpdto "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/dp/dto"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/inflight"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/notify"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

// Mensagens de validação do formulário
const (
	MsgCamposObrigatorios = "Por favor, preencha o valor e o motorista."
	MsgValorInvalido      = "Valor inválido."
)

// Backend é a parte do cliente REST usada pelo DP
type Backend interface {
	ListReports(ctx context.Context, cookie string, query url.Values) (backend.ReportPage, error)
	GetReport(ctx context.Context, cookie, id string) (relatorio.Report, error)
	UpdateStatus(ctx context.Context, cookie, id string, update backend.StatusUpdate) error
}

// Notifier recebe as mudanças de status concluídas
type Notifier interface {
	Notify(ev notify.Event)
}

// DPService monta a fila e processa relatórios
type DPService struct {
	api      Backend
	guard    inflight.Guard
	notifier Notifier
}

// NewDPService cria o serviço
func NewDPService(api Backend, guard inflight.Guard, notifier Notifier) *DPService {
	return &DPService{api: api, guard: guard, notifier: notifier}
}

// Card é um cartão da fila do DP
type Card struct {
	ID        string
	NumeroOS  string
	Data      string
	Motorista string
	Tipo      string
}

// NewCard monta o cartão; o motorista vem do campo próprio, senão do conteúdo, senão N/A
func NewCard(r relatorio.Report) Card {
	return Card{
		ID:        r.ID,
		NumeroOS:  r.NumeroOS,
		Data:      r.CreatedAtText(),
		Motorista: r.DriverName(),
		Tipo:      r.Tipo.Nome,
	}
}

// Queue lista os relatórios EM_DP
func (s *DPService) Queue(ctx context.Context, cookie string) ([]Card, error) {
	page, err := s.api.ListReports(ctx, cookie, url.Values{"status": {string(relatorio.StatusEmDP)}})
	if err != nil {
		return nil, err
	}
	cards := make([]Card, 0, len(page.Reports))
	for _, r := range page.Reports {
		cards = append(cards, NewCard(r))
	}
	return cards, nil
}

// ProcessForm é o estado do formulário de processamento, reconstruído a cada POST
type ProcessForm struct {
	Valor      string
	Motorista  string
	Documentos []string
	Error      string
}

// NewProcessForm copia o que veio do navegador
func NewProcessForm(in dpdto.ProcessInput) *ProcessForm {
	f := &ProcessForm{Valor: in.Valor, Motorista: in.Motorista}
	for _, d := range in.Documentos {
		f.AddDocument(d)
	}
	return f
}

// AddDocument acrescenta o nome de um arquivo; caminhos viram só o nome e vazios são ignorados
func (f *ProcessForm) AddDocument(name string) {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return
	}
	name = path.Base(name)
	if name == "." || name == "/" {
		return
	}
	f.Documentos = append(f.Documentos, name)
}

// RemoveDocument remove pelo índice; índice fora da lista não faz nada
func (f *ProcessForm) RemoveDocument(i int) {
	if i < 0 || i >= len(f.Documentos) {
		return
	}
	f.Documentos = append(f.Documentos[:i], f.Documentos[i+1:]...)
}

// Apply executa adicionar/remover; retorna true quando a ação é confirmar
func (f *ProcessForm) Apply(acao, novo string) bool {
	switch {
	case acao == dpdto.AcaoAdicionar:
		f.AddDocument(novo)
	case strings.HasPrefix(acao, dpdto.AcaoRemoverPfx):
		if i, err := strconv.Atoi(strings.TrimPrefix(acao, dpdto.AcaoRemoverPfx)); err == nil {
			f.RemoveDocument(i)
		}
	default:
		return true
	}
	return false
}

// Validate exige valor e motorista e converte o valor; negativo ou não numérico é recusado
func (f *ProcessForm) Validate() (backend.StatusUpdate, error) {
	valor := strings.TrimSpace(f.Valor)
	motorista := strings.TrimSpace(f.Motorista)
	if valor == "" || motorista == "" {
		return backend.StatusUpdate{}, common.NewError(common.ErrCodeValidationInput, MsgCamposObrigatorios, common.StatusBadRequest, nil)
	}
	v, err := relatorio.ParseValor(valor)
	if err != nil || v < 0 {
		return backend.StatusUpdate{}, common.NewError(common.ErrCodeValidationFormat, MsgValorInvalido, common.StatusBadRequest, nil)
	}

	docs := f.Documentos
	if docs == nil {
		docs = []string{}
	}
	return backend.StatusUpdate{
		Status:     relatorio.StatusEmTrafego,
		Valor:      &v,
		Motorista:  motorista,
		Documentos: docs,
	}, nil
}

// ProcessPage é a página de processamento
type ProcessPage struct {
	Report   relatorio.Report
	Form     *ProcessForm
	CanApply bool
}

// Load busca o relatório para a página de processamento
func (s *DPService) Load(ctx context.Context, cookie, id string, form *ProcessForm) (ProcessPage, error) {
	r, err := s.api.GetReport(ctx, cookie, id)
	if err != nil {
		return ProcessPage{}, err
	}
	if form == nil {
		form = &ProcessForm{}
	}
	return ProcessPage{Report: r, Form: form, CanApply: r.Status.CanAdvanceTo(relatorio.StatusEmTrafego)}, nil
}

// Process valida o formulário e avança EM_DP → EM_TRAFEGO; nada é enviado se a validação falhar
func (s *DPService) Process(ctx context.Context, cookie string, user session.User, id string, form *ProcessForm) (relatorio.Report, error) {
	update, err := form.Validate()
	if err != nil {
		return relatorio.Report{}, err
	}

	// o token cobre leitura, checagem do status e PUT
	release, err := s.guard.Acquire(ctx, inflight.Key(user.ID, inflight.ActionProcessDP, id))
	if err != nil {
		return relatorio.Report{}, err
	}
	defer release()

	r, err := s.api.GetReport(ctx, cookie, id)
	if err != nil {
		return relatorio.Report{}, err
	}
	if !r.Status.CanAdvanceTo(relatorio.StatusEmTrafego) {
		return r, common.ErrInvalidTransition
	}

	if err := s.api.UpdateStatus(ctx, cookie, id, update); err != nil {
		return r, err
	}

	if s.notifier != nil {
		s.notifier.Notify(notify.Event{
			RelatorioID: r.ID,
			NumeroOS:    r.NumeroOS,
			From:        r.Status,
			To:          relatorio.StatusEmTrafego,
			UserNome:    user.Nome,
			Setor:       user.Setor,
			Motorista:   update.Motorista,
			Valor:       update.Valor,
		})
	}
	return r, nil
}
