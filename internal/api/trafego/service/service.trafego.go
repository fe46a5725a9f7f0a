// Package trafegosvc - Tráfego: fila de cobranças EM_TRAFEGO e fechamento como COBRADO.
package trafegosvc

import (
	"context"
	"net/url"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/inflight"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/notify"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

const (
	// ConfirmText é a pergunta exibida antes de marcar a cobrança
	ConfirmText = "Tem certeza que deseja marcar esta cobrança como realizada?"
	// SemDocumentos aparece no cartão quando o DP não anexou nada
	SemDocumentos = "Nenhum documento anexado"
	// ConfirmValue é o valor de confirmar que libera a ação
	ConfirmValue = "sim"
)

// ErrNotConfirmed indica um POST sem confirmação; o handler mostra a página de confirmação
var ErrNotConfirmed = common.NewError(common.ErrCodeValidationInput, ConfirmText, common.StatusBadRequest, nil)

// Backend é a parte do cliente REST usada pelo tráfego
type Backend interface {
	ListReports(ctx context.Context, cookie string, query url.Values) (backend.ReportPage, error)
	GetReport(ctx context.Context, cookie, id string) (relatorio.Report, error)
	UpdateStatus(ctx context.Context, cookie, id string, update backend.StatusUpdate) error
}

// Notifier recebe as mudanças de status concluídas
type Notifier interface {
	Notify(ev notify.Event)
}

// TrafegoService monta a fila e fecha cobranças
type TrafegoService struct {
	api      Backend
	guard    inflight.Guard
	notifier Notifier
}

// NewTrafegoService cria o serviço
func NewTrafegoService(api Backend, guard inflight.Guard, notifier Notifier) *TrafegoService {
	return &TrafegoService{api: api, guard: guard, notifier: notifier}
}

// Card é um cartão de cobrança
type Card struct {
	ID         string
	NumeroOS   string
	Data       string
	Tipo       string
	Motorista  string
	Valor      string
	Documentos []string
}

// HasDocumentos informa se há documentos a listar
func (c Card) HasDocumentos() bool { return len(c.Documentos) > 0 }

// NewCard monta o cartão de cobrança
func NewCard(r relatorio.Report) Card {
	return Card{
		ID:         r.ID,
		NumeroOS:   r.NumeroOS,
		Data:       r.CreatedAtText(),
		Tipo:       r.Tipo.Nome,
		Motorista:  r.DriverName(),
		Valor:      r.ValorText(),
		Documentos: r.Documentos,
	}
}

// Queue é a fila do tráfego
type Queue struct {
	Cards []Card
}

// Empty informa se não há cobranças pendentes
func (q Queue) Empty() bool { return len(q.Cards) == 0 }

// Queue lista os relatórios EM_TRAFEGO
func (s *TrafegoService) Queue(ctx context.Context, cookie string) (Queue, error) {
	page, err := s.api.ListReports(ctx, cookie, url.Values{"status": {string(relatorio.StatusEmTrafego)}})
	if err != nil {
		return Queue{}, err
	}
	q := Queue{Cards: make([]Card, 0, len(page.Reports))}
	for _, r := range page.Reports {
		q.Cards = append(q.Cards, NewCard(r))
	}
	return q, nil
}

// Confirmation é a página de confirmação servida quando o navegador não confirmou
type Confirmation struct {
	Card     Card
	Question string
	CanApply bool
}

// Confirmation busca o relatório para a página de confirmação
func (s *TrafegoService) Confirmation(ctx context.Context, cookie, id string) (Confirmation, error) {
	r, err := s.api.GetReport(ctx, cookie, id)
	if err != nil {
		return Confirmation{}, err
	}
	return Confirmation{
		Card:     NewCard(r),
		Question: ConfirmText,
		CanApply: r.Status.CanAdvanceTo(relatorio.StatusCobrado),
	}, nil
}

// MarkBilled fecha a cobrança: EM_TRAFEGO → COBRADO, só com confirmar=sim
func (s *TrafegoService) MarkBilled(ctx context.Context, cookie string, user session.User, id, confirmar string) (relatorio.Report, error) {
	if confirmar != ConfirmValue {
		return relatorio.Report{}, ErrNotConfirmed
	}

	// o token cobre leitura, checagem do status e PUT
	release, err := s.guard.Acquire(ctx, inflight.Key(user.ID, inflight.ActionMarkBilled, id))
	if err != nil {
		return relatorio.Report{}, err
	}
	defer release()

	r, err := s.api.GetReport(ctx, cookie, id)
	if err != nil {
		return relatorio.Report{}, err
	}
	if !r.Status.CanAdvanceTo(relatorio.StatusCobrado) {
		return r, common.ErrInvalidTransition
	}

	if err := s.api.UpdateStatus(ctx, cookie, id, backend.StatusUpdate{Status: relatorio.StatusCobrado}); err != nil {
		return r, err
	}

	if s.notifier != nil {
		s.notifier.Notify(notify.Event{
			RelatorioID: r.ID,
			NumeroOS:    r.NumeroOS,
			From:        r.Status,
			To:          relatorio.StatusCobrado,
			UserNome:    user.Nome,
			Setor:       user.Setor,
			Motorista:   r.DriverName(),
			Valor:       r.Valor,
		})
	}
	return r, nil
}
