package intakesvc

import (
	"context"
	"strings"
	"time"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/inflight"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
)

// Backend é a parte do cliente REST usada pelo porteiro
type Backend interface {
	ListReportTypes(ctx context.Context, cookie string) ([]backend.ReportType, error)
	CreateReport(ctx context.Context, cookie string, req backend.CreateReportRequest) (backend.CreateReportResult, error)
}

// IntakeService carrega os tipos e envia relatórios
type IntakeService struct {
	api   Backend
	guard inflight.Guard
}

// NewIntakeService cria o serviço
func NewIntakeService(api Backend, guard inflight.Guard) *IntakeService {
	return &IntakeService{api: api, guard: guard}
}

// TypeOption é um tipo no seletor da página, com erro de esquema quando houver
type TypeOption struct {
	ReportType
	SchemaError string
}

// ListTypes busca os tipos de relatório; esquemas inválidos viram aviso no formulário
func (s *IntakeService) ListTypes(ctx context.Context, cookie string) ([]TypeOption, error) {
	raw, err := s.api.ListReportTypes(ctx, cookie)
	if err != nil {
		return nil, err
	}
	out := make([]TypeOption, 0, len(raw))
	for _, bt := range raw {
		t, err := FromBackend(bt)
		opt := TypeOption{ReportType: t}
		if err != nil {
			logger.WithModule("intake").WithField("tipo_id", bt.ID.String()).WithError(err).Warn("Esquema de campos inválido")
			opt.SchemaError = "Erro ao carregar formulário: " + err.Error()
		}
		out = append(out, opt)
	}
	return out, nil
}

// FindType localiza um tipo pelo ID
func FindType(types []TypeOption, id string) (TypeOption, bool) {
	for _, t := range types {
		if t.ID == id {
			return t, true
		}
	}
	return TypeOption{}, false
}

// Result é o desfecho de um envio bem-sucedido
type Result struct {
	ID          string
	Texto       string // Texto com FOTO<n> já trocados pelas URLs
	Link        string // Link de compartilhamento ("" quando o tipo não tem destino)
	FotosSalvas int
	Message     string
}

// Submit valida o rascunho, envia ao backend e resolve as fotos no texto final
func (s *IntakeService) Submit(ctx context.Context, cookie, userID string, d *Draft, now time.Time) (Result, error) {
	if err := d.Validate(); err != nil {
		return Result{}, err
	}

	texto := d.Preview(now)
	req, err := d.Payload(texto)
	if err != nil {
		return Result{}, err
	}

	release, err := s.guard.Acquire(ctx, inflight.Key(userID, inflight.ActionSubmitReport, d.Tipo.ID))
	if err != nil {
		return Result{}, err
	}
	defer release()

	created, err := s.api.CreateReport(ctx, cookie, req)
	if err != nil {
		return Result{}, err
	}

	final := ResolvePlaceholders(texto, created.URLs())
	destino := d.Tipo.DestinatarioWhatsapp
	if destino != "" && !strings.HasPrefix(destino, "http") && !ValidWhatsapp(destino) {
		logger.WithModule("intake").WithFields(map[string]interface{}{
			"tipo_id": d.Tipo.ID,
			"destino": destino,
		}).Warn("Destino de WhatsApp fora do formato 55DDDNÚMERO")
	}

	fotos := created.FotosSalvas
	if fotos == 0 {
		fotos = len(created.FotosURLs)
	}
	return Result{
		ID:          created.ID.String(),
		Texto:       final,
		Link:        ShareLink(destino, final),
		FotosSalvas: fotos,
		Message:     created.Message,
	}, nil
}

// FormPage é o view-model da página do porteiro
type FormPage struct {
	Tipos      []TypeOption
	SelectedID string
	Tipo       *TypeOption
	Inputs     []Input
	Preview    string
	Tocados    string
}

// NewFormPage monta a página; sem rascunho, só o seletor de tipos aparece
func NewFormPage(types []TypeOption, d *Draft, now time.Time) FormPage {
	p := FormPage{Tipos: types}
	if d == nil {
		return p
	}
	p.SelectedID = d.Tipo.ID
	if t, ok := FindType(types, d.Tipo.ID); ok {
		p.Tipo = &t
		if t.SchemaError != "" {
			return p
		}
	}
	p.Inputs = BuildForm(d)
	p.Preview = d.Preview(now)
	p.Tocados = d.TouchedList()
	return p
}
