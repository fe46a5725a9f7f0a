package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
)

// Channel entrega um evento por um meio específico
type Channel interface {
	Name() string
	Send(ctx context.Context, ev Event) error
}

var emailTmpl = template.Must(template.New("email").Parse(`<p>O relatório <strong>OS {{.NumeroOS}}</strong> (ID {{.RelatorioID}}) mudou de status.</p>
<p>{{.FromLabel}} &rarr; <strong>{{.ToLabel}}</strong></p>
<ul>
<li>Responsável: {{.UserNome}} ({{.Setor}})</li>
{{- if .Motorista}}<li>Motorista: {{.Motorista}}</li>{{end}}
{{- if .Valor}}<li>Valor: {{.ValorText}}</li>{{end}}
<li>Data: {{.AtText}}</li>
</ul>`))

// EmailChannel envia o aviso por SMTP
type EmailChannel struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Name implementa Channel
func (e *EmailChannel) Name() string { return "email" }

// Send implementa Channel
func (e *EmailChannel) Send(_ context.Context, ev Event) error {
	var body bytes.Buffer
	if err := emailTmpl.Execute(&body, ev); err != nil {
		return fmt.Errorf("renderizar e-mail: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", e.From)
	msg.SetHeader("To", e.To...)
	msg.SetHeader("Subject", ev.Subject())
	msg.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(e.Host, e.Port, e.Username, e.Password)
	return dialer.DialAndSend(msg)
}

// WebhookChannel publica o evento como JSON numa URL
type WebhookChannel struct {
	URL    string
	Client *http.Client
}

// Name implementa Channel
func (w *WebhookChannel) Name() string { return "webhook" }

// Send implementa Channel
func (w *WebhookChannel) Send(ctx context.Context, ev Event) error {
	payload := map[string]interface{}{
		"evento":       "status_relatorio",
		"relatorio_id": ev.RelatorioID,
		"numero_os":    ev.NumeroOS,
		"de":           ev.From,
		"para":         ev.To,
		"usuario":      ev.UserNome,
		"setor":        ev.Setor,
		"timestamp":    ev.At.Unix(),
	}
	if ev.Valor != nil {
		payload["valor"] = *ev.Valor
	}
	if ev.Motorista != "" {
		payload["motorista"] = ev.Motorista
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook respondeu com status %d", resp.StatusCode)
	}
	return nil
}

// Event é uma mudança de status concluída no backend
type Event struct {
	RelatorioID string
	NumeroOS    string
	From        relatorio.Status
	To          relatorio.Status
	UserNome    string
	Setor       string
	Motorista   string
	Valor       *float64
	At          time.Time
}

// Subject é o assunto do e-mail
func (ev Event) Subject() string {
	return fmt.Sprintf("Relatório OS %s: %s", ev.NumeroOS, ev.To.Label())
}

// FromLabel é o rótulo do status anterior
func (ev Event) FromLabel() string { return ev.From.Label() }

// ToLabel é o rótulo do novo status
func (ev Event) ToLabel() string { return ev.To.Label() }

// ValorText é o valor formatado em reais
func (ev Event) ValorText() string { return relatorio.FormatCurrency(ev.Valor) }

// AtText é a data do evento no fuso de Brasília
func (ev Event) AtText() string { return relatorio.FormatDateTime(&ev.At) }
