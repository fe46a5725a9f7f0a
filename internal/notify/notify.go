// Package notify avisa por e-mail e/ou webhook quando um relatório muda de status.
// O envio é assíncrono e nunca bloqueia nem derruba a requisição que o disparou.
package notify

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/VictorDevAgencia74/sistema-relatorios/config"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
)

// Notifier despacha eventos para os canais configurados
type Notifier struct {
	channels []Channel
	statuses map[relatorio.Status]bool
	timeout  time.Duration
	wg       sync.WaitGroup
}

// New cria o notifier; statuses vazio significa todos
func New(timeout time.Duration, statuses []relatorio.Status, channels ...Channel) *Notifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	n := &Notifier{channels: channels, timeout: timeout}
	if len(statuses) > 0 {
		n.statuses = make(map[relatorio.Status]bool, len(statuses))
		for _, s := range statuses {
			n.statuses[s] = true
		}
	}
	return n
}

// NewFromConfig monta os canais a partir da configuração; sem SMTP nem webhook o notifier fica inerte
func NewFromConfig(cfg *config.Configuration) *Notifier {
	timeout := time.Duration(cfg.NotifyTimeout) * time.Second
	var channels []Channel

	if cfg.SMTPHost != "" {
		if to := config.SplitList(cfg.NotifyEmails); len(to) > 0 {
			channels = append(channels, &EmailChannel{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				Username: cfg.SMTPUsername,
				Password: cfg.SMTPPassword,
				From:     cfg.SMTPFrom,
				To:       to,
			})
		}
	}
	if cfg.NotifyWebhook != "" {
		channels = append(channels, &WebhookChannel{
			URL:    cfg.NotifyWebhook,
			Client: &http.Client{Timeout: timeout},
		})
	}

	var statuses []relatorio.Status
	for _, s := range config.SplitList(cfg.NotifyOnStatus) {
		statuses = append(statuses, relatorio.Status(strings.ToUpper(s)))
	}
	return New(timeout, statuses, channels...)
}

// Enabled informa se há algum canal configurado
func (n *Notifier) Enabled() bool {
	return n != nil && len(n.channels) > 0
}

// Channels retorna os nomes dos canais ativos
func (n *Notifier) Channels() []string {
	if n == nil {
		return nil
	}
	names := make([]string, len(n.channels))
	for i, ch := range n.channels {
		names[i] = ch.Name()
	}
	return names
}

// Notify dispara o evento em segundo plano
func (n *Notifier) Notify(ev Event) {
	if !n.Enabled() {
		return
	}
	if n.statuses != nil && !n.statuses[ev.To] {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("notify").WithField("panic", r).Error("Panic ao enviar notificação")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		for _, ch := range n.channels {
			if err := ch.Send(ctx, ev); err != nil {
				logger.WithModule("notify").WithFields(map[string]interface{}{
					"canal":        ch.Name(),
					"relatorio_id": ev.RelatorioID,
					"status":       string(ev.To),
				}).WithError(err).Warn("Falha ao enviar notificação")
			}
		}
	}()
}

// Wait aguarda os envios pendentes (encerramento do servidor e testes)
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}
