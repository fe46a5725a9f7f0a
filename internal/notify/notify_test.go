package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VictorDevAgencia74/sistema-relatorios/config"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
)

type recordingChannel struct {
	mu     sync.Mutex
	events []Event
	panics bool
}

func (r *recordingChannel) Name() string { return "teste" }

func (r *recordingChannel) Send(_ context.Context, ev Event) error {
	if r.panics {
		panic("canal quebrado")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func TestNotifyFiltersByStatus(t *testing.T) {
	ch := &recordingChannel{}
	n := New(time.Second, []relatorio.Status{relatorio.StatusCobrado}, ch)

	n.Notify(Event{RelatorioID: "1", To: relatorio.StatusEmDP})
	n.Notify(Event{RelatorioID: "2", To: relatorio.StatusCobrado})
	n.Wait()

	require.Len(t, ch.events, 1)
	assert.Equal(t, "2", ch.events[0].RelatorioID)
	assert.False(t, ch.events[0].At.IsZero())
}

func TestNotifyRecoversFromPanic(t *testing.T) {
	good := &recordingChannel{}
	n := New(time.Second, nil, &recordingChannel{panics: true}, good)

	assert.NotPanics(t, func() {
		n.Notify(Event{RelatorioID: "1", To: relatorio.StatusEmDP})
		n.Wait()
	})
}

func TestDisabledNotifier(t *testing.T) {
	var n *Notifier
	assert.False(t, n.Enabled())
	n.Notify(Event{})
	n.Wait()

	assert.False(t, New(time.Second, nil).Enabled())
}

func TestWebhookChannel(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	valor := 150.0
	err := (&WebhookChannel{URL: srv.URL}).Send(context.Background(), Event{
		RelatorioID: "9",
		NumeroOS:    "123",
		From:        relatorio.StatusEmDP,
		To:          relatorio.StatusEmTrafego,
		Valor:       &valor,
		Motorista:   "Ana",
		At:          time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "9", got["relatorio_id"])
	assert.Equal(t, "EM_TRAFEGO", got["para"])
	assert.Equal(t, 150.0, got["valor"])
	assert.Equal(t, "Ana", got["motorista"])

	t.Run("status de erro", func(t *testing.T) {
		fail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer fail.Close()
		err := (&WebhookChannel{URL: fail.URL}).Send(context.Background(), Event{At: time.Now()})
		assert.Error(t, err)
	})
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Configuration{
		SMTPHost:       "smtp.exemplo.com",
		SMTPPort:       587,
		NotifyEmails:   "a@x.com, b@x.com",
		NotifyWebhook:  "http://hook",
		NotifyTimeout:  5,
		NotifyOnStatus: "em_dp,COBRADO",
	}
	n := NewFromConfig(cfg)
	assert.Equal(t, []string{"email", "webhook"}, n.Channels())
	assert.True(t, n.statuses[relatorio.StatusEmDP])
	assert.True(t, n.statuses[relatorio.StatusCobrado])
	assert.False(t, n.statuses[relatorio.StatusEmTrafego])

	assert.False(t, NewFromConfig(&config.Configuration{}).Enabled())
}

func TestEventSubject(t *testing.T) {
	ev := Event{NumeroOS: "77", To: relatorio.StatusCobrado}
	assert.Equal(t, "Relatório OS 77: Cobrado", ev.Subject())
}
