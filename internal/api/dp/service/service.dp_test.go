package dpsvc

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dpdto "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/dp/dto"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/inflight"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/notify"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

type fakeBackend struct {
	mu      sync.Mutex
	reports map[string]relatorio.Report
	queries []url.Values
	updates []backend.StatusUpdate
}

func (f *fakeBackend) ListReports(_ context.Context, _ string, q url.Values) (backend.ReportPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	var out backend.ReportPage
	for _, r := range f.reports {
		if string(r.Status) == q.Get("status") {
			out.Reports = append(out.Reports, r)
		}
	}
	out.Count = len(out.Reports)
	return out, nil
}

func (f *fakeBackend) GetReport(_ context.Context, _ string, id string) (relatorio.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return relatorio.Report{}, common.ErrNotFound
	}
	return r, nil
}

func (f *fakeBackend) UpdateStatus(_ context.Context, _ string, id string, u backend.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, u)
	r := f.reports[id]
	r.Status = u.Status
	f.reports[id] = r
	return nil
}

type recordingNotifier struct{ events []notify.Event }

func (r *recordingNotifier) Notify(ev notify.Event) { r.events = append(r.events, ev) }

func decodeReport(t *testing.T, js string) relatorio.Report {
	t.Helper()
	r, err := relatorio.Decode([]byte(js))
	require.NoError(t, err)
	return r
}

func newFixture(t *testing.T) (*fakeBackend, *recordingNotifier, *DPService) {
	t.Helper()
	fb := &fakeBackend{reports: map[string]relatorio.Report{
		"1": decodeReport(t, `{"id":1,"numero_os":"100","status":"EM_DP","criado_em":"2024-03-05T10:20:30","dados":"Motorista: João\nPlaca: ABC","tipos_relatorio":{"nome":"Avaria"}}`),
		"2": decodeReport(t, `{"id":2,"status":"PENDENTE"}`),
	}}
	n := &recordingNotifier{}
	return fb, n, NewDPService(fb, inflight.NewMemoryGuard(8, time.Minute), n)
}

func TestQueue(t *testing.T) {
	fb, _, svc := newFixture(t)

	cards, err := svc.Queue(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, fb.queries, 1)
	assert.Equal(t, url.Values{"status": {"EM_DP"}}, fb.queries[0])
	require.Len(t, cards, 1)
	assert.Equal(t, Card{ID: "1", NumeroOS: "100", Data: "05/03/2024 10:20:30", Motorista: "João", Tipo: "Avaria"}, cards[0])
}

func TestProcessFormDocuments(t *testing.T) {
	f := NewProcessForm(dpdto.ProcessInput{Documentos: []string{"a.pdf", " ", `C:\fakepath\b.pdf`}})
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, f.Documentos)

	assert.False(t, f.Apply(dpdto.AcaoAdicionar, "/tmp/c.png"))
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.png"}, f.Documentos)

	assert.False(t, f.Apply("remover:1", ""))
	assert.Equal(t, []string{"a.pdf", "c.png"}, f.Documentos)

	assert.False(t, f.Apply("remover:9", ""))
	assert.False(t, f.Apply("remover:x", ""))
	assert.Len(t, f.Documentos, 2)

	assert.True(t, f.Apply(dpdto.AcaoConfirmar, ""))
	assert.True(t, f.Apply("", ""))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		form  ProcessForm
		msg   string
		valor float64
	}{
		{name: "sem motorista", form: ProcessForm{Valor: "10"}, msg: MsgCamposObrigatorios},
		{name: "sem valor", form: ProcessForm{Motorista: "Ana"}, msg: MsgCamposObrigatorios},
		{name: "negativo", form: ProcessForm{Valor: "-5", Motorista: "Ana"}, msg: MsgValorInvalido},
		{name: "texto", form: ProcessForm{Valor: "abc", Motorista: "Ana"}, msg: MsgValorInvalido},
		{name: "NaN", form: ProcessForm{Valor: "NaN", Motorista: "Ana"}, msg: MsgValorInvalido},
		{name: "ponto", form: ProcessForm{Valor: "150.00", Motorista: " Ana "}, valor: 150},
		{name: "brasileiro", form: ProcessForm{Valor: "1.234,56", Motorista: "Ana"}, valor: 1234.56},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := tc.form.Validate()
			if tc.msg != "" {
				require.Error(t, err)
				assert.Equal(t, tc.msg, common.MessageOf(err))
				assert.Equal(t, common.StatusBadRequest, common.StatusOf(err))
				return
			}
			require.NoError(t, err)
			require.NotNil(t, u.Valor)
			assert.InDelta(t, tc.valor, *u.Valor, 0.001)
			assert.Equal(t, "Ana", u.Motorista)
			assert.Equal(t, relatorio.StatusEmTrafego, u.Status)
			assert.NotNil(t, u.Documentos)
		})
	}
}

func TestProcess(t *testing.T) {
	user := session.User{ID: "3", Nome: "Carla", Setor: session.SetorDP}

	t.Run("valor negativo não envia PUT", func(t *testing.T) {
		fb, n, svc := newFixture(t)
		_, err := svc.Process(context.Background(), "", user, "1", &ProcessForm{Valor: "-5", Motorista: "Ana"})
		require.Error(t, err)
		assert.Equal(t, MsgValorInvalido, common.MessageOf(err))
		assert.Empty(t, fb.updates)
		assert.Empty(t, n.events)
	})

	t.Run("150.00 vai como número", func(t *testing.T) {
		fb, n, svc := newFixture(t)
		form := &ProcessForm{Valor: "150.00", Motorista: " Ana ", Documentos: []string{"nota.pdf"}}
		_, err := svc.Process(context.Background(), "", user, "1", form)
		require.NoError(t, err)

		require.Len(t, fb.updates, 1)
		body, err := json.Marshal(fb.updates[0])
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"EM_TRAFEGO","valor":150,"motorista":"Ana","documentos":["nota.pdf"]}`, string(body))

		require.Len(t, n.events, 1)
		assert.Equal(t, relatorio.StatusEmDP, n.events[0].From)
		assert.Equal(t, relatorio.StatusEmTrafego, n.events[0].To)
		assert.Equal(t, "Ana", n.events[0].Motorista)
	})

	t.Run("status errado", func(t *testing.T) {
		fb, _, svc := newFixture(t)
		_, err := svc.Process(context.Background(), "", user, "2", &ProcessForm{Valor: "1", Motorista: "Ana"})
		assert.ErrorIs(t, err, common.ErrInvalidTransition)
		assert.Empty(t, fb.updates)
	})

	t.Run("ação em andamento", func(t *testing.T) {
		fb := &fakeBackend{reports: map[string]relatorio.Report{"1": decodeReport(t, `{"id":1,"status":"EM_DP"}`)}}
		guard := inflight.NewMemoryGuard(8, time.Minute)
		release, err := guard.Acquire(context.Background(), inflight.Key(user.ID, inflight.ActionProcessDP, "1"))
		require.NoError(t, err)
		defer release()

		svc := NewDPService(fb, guard, nil)
		_, err = svc.Process(context.Background(), "", user, "1", &ProcessForm{Valor: "1", Motorista: "Ana"})
		assert.ErrorIs(t, err, common.ErrInFlight)
		assert.Empty(t, fb.updates)
	})
}

func TestLoad(t *testing.T) {
	_, _, svc := newFixture(t)

	p, err := svc.Load(context.Background(), "", "1", nil)
	require.NoError(t, err)
	assert.True(t, p.CanApply)
	assert.Empty(t, p.Form.Valor)
	assert.Empty(t, p.Form.Documentos)

	_, err = svc.Load(context.Background(), "", "99", nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

// gatedBackend segura o PUT até o teste liberar e conta as leituras
type gatedBackend struct {
	*fakeBackend
	reads    int
	updating chan struct{}
	proceed  chan struct{}
}

func (g *gatedBackend) GetReport(ctx context.Context, cookie, id string) (relatorio.Report, error) {
	g.mu.Lock()
	g.reads++
	g.mu.Unlock()
	return g.fakeBackend.GetReport(ctx, cookie, id)
}

func (g *gatedBackend) UpdateStatus(ctx context.Context, cookie, id string, u backend.StatusUpdate) error {
	close(g.updating)
	<-g.proceed
	return g.fakeBackend.UpdateStatus(ctx, cookie, id, u)
}

func TestProcessDuplicateDuringUpdate(t *testing.T) {
	user := session.User{ID: "3", Nome: "Carla", Setor: session.SetorDP}
	fb, _, _ := newFixture(t)
	gb := &gatedBackend{fakeBackend: fb, updating: make(chan struct{}), proceed: make(chan struct{})}
	svc := NewDPService(gb, inflight.NewMemoryGuard(8, time.Minute), nil)

	first := make(chan error, 1)
	go func() {
		_, err := svc.Process(context.Background(), "", user, "1", &ProcessForm{Valor: "150", Motorista: "Ana"})
		first <- err
	}()
	<-gb.updating

	// segundo envio enquanto o PUT do primeiro está em andamento: nem lê o relatório
	_, err := svc.Process(context.Background(), "", user, "1", &ProcessForm{Valor: "999", Motorista: "Outro"})
	assert.ErrorIs(t, err, common.ErrInFlight)
	gb.mu.Lock()
	assert.Equal(t, 1, gb.reads)
	gb.mu.Unlock()

	close(gb.proceed)
	require.NoError(t, <-first)

	// depois do primeiro PUT o status já mudou
	_, err = svc.Process(context.Background(), "", user, "1", &ProcessForm{Valor: "999", Motorista: "Outro"})
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	require.Len(t, fb.updates, 1)
	assert.Equal(t, "Ana", fb.updates[0].Motorista)
	require.NotNil(t, fb.updates[0].Valor)
	assert.InDelta(t, 150, *fb.updates[0].Valor, 0.001)
}
