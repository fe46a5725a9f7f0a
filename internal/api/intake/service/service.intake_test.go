package intakesvc

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/inflight"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
)

// png mínimo de 1x1
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
}

const avariaCampos = `[
	{"name":"placa","label":"Placa","type":"text","required":true},
	{"name":"turno","label":"Turno","type":"select","options":["Manhã","Tarde"]},
	{"name":"setor","label":"Setor","type":"select","required":true,"options":["A","B"]},
	{"name":"km","label":"KM","type":"number","default":0},
	{"name":"obs","label":"Observação","type":"estranho"},
	{"name":"frente","label":"Frente","type":"file","required":true},
	{"name":"traseira","label":"Traseira","type":"file"}
]`

func avariaType(t *testing.T) ReportType {
	t.Helper()
	tp, err := FromBackend(backend.ReportType{ID: "3", Nome: "Avaria", Campos: json.RawMessage(avariaCampos), DestinatarioWhatsapp: "5511999998888"})
	require.NoError(t, err)
	return tp
}

func TestParseCampos(t *testing.T) {
	t.Run("array ou string com array", func(t *testing.T) {
		a, err := ParseCampos(json.RawMessage(avariaCampos))
		require.NoError(t, err)
		quoted, _ := json.Marshal(avariaCampos)
		b, err := ParseCampos(quoted)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		require.Len(t, a, 7)
		assert.Equal(t, "0", a[3].Default)
		assert.Equal(t, KindText, a[4].Type)
	})

	t.Run("vazio", func(t *testing.T) {
		for _, raw := range []string{``, `null`, `""`, `[]`} {
			c, err := ParseCampos(json.RawMessage(raw))
			assert.NoError(t, err, raw)
			assert.Empty(t, c, raw)
		}
	})

	t.Run("inválido", func(t *testing.T) {
		_, err := ParseCampos(json.RawMessage(`"não é json"`))
		assert.Error(t, err)
	})
}

func TestBuildForm(t *testing.T) {
	d := NewDraft(avariaType(t), "João")
	inputs := BuildForm(d)

	require.Len(t, inputs, 7)
	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	assert.Equal(t, []string{"placa", "turno", "setor", "km", "obs", "frente", "traseira"}, names)

	assert.True(t, inputs[0].Required)
	assert.True(t, inputs[1].EmptyOption, "select opcional tem Selecione...")
	assert.False(t, inputs[2].EmptyOption, "select obrigatório não tem opção vazia")
	assert.True(t, inputs[5].IsFile())
	assert.False(t, inputs[5].Required, "required não vale para foto")
	assert.Len(t, inputs[1].Options, 2)
}

func TestPreview(t *testing.T) {
	d := NewDraft(avariaType(t), "")
	d.Set("placa", "ABC1D23")
	require.NoError(t, d.AttachPhoto("traseira", "t.png", pngBytes))

	now := time.Date(2024, 3, 5, 14, 7, 9, 0, relatorio.Location)
	want := "AVARIA\n\n" +
		"Data: 05/03/2024 14:07:09\n" +
		"Porteiro: Não identificado\n\n" +
		"• Placa: ABC1D23\n" +
		"• Turno: \n" +
		"• Setor: \n" +
		"• KM: 0\n" +
		"• Observação: \n" +
		"\nFotos da avaria:" +
		"\n- Traseira: FOTO1"
	assert.Equal(t, want, d.Preview(now))

	t.Run("default some depois de editado", func(t *testing.T) {
		d.Set("km", "")
		assert.Contains(t, d.Preview(now), "• KM: \n")
	})

	t.Run("numeração segue a ordem dos campos", func(t *testing.T) {
		require.NoError(t, d.AttachPhoto("frente", "f.png", pngBytes))
		p := d.Preview(now)
		assert.Contains(t, p, "- Frente: FOTO1\n- Traseira: FOTO2")

		d.RemovePhoto("frente")
		assert.Contains(t, d.Preview(now), "- Traseira: FOTO1")
	})
}

func TestAttachPhotoRejectsNonImage(t *testing.T) {
	d := NewDraft(avariaType(t), "")
	assert.Error(t, d.AttachPhoto("frente", "x.txt", []byte("texto puro")))
	assert.Error(t, d.AttachPhoto("placa", "x.png", pngBytes))
	assert.Empty(t, d.Photos)
}

func TestValidate(t *testing.T) {
	d := NewDraft(avariaType(t), "")
	err := d.Validate()
	require.Error(t, err)
	assert.Equal(t, "Preencha os campos obrigatórios: Placa, Setor", common.MessageOf(err))

	d.Set("placa", "X")
	d.Set("setor", "A")
	assert.NoError(t, d.Validate(), "foto obrigatória não bloqueia")
}

func TestPayloadPhotoOrder(t *testing.T) {
	d := NewDraft(avariaType(t), "")
	require.NoError(t, d.AttachPhoto("traseira", "t.png", pngBytes))
	require.NoError(t, d.AttachPhoto("frente", "f.png", pngBytes))

	req, err := d.Payload("texto")
	require.NoError(t, err)
	assert.Equal(t, 3, req.TipoID)
	assert.Equal(t, "5511999998888", req.DestinatarioWhatsapp)
	require.Len(t, req.Fotos, 2)
	assert.Equal(t, "frente", req.Fotos[0].CampoNome)
	assert.Equal(t, "traseira", req.Fotos[1].CampoNome)
	assert.True(t, strings.HasPrefix(req.Fotos[0].Base64, "data:image/png;base64,"))
}

func TestResolvePlaceholders(t *testing.T) {
	urls := make([]string, 10)
	for i := range urls {
		urls[i] = "u" + string(rune('a'+i))
	}
	assert.Equal(t, "ua uj", ResolvePlaceholders("FOTO1 FOTO10", urls))
	assert.Equal(t, "x: https://cdn/x.jpg e FOTO2", ResolvePlaceholders("x: FOTO1 e FOTO2", []string{"https://cdn/x.jpg"}))
	assert.Equal(t, "FOTO1", ResolvePlaceholders("FOTO1", nil))
}

func TestShareLink(t *testing.T) {
	assert.Equal(t, "", ShareLink("", "oi"))
	assert.Equal(t, "https://grupo.exemplo", ShareLink("https://grupo.exemplo", "oi"))
	assert.Equal(t, "https://wa.me/5511999998888?text=Ol%C3%A1%20mundo%0A%26", ShareLink("5511999998888", "Olá mundo\n&"))
}

func TestValidWhatsapp(t *testing.T) {
	assert.True(t, ValidWhatsapp("5511999998888"))
	assert.False(t, ValidWhatsapp("11999998888"))
	assert.False(t, ValidWhatsapp("55119999988889"))
}

type fakeBackend struct {
	types []backend.ReportType
	got   *backend.CreateReportRequest
	res   backend.CreateReportResult
	err   error
	block chan struct{}
}

func (f *fakeBackend) ListReportTypes(context.Context, string) ([]backend.ReportType, error) {
	return f.types, nil
}

func (f *fakeBackend) CreateReport(_ context.Context, _ string, req backend.CreateReportRequest) (backend.CreateReportResult, error) {
	if f.block != nil {
		<-f.block
	}
	f.got = &req
	return f.res, f.err
}

func TestSubmit(t *testing.T) {
	fb := &fakeBackend{res: backend.CreateReportResult{
		Success:   true,
		ID:        "99",
		FotosURLs: []backend.PhotoURL{{URL: "https://cdn/x.jpg"}},
	}}
	svc := NewIntakeService(fb, inflight.NewMemoryGuard(8, time.Minute))

	d := NewDraft(avariaType(t), "João")
	d.Set("placa", "ABC")
	d.Set("setor", "A")
	require.NoError(t, d.AttachPhoto("frente", "f.png", pngBytes))

	res, err := svc.Submit(context.Background(), "session=abc", "7", d, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "99", res.ID)
	assert.Contains(t, res.Texto, "- Frente: https://cdn/x.jpg")
	assert.NotContains(t, res.Texto, "FOTO1")
	assert.Equal(t, 1, res.FotosSalvas)
	assert.True(t, strings.HasPrefix(res.Link, "https://wa.me/5511999998888?text="))
	require.NotNil(t, fb.got)
	assert.Contains(t, fb.got.Dados, "FOTO1")

	t.Run("inválido não chama o backend", func(t *testing.T) {
		fb.got = nil
		_, err := svc.Submit(context.Background(), "", "7", NewDraft(avariaType(t), ""), time.Now())
		assert.Error(t, err)
		assert.Nil(t, fb.got)
	})
}

func TestSubmitInFlight(t *testing.T) {
	fb := &fakeBackend{block: make(chan struct{}), res: backend.CreateReportResult{Success: true}}
	guard := inflight.NewMemoryGuard(8, time.Minute)
	svc := NewIntakeService(fb, guard)

	d := NewDraft(avariaType(t), "")
	d.Set("placa", "ABC")
	d.Set("setor", "A")

	// segura a chave como se outro envio estivesse em andamento
	release, err := guard.Acquire(context.Background(), inflight.Key("7", inflight.ActionSubmitReport, "3"))
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "", "7", d, time.Now())
	assert.ErrorIs(t, err, common.ErrInFlight)
	assert.Nil(t, fb.got)

	release()
	close(fb.block)
	_, err = svc.Submit(context.Background(), "", "7", d, time.Now())
	assert.NoError(t, err)
}

func TestFillFromForm(t *testing.T) {
	d := NewDraft(avariaType(t), "Ana")
	d.FillFromForm(map[string]string{
		"placa": "",
		"setor": "B",
		"km":    "0",
		"obs":   "amassado",
	}, "placa, turno")

	assert.True(t, d.Touched["placa"], "tocado mesmo vazio")
	assert.True(t, d.Touched["turno"], "tocado sem valor enviado")
	assert.Equal(t, "B", d.Values["setor"])
	assert.False(t, d.Touched["km"], "igual ao default não conta como edição")
	assert.Equal(t, "amassado", d.Values["obs"])
	assert.Equal(t, "placa,turno,setor,obs", d.TouchedList())

	now := time.Date(2024, 3, 5, 14, 7, 9, 0, relatorio.Location)
	p := d.Preview(now)
	assert.Contains(t, p, "• KM: 0\n")
	assert.Contains(t, p, "• Placa: \n")
}

func TestRestorePhoto(t *testing.T) {
	d := NewDraft(avariaType(t), "")
	require.NoError(t, d.RestorePhoto("frente", "f.png", "data:image/png;base64,iVBORw0KGgo="))
	assert.Equal(t, "f.png", d.Photos["frente"].FileName)

	assert.Error(t, d.RestorePhoto("traseira", "t.txt", "data:text/plain;base64,b2k="))
	assert.Error(t, d.RestorePhoto("placa", "p.png", "data:image/png;base64,iVBORw0KGgo="))
	assert.NotContains(t, d.Photos, "traseira")
}

func TestNewFormPage(t *testing.T) {
	types := []TypeOption{
		{ReportType: avariaType(t)},
		{ReportType: ReportType{ID: "9", Nome: "Quebrado"}, SchemaError: "Erro ao carregar formulário: campos"},
	}
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, relatorio.Location)

	t.Run("sem tipo", func(t *testing.T) {
		p := NewFormPage(types, nil, now)
		assert.Len(t, p.Tipos, 2)
		assert.Nil(t, p.Tipo)
		assert.Empty(t, p.Inputs)
	})

	t.Run("tipo selecionado", func(t *testing.T) {
		d := NewDraft(types[0].ReportType, "Ana")
		d.Set("placa", "XYZ")
		p := NewFormPage(types, d, now)
		require.NotNil(t, p.Tipo)
		assert.Equal(t, "3", p.SelectedID)
		assert.Len(t, p.Inputs, 7)
		assert.Contains(t, p.Preview, "Porteiro: Ana")
		assert.Equal(t, "placa", p.Tocados)
	})

	t.Run("esquema inválido não monta campos", func(t *testing.T) {
		p := NewFormPage(types, NewDraft(types[1].ReportType, "Ana"), now)
		require.NotNil(t, p.Tipo)
		assert.NotEmpty(t, p.Tipo.SchemaError)
		assert.Empty(t, p.Inputs)
		assert.Empty(t, p.Preview)
	})
}
