package relatorio

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFlow(t *testing.T) {
	assert.True(t, StatusPendente.CanAdvanceTo(StatusEmDP))
	assert.False(t, StatusPendente.CanAdvanceTo(StatusEmTrafego))
	assert.True(t, StatusEmTrafego.CanAdvanceTo(StatusCobrado))
	_, ok := StatusCobrado.Next()
	assert.False(t, ok)

	assert.Equal(t, "bg-warning", StatusPendente.BadgeClass())
	assert.Equal(t, "Em Tráfego", StatusEmTrafego.Label())
	assert.Equal(t, "Cobrados", StatusCobrado.StatLabel())

	unknown := Status("ARQUIVADO")
	assert.False(t, unknown.Known())
	assert.Equal(t, "bg-secondary", unknown.BadgeClass())
	assert.Equal(t, "ARQUIVADO", unknown.Label())
}

func TestParseContent(t *testing.T) {
	t.Run("vazio", func(t *testing.T) {
		assert.Equal(t, ContentEmpty, ParseContent(nil).Kind)
		assert.Equal(t, ContentEmpty, ParseContent(json.RawMessage(`null`)).Kind)
		assert.Equal(t, ContentEmpty, ParseContent(json.RawMessage(`""`)).Kind)
	})

	t.Run("objeto mantém a ordem das chaves", func(t *testing.T) {
		c := ParseContent(json.RawMessage(`{"veiculo":"ABC1D23","motorista":"João","km":120}`))
		require.Equal(t, ContentFields, c.Kind)
		assert.Equal(t, []Field{{"veiculo", "ABC1D23"}, {"motorista", "João"}, {"km", "120"}}, c.Fields)
	})

	t.Run("string com objeto JSON vira campos", func(t *testing.T) {
		c := ParseContent(json.RawMessage(`"{\"motorista\":\"Ana\"}"`))
		require.Equal(t, ContentFields, c.Kind)
		v, ok := c.Get("MOTORISTA")
		assert.True(t, ok)
		assert.Equal(t, "Ana", v)
	})

	t.Run("texto livre", func(t *testing.T) {
		c := ParseContent(json.RawMessage(`"AVARIA\n\n• Motorista: Ana"`))
		assert.Equal(t, ContentText, c.Kind)
		assert.Equal(t, "AVARIA\n\n• Motorista: Ana", c.String())
	})

	t.Run("string que parece objeto mas é inválida", func(t *testing.T) {
		c := ParseContent(json.RawMessage(`"{não é json"`))
		assert.Equal(t, ContentText, c.Kind)
	})
}

func TestExtractField(t *testing.T) {
	t.Run("prioridade das chaves estruturadas", func(t *testing.T) {
		c := Content{Kind: ContentFields, Fields: []Field{
			{"motorista_matricula", "123"},
			{"motorista", "João"},
		}}
		assert.Equal(t, "João", ExtractOr(c, Motorista))
		assert.Equal(t, NotAvailable, ExtractOr(c, Veiculo))
	})

	t.Run("valor vazio é ignorado", func(t *testing.T) {
		c := Content{Kind: ContentFields, Fields: []Field{
			{"veiculo", "  "},
			{"placa", "XYZ9A88"},
		}}
		assert.Equal(t, "XYZ9A88", ExtractOr(c, Veiculo))
	})

	t.Run("texto livre", func(t *testing.T) {
		c := Content{Kind: ContentText, Text: "AVARIA\n\n• Motorista: Carlos Silva\n• Veículo: Ônibus 1020, garagem 2\n• Matrícula: 4455\n"}
		assert.Equal(t, "Carlos Silva", ExtractOr(c, Motorista))
		assert.Equal(t, "Ônibus 1020", ExtractOr(c, Veiculo))
		assert.Equal(t, "4455", ExtractOr(c, Matricula))
		assert.Equal(t, NotAvailable, ExtractOr(c, Motoes))
	})

	t.Run("texto livre segue a prioridade dos rótulos, não a posição", func(t *testing.T) {
		c := Content{Kind: ContentText, Text: "• Placa: ABC1D23\n• Carro: Ônibus 1020\n• Mat: 77\n• Matricula: 4455\n"}
		assert.Equal(t, "Ônibus 1020", ExtractOr(c, Veiculo))
		assert.Equal(t, "4455", ExtractOr(c, Matricula))

		c = Content{Kind: ContentText, Text: "• Placa: ABC1D23\n"}
		assert.Equal(t, "ABC1D23", ExtractOr(c, Veiculo))
	})

	t.Run("conteúdo vazio", func(t *testing.T) {
		assert.Equal(t, NotAvailable, ExtractOr(Content{}, MotoristaNome))
	})
}

func TestNormalizePhotos(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"array", `["https://a/1.jpg", 7, "b.com/2.jpg"]`, []string{"https://a/1.jpg", "https://b.com/2.jpg"}},
		{"array em string", `"[\"https://a/1.jpg\",\"https://a/2.jpg\"]"`, []string{"https://a/1.jpg", "https://a/2.jpg"}},
		{"url única", `"https://a/1.jpg"`, []string{"https://a/1.jpg"}},
		{"objeto", `{"foto2":"https://a/2.jpg","foto1":"https://a/1.jpg","x":null}`, []string{"https://a/2.jpg", "https://a/1.jpg"}},
		{"nulo", `null`, nil},
		{"número", `12`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, nilIfEmpty(NormalizePhotos(json.RawMessage(tc.raw))))
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestFixPhotoURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a.jpg", FixPhotoURL(" cdn.example.com/a.jpg "))
	assert.Equal(t,
		"https://x.supabase.co/storage/v1/object/public/fotos/a.jpg",
		FixPhotoURL("https://x.supabase.co/storage/v1/fotos/a.jpg"))
	assert.Equal(t,
		"https://x.supabase.co/storage/v1/object/public/fotos/a.jpg",
		FixPhotoURL("https://x.supabase.co/storage/v1/object/public/fotos/a.jpg"))
}

func TestFormatCurrency(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	assert.Equal(t, "R$ 0,00", FormatCurrency(nil))
	assert.Equal(t, "R$ 150,00", FormatCurrency(v(150)))
	assert.Equal(t, "R$ 1.234,56", FormatCurrency(v(1234.56)))
	assert.Equal(t, "R$ 1.000.000,05", FormatCurrency(v(1000000.05)))
	assert.Equal(t, "R$ 0,99", FormatCurrency(v(0.99)))
}

func TestParseValor(t *testing.T) {
	cases := map[string]float64{
		"150":      150,
		"150.00":   150,
		"150,00":   150,
		"1.234,56": 1234.56,
		"R$ 10,5":  10.5,
		"-5":       -5,
	}
	for in, want := range cases {
		got, err := ParseValor(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 0.0001, in)
	}

	for _, in := range []string{"", "abc", "NaN", "1,2,3"} {
		_, err := ParseValor(in)
		assert.ErrorIs(t, err, ErrInvalidValor, in)
	}
}

func TestNormalizeFilterDate(t *testing.T) {
	assert.Equal(t, "2024-03-05", NormalizeFilterDate("2024-03-05"))
	assert.Equal(t, "2024-03-05", NormalizeFilterDate("05/03/2024"))
	assert.Equal(t, "", NormalizeFilterDate("2024-13-01"))
	assert.Equal(t, "", NormalizeFilterDate(""))
}

func TestDecodeReport(t *testing.T) {
	data := []byte(`{
		"id": 42,
		"numero_os": "OS-2024-0001",
		"tipo_id": 3,
		"tipos_relatorio": {"nome": "Avaria"},
		"porteiro_id": 9,
		"porteiro_nome": "Pedro",
		"dados": "AVARIA\n\n• Motorista: Ana\n",
		"criado_em": "2024-05-01T10:20:30",
		"status": "EM_TRAFEGO",
		"fotos": "[\"cdn.x/1.jpg\"]",
		"valor": "150.5",
		"motorista": " Ana Souza ",
		"documentos": {"doc1": "nota.pdf", "doc2": {"size": 1}}
	}`)

	r, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, "42", r.ID)
	assert.Equal(t, "OS-2024-0001", r.NumeroOS)
	assert.Equal(t, Ref{ID: "3", Nome: "Avaria"}, r.Tipo)
	assert.Equal(t, Ref{ID: "9", Nome: "Pedro"}, r.Porteiro)
	assert.Equal(t, ContentText, r.Content.Kind)
	assert.Equal(t, StatusEmTrafego, r.Status)
	assert.Equal(t, []string{"https://cdn.x/1.jpg"}, r.Photos)
	require.NotNil(t, r.Valor)
	assert.InDelta(t, 150.5, *r.Valor, 0.0001)
	assert.Equal(t, "R$ 150,50", r.ValorText())
	assert.Equal(t, "Ana Souza", r.DriverName())
	assert.Equal(t, []string{"nota.pdf", "doc2"}, r.Documentos)
	require.NotNil(t, r.CreatedAt)
	assert.Equal(t, "01/05/2024 10:20:30", r.CreatedAtText())
}

func TestDecodeReportFallbacks(t *testing.T) {
	r, err := Decode([]byte(`{"id":"a1","tipo_id":5,"dados":{"motorista":"Rui"},"criado_em":"ontem"}`))
	require.NoError(t, err)

	assert.Equal(t, NotAvailable, r.NumeroOS)
	assert.Equal(t, "5", r.Tipo.Nome)
	assert.Equal(t, NotAvailable, r.Porteiro.Nome)
	assert.Nil(t, r.CreatedAt)
	assert.Equal(t, NotAvailable, r.CreatedAtText())
	assert.Equal(t, "Rui", r.DriverName())
	assert.Empty(t, r.Photos)
	assert.Equal(t, "R$ 0,00", r.ValorText())
}

func TestFormatDateTimeUsesBrasilia(t *testing.T) {
	ts := time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, "02/01/2024 10:00:00", FormatDateTime(&ts))
	assert.Equal(t, "02/01/2024", FormatDate(&ts))
}
