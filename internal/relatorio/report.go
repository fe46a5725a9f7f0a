package relatorio

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Ref é uma referência nomeada (tipo de relatório ou porteiro)
type Ref struct {
	ID   string
	Nome string
}

// Report é o relatório normalizado uma única vez, na chegada do backend
type Report struct {
	ID                   string
	NumeroOS             string
	Tipo                 Ref
	Porteiro             Ref
	Content              Content
	CreatedAt            *time.Time
	Status               Status
	Photos               []string
	Valor                *float64
	Motorista            string
	Documentos           []string
	DestinatarioWhatsapp string
}

// rawReport espelha o JSON do backend, com os campos variáveis ainda crus
type rawReport struct {
	ID                   json.RawMessage `json:"id"`
	NumeroOS             json.RawMessage `json:"numero_os"`
	TipoID               json.RawMessage `json:"tipo_id"`
	TipoNome             string          `json:"tipo_nome"`
	TiposRelatorio       *namedRef       `json:"tipos_relatorio"`
	PorteiroID           json.RawMessage `json:"porteiro_id"`
	PorteiroNome         string          `json:"porteiro_nome"`
	Porteiros            *namedRef       `json:"porteiros"`
	Dados                json.RawMessage `json:"dados"`
	CriadoEm             string          `json:"criado_em"`
	CreatedAt            string          `json:"created_at"`
	Status               string          `json:"status"`
	Fotos                json.RawMessage `json:"fotos"`
	Valor                json.RawMessage `json:"valor"`
	Motorista            json.RawMessage `json:"motorista"`
	Documentos           json.RawMessage `json:"documentos"`
	DestinatarioWhatsapp string          `json:"destinatario_whatsapp"`
}

type namedRef struct {
	Nome string `json:"nome"`
}

// UnmarshalJSON normaliza o relatório ao decodificar
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw rawReport
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = raw.normalize()
	return nil
}

func (raw rawReport) normalize() Report {
	r := Report{
		ID:                   scalarText(raw.ID),
		NumeroOS:             OrNA(scalarText(raw.NumeroOS)),
		Content:              ParseContent(raw.Dados),
		Status:               Status(strings.TrimSpace(raw.Status)),
		Photos:               NormalizePhotos(raw.Fotos),
		Valor:                parseValorRaw(raw.Valor),
		Motorista:            strings.TrimSpace(scalarText(raw.Motorista)),
		Documentos:           normalizeDocumentos(raw.Documentos),
		DestinatarioWhatsapp: strings.TrimSpace(raw.DestinatarioWhatsapp),
	}

	r.Tipo.ID = scalarText(raw.TipoID)
	r.Tipo.Nome = firstNonEmpty(refNome(raw.TiposRelatorio), raw.TipoNome, r.Tipo.ID)
	r.Porteiro.ID = scalarText(raw.PorteiroID)
	r.Porteiro.Nome = firstNonEmpty(refNome(raw.Porteiros), raw.PorteiroNome, r.Porteiro.ID)

	created := raw.CriadoEm
	if created == "" {
		created = raw.CreatedAt
	}
	if t, ok := ParseTime(created); ok {
		r.CreatedAt = &t
	}

	return r
}

// Decode decodifica e normaliza um relatório vindo do backend
func Decode(data []byte) (Report, error) {
	var r Report
	err := json.Unmarshal(data, &r)
	return r, err
}

// DriverName é o motorista gravado pelo DP ou, na falta dele, o extraído do conteúdo
func (r Report) DriverName() string {
	if r.Motorista != "" {
		return r.Motorista
	}
	return ExtractOr(r.Content, Motorista)
}

// CreatedAtText é a data de criação formatada ou "N/A"
func (r Report) CreatedAtText() string {
	return FormatDateTime(r.CreatedAt)
}

// ValorText é o valor em reais
func (r Report) ValorText() string {
	return FormatCurrency(r.Valor)
}

func refNome(ref *namedRef) string {
	if ref == nil {
		return ""
	}
	return ref.Nome
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return NotAvailable
}

// scalarText converte número ou string JSON em texto
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	if raw[0] == '{' || raw[0] == '[' {
		return ""
	}
	return string(raw)
}

func parseValorRaw(raw json.RawMessage) *float64 {
	text := scalarText(raw)
	if text == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return &v
	}
	if v, err := ParseValor(text); err == nil {
		return &v
	}
	return nil
}

// normalizeDocumentos aceita array, string JSON ou objeto e devolve os nomes dos documentos
func normalizeDocumentos(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
			return normalizeDocumentos(json.RawMessage(s))
		}
		if s == "" {
			return nil
		}
		return []string{s}
	case '[':
		var values []json.RawMessage
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil
		}
		return documentNames(values, nil)
	case '{':
		fields, err := decodeOrderedObject(raw)
		if err != nil {
			return nil
		}
		out := make([]string, 0, len(fields))
		for _, f := range fields {
			name := strings.TrimSpace(f.Value)
			if name == "" || strings.HasPrefix(name, "{") || strings.HasPrefix(name, "[") {
				name = f.Key
			}
			out = append(out, name)
		}
		return out
	}
	return nil
}

// documentNames aceita itens string ou objetos com "nome"/"name"
func documentNames(values []json.RawMessage, out []string) []string {
	for _, v := range values {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		var obj struct {
			Nome string `json:"nome"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(v, &obj); err == nil {
			if n := firstNonEmpty(obj.Nome, obj.Name); n != NotAvailable {
				out = append(out, n)
			}
		}
	}
	return out
}
