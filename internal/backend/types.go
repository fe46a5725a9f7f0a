package backend

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
)

// FlexID aceita IDs numéricos ou texto e guarda como texto
type FlexID string

// UnmarshalJSON aceita número, string ou null
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

// String retorna o ID como texto
func (id FlexID) String() string { return string(id) }

// User é o usuário autenticado no backend
type User struct {
	ID    FlexID `json:"id"`
	Nome  string `json:"nome"`
	Setor string `json:"setor"`
}

// LoginRequest é o corpo de POST /api/login
type LoginRequest struct {
	Setor  string `json:"setor"`
	Codigo string `json:"codigo"`
}

// LoginResult é o usuário logado e os cookies de sessão emitidos pelo backend
type LoginResult struct {
	User       User
	SetCookies []string
}

// ReportType é um tipo de relatório com o esquema de campos ainda cru
type ReportType struct {
	ID                   FlexID          `json:"id"`
	Nome                 string          `json:"nome"`
	Campos               json.RawMessage `json:"campos"`
	DestinatarioWhatsapp string          `json:"destinatario_whatsapp"`
}

// Porteiro é um porteiro cadastrado
type Porteiro struct {
	ID   FlexID `json:"id"`
	Nome string `json:"nome"`
}

// ReportPage é uma página da listagem de relatórios
type ReportPage struct {
	Reports    []relatorio.Report `json:"data"`
	Count      int                `json:"count"`
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
	TotalPages int                `json:"total_pages"`
}

// PhotoUpload é uma foto pendente enviada junto do relatório
type PhotoUpload struct {
	Base64    string `json:"base64"`
	CampoNome string `json:"campoNome"`
	FileName  string `json:"fileName"`
}

// CreateReportRequest é o corpo de POST /api/relatorios
type CreateReportRequest struct {
	TipoID               int           `json:"tipo_id"`
	Dados                string        `json:"dados"`
	DestinatarioWhatsapp string        `json:"destinatario_whatsapp"`
	Fotos                []PhotoUpload `json:"fotos"`
}

// PhotoURL é a URL definitiva de uma foto enviada
type PhotoURL struct {
	URL         string `json:"url"`
	Indice      int    `json:"indice"`
	Placeholder string `json:"placeholder"`
	CampoNome   string `json:"campoNome"`
	FileName    string `json:"fileName"`
}

// CreateReportResult é a resposta de POST /api/relatorios
type CreateReportResult struct {
	Success     bool       `json:"success"`
	ID          FlexID     `json:"id"`
	FotosSalvas int        `json:"fotos_salvas"`
	FotosURLs   []PhotoURL `json:"fotosUrls"`
	Message     string     `json:"message"`
}

// URLs retorna as URLs das fotos na ordem de envio
func (r CreateReportResult) URLs() []string {
	out := make([]string, len(r.FotosURLs))
	for i, f := range r.FotosURLs {
		out[i] = f.URL
	}
	return out
}

// StatusUpdate é o corpo de PUT /api/relatorios/{id}/status
type StatusUpdate struct {
	Status     relatorio.Status `json:"status"`
	Valor      *float64         `json:"valor,omitempty"`
	Motorista  string           `json:"motorista,omitempty"`
	Documentos []string         `json:"documentos,omitempty"`
}

// Stats é a resposta de GET /api/estatisticas
type Stats struct {
	Total     int            `json:"total"`
	PorStatus map[string]int `json:"por_status"`
}

// Export é um arquivo exportado pelo backend
type Export struct {
	Body        []byte
	ContentType string
}

// envelope cobre as respostas {success, message, error}
type envelope struct {
	Success       *bool  `json:"success"`
	Authenticated *bool  `json:"authenticated"`
	Message       string `json:"message"`
	Error         string `json:"error"`
	User          *User  `json:"user"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
