// Package intakesvc - Formulário dinâmico do porteiro: esquema de campos, rascunho, prévia e envio.
package intakesvc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
)

// Tipos de input conhecidos; qualquer outro vira text
const (
	KindText          = "text"
	KindNumber        = "number"
	KindDate          = "date"
	KindTime          = "time"
	KindDateTimeLocal = "datetime-local"
	KindEmail         = "email"
	KindTel           = "tel"
	KindTextarea      = "textarea"
	KindSelect        = "select"
	KindFile          = "file"
)

var knownKinds = map[string]bool{
	KindText: true, KindNumber: true, KindDate: true, KindTime: true, KindDateTimeLocal: true,
	KindEmail: true, KindTel: true, KindTextarea: true, KindSelect: true, KindFile: true,
}

// Campo é um campo declarado no tipo de relatório
type Campo struct {
	Name        string   // Nome do campo (chave do valor)
	Label       string   // Rótulo exibido
	Type        string   // Tipo do input, já normalizado
	Required    bool     // Obrigatório (ignorado em campos de foto)
	Options     []string // Opções do select
	Placeholder string   // Placeholder do input
	Default     string   // Valor usado na prévia quando o campo não foi preenchido
}

// IsFile informa se o campo é de foto
func (c Campo) IsFile() bool { return c.Type == KindFile }

type campoRaw struct {
	Name        string            `json:"name"`
	Label       string            `json:"label"`
	Type        string            `json:"type"`
	Required    bool              `json:"required"`
	Options     []json.RawMessage `json:"options"`
	Placeholder string            `json:"placeholder"`
	Default     json.RawMessage   `json:"default"`
}

// ReportType é um tipo de relatório com o esquema já interpretado
type ReportType struct {
	ID                   string
	Nome                 string
	Campos               []Campo
	DestinatarioWhatsapp string
}

// HasFileFields informa se o esquema tem algum campo de foto
func (t ReportType) HasFileFields() bool {
	for _, c := range t.Campos {
		if c.IsFile() {
			return true
		}
	}
	return false
}

// Campo busca um campo pelo nome
func (t ReportType) Campo(name string) (Campo, bool) {
	for _, c := range t.Campos {
		if c.Name == name {
			return c, true
		}
	}
	return Campo{}, false
}

// FromBackend interpreta o esquema cru de um tipo vindo do backend
func FromBackend(bt backend.ReportType) (ReportType, error) {
	campos, err := ParseCampos(bt.Campos)
	if err != nil {
		return ReportType{ID: bt.ID.String(), Nome: bt.Nome}, fmt.Errorf("tipo %s: %w", bt.ID, err)
	}
	return ReportType{
		ID:                   bt.ID.String(),
		Nome:                 bt.Nome,
		Campos:               campos,
		DestinatarioWhatsapp: strings.TrimSpace(bt.DestinatarioWhatsapp),
	}, nil
}

// ParseCampos aceita o esquema como array JSON ou como string contendo o array; vazio = sem campos
func ParseCampos(raw json.RawMessage) ([]Campo, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("campos inválidos: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		raw = json.RawMessage(s)
	}

	var items []campoRaw
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("campos inválidos: %w", err)
	}

	campos := make([]Campo, 0, len(items))
	for _, it := range items {
		kind := strings.ToLower(strings.TrimSpace(it.Type))
		if !knownKinds[kind] {
			kind = KindText
		}
		label := it.Label
		if label == "" {
			label = it.Name
		}
		c := Campo{
			Name:        it.Name,
			Label:       label,
			Type:        kind,
			Required:    it.Required,
			Placeholder: it.Placeholder,
			Default:     scalar(it.Default),
		}
		for _, o := range it.Options {
			if v := scalar(o); v != "" {
				c.Options = append(c.Options, v)
			}
		}
		campos = append(campos, c)
	}
	return campos, nil
}

// scalar converte string, número ou booleano em texto
func scalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
		return ""
	}
	if raw[0] == '{' || raw[0] == '[' {
		return ""
	}
	return string(raw)
}

// Option é uma opção renderizada de select
type Option struct {
	Value    string
	Selected bool
}

// Input é um campo pronto para o template
type Input struct {
	Name        string
	Label       string
	Type        string
	Required    bool
	Placeholder string
	Value       string
	Options     []Option
	EmptyOption bool   // "Selecione..." antes das opções
	Photo       *Photo // Foto já anexada (campo file)
}

// IsSelect, IsTextarea e IsFile orientam o template
func (in Input) IsSelect() bool   { return in.Type == KindSelect }
func (in Input) IsTextarea() bool { return in.Type == KindTextarea }
func (in Input) IsFile() bool     { return in.Type == KindFile }

// BuildForm gera um input por campo, na ordem declarada
func BuildForm(d *Draft) []Input {
	inputs := make([]Input, 0, len(d.Tipo.Campos))
	for _, c := range d.Tipo.Campos {
		in := Input{
			Name:        c.Name,
			Label:       c.Label,
			Type:        c.Type,
			Placeholder: c.Placeholder,
		}
		if c.IsFile() {
			if p, ok := d.Photos[c.Name]; ok {
				photo := p
				in.Photo = &photo
			}
			inputs = append(inputs, in)
			continue
		}

		in.Required = c.Required
		in.Value = d.value(c)
		if c.Type == KindSelect {
			in.EmptyOption = !c.Required
			for _, o := range c.Options {
				in.Options = append(in.Options, Option{Value: o, Selected: o == in.Value})
			}
		}
		inputs = append(inputs, in)
	}
	return inputs
}
