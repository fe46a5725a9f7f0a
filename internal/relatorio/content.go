package relatorio

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ContentKind identifica a variante de Content
type ContentKind int

const (
	ContentEmpty ContentKind = iota
	ContentText
	ContentFields
)

// Field é um par chave/valor de um conteúdo estruturado, na ordem original
type Field struct {
	Key   string
	Value string
}

// Content é o campo "dados" resolvido na ingestão: vazio, texto livre ou campos estruturados
type Content struct {
	Kind   ContentKind
	Text   string
	Fields []Field
}

// IsEmpty informa se não há conteúdo a exibir
func (c Content) IsEmpty() bool {
	switch c.Kind {
	case ContentText:
		return strings.TrimSpace(c.Text) == ""
	case ContentFields:
		return len(c.Fields) == 0
	}
	return true
}

// Get busca uma chave (sem diferenciar maiúsculas) num conteúdo estruturado
func (c Content) Get(key string) (string, bool) {
	if c.Kind != ContentFields {
		return "", false
	}
	for _, f := range c.Fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return "", false
}

// String devolve o conteúdo como texto: o próprio texto ou "chave: valor" por linha
func (c Content) String() string {
	switch c.Kind {
	case ContentText:
		return c.Text
	case ContentFields:
		lines := make([]string, 0, len(c.Fields))
		for _, f := range c.Fields {
			lines = append(lines, f.Key+": "+f.Value)
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

// ParseContent resolve o "dados" cru do backend.
// Uma string cujo texto é um objeto JSON vira Fields; qualquer outra string vira Text.
func ParseContent(raw json.RawMessage) Content {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Content{Kind: ContentEmpty}
	}

	switch raw[0] {
	case '{':
		fields, err := decodeOrderedObject(raw)
		if err != nil {
			return Content{Kind: ContentText, Text: string(raw)}
		}
		return fieldsContent(fields)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Content{Kind: ContentText, Text: string(raw)}
		}
		return ContentFromString(s)
	}

	return Content{Kind: ContentText, Text: string(raw)}
}

// ContentFromString aplica a mesma regra de ParseContent a um texto já decodificado
func ContentFromString(s string) Content {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Content{Kind: ContentEmpty}
	}
	if strings.HasPrefix(trimmed, "{") {
		if fields, err := decodeOrderedObject([]byte(trimmed)); err == nil {
			return fieldsContent(fields)
		}
	}
	return Content{Kind: ContentText, Text: s}
}

func fieldsContent(fields []Field) Content {
	if len(fields) == 0 {
		return Content{Kind: ContentEmpty}
	}
	return Content{Kind: ContentFields, Fields: fields}
}

// decodeOrderedObject lê um objeto JSON mantendo a ordem das chaves.
// Valores escalares viram texto; objetos e arrays aninhados viram JSON compacto.
func decodeOrderedObject(data []byte) ([]Field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("não é um objeto JSON")
	}

	var fields []Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.New("chave inválida")
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		fields = append(fields, Field{Key: key, Value: rawToText(value)})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("conteúdo após o objeto")
	}

	return fields, nil
}

// decodeOrderedValues lê os valores de um objeto JSON na ordem das chaves
func decodeOrderedValues(data []byte) ([]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("não é um objeto JSON")
	}

	var values []json.RawMessage
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

func rawToText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			return buf.String()
		}
	}
	return string(raw)
}

// IsFields informa se o conteúdo é estruturado
func (c Content) IsFields() bool { return c.Kind == ContentFields && len(c.Fields) > 0 }
