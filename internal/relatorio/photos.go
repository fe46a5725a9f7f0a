package relatorio

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NormalizePhotos converte o campo "fotos" cru numa lista ordenada de URLs corrigidas.
// Aceita array, array codificado como string JSON, URL única em string ou objeto chave/valor.
// Entradas que não são string são descartadas.
func NormalizePhotos(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var values []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &values); err != nil {
			return nil
		}
	case '{':
		v, err := decodeOrderedValues(raw)
		if err != nil {
			return nil
		}
		values = v
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return photosFromString(s)
	default:
		return nil
	}

	return collectURLs(values)
}

// photosFromString trata uma string que pode conter um array/objeto JSON ou uma única URL
func photosFromString(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		if json.Valid([]byte(trimmed)) {
			return NormalizePhotos(json.RawMessage(trimmed))
		}
	}
	return []string{FixPhotoURL(trimmed)}
}

func collectURLs(values []json.RawMessage) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		out = append(out, FixPhotoURL(s))
	}
	return out
}

// FixPhotoURL corrige URLs de fotos: adiciona https:// quando falta o esquema e
// troca caminhos privados do storage do Supabase pelo caminho público.
func FixPhotoURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return u
	}
	if !strings.HasPrefix(u, "http") {
		u = "https://" + strings.TrimLeft(u, "/")
	}
	if strings.Contains(u, "supabase") &&
		strings.Contains(u, "/storage/v1/") &&
		!strings.Contains(u, "/object/public/") {
		u = strings.Replace(u, "/storage/v1/", "/storage/v1/object/public/", 1)
	}
	return u
}
