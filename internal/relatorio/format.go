package relatorio

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Location é o fuso usado para exibir datas (horário de Brasília)
var Location = time.FixedZone("BRT", -3*60*60)

const (
	DateTimeLayout = "02/01/2006 15:04:05"
	DateLayout     = "02/01/2006"
	ISODateLayout  = "2006-01-02"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime interpreta as datas do backend; datas sem fuso são consideradas no horário local
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, Location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDateTime formata como dd/mm/aaaa HH:MM:SS; nil vira "N/A"
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}
	return t.In(Location).Format(DateTimeLayout)
}

// FormatDate formata como dd/mm/aaaa; nil vira "N/A"
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}
	return t.In(Location).Format(DateLayout)
}

// NormalizeFilterDate aceita AAAA-MM-DD ou DD/MM/AAAA e devolve AAAA-MM-DD; inválida vira ""
func NormalizeFilterDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, err := time.Parse(ISODateLayout, s); err == nil {
		return t.Format(ISODateLayout)
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.Format(ISODateLayout)
	}
	return ""
}

// FormatCurrency formata em reais no padrão pt-BR ("R$ 1.234,56"); nil vira "R$ 0,00"
func FormatCurrency(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return "R$ 0,00"
	}

	value := *v
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	cents := int64(math.Round(value * 100))
	intPart := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	fracStr := strconv.FormatInt(frac, 10)
	if frac < 10 {
		fracStr = "0" + fracStr
	}

	return "R$ " + sign + grouped.String() + "," + fracStr
}

// ErrInvalidValor indica um valor monetário que não é número
var ErrInvalidValor = errors.New("valor inválido")

// ParseValor lê valores como "150", "150.00", "150,00" ou "1.234,56"
func ParseValor(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidValor
	}

	if strings.Contains(s, ",") {
		// formato brasileiro: ponto é milhar, vírgula é decimal
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidValor
	}
	return v, nil
}

// OrNA devolve "N/A" para textos vazios
func OrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
