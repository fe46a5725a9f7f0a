package relatorio

import (
	"regexp"
	"strings"
)

// ExtractKind identifica a informação procurada no conteúdo
type ExtractKind int

const (
	Motorista ExtractKind = iota
	MotoristaNome
	Veiculo
	Matricula
	Motoes
)

// NotAvailable é o marcador exibido quando nada foi encontrado
const NotAvailable = "N/A"

type aliases struct {
	keys   []string         // chaves de conteúdo estruturado, em ordem de prioridade
	labels []*regexp.Regexp // rótulos em texto livre seguidos de ":" ou espaço, em ordem de prioridade
}

func labelRegexp(labels ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(labels))
	for i, l := range labels {
		out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(l) + `[:\s]+([^\n\r,]+)`)
	}
	return out
}

var extractAliases = map[ExtractKind]aliases{
	Motorista:     {keys: []string{"motorista", "motorista_matricula"}, labels: labelRegexp("motorista")},
	MotoristaNome: {keys: []string{"motorista", "motorista_nome"}, labels: labelRegexp("motorista")},
	Veiculo:       {keys: []string{"veiculo", "carro", "placa"}, labels: labelRegexp("veículo", "veiculo", "carro", "placa")},
	Matricula:     {keys: []string{"matricula", "motorista_matricula"}, labels: labelRegexp("matrícula", "matricula", "mat")},
	Motoes:        {keys: []string{"motoes", "motao"}, labels: labelRegexp("motões", "motoes", "motao")},
}

// ExtractField procura uma informação no conteúdo, sem efeitos colaterais.
// Conteúdo estruturado: primeira chave da lista com valor não vazio.
// Texto livre: rótulos na ordem de prioridade, valor até a quebra de linha ou vírgula.
func ExtractField(content Content, kind ExtractKind) (string, bool) {
	a, ok := extractAliases[kind]
	if !ok {
		return "", false
	}

	switch content.Kind {
	case ContentFields:
		for _, key := range a.keys {
			if v, found := content.Get(key); found {
				if v = strings.TrimSpace(v); v != "" {
					return v, true
				}
			}
		}
	case ContentText:
		for _, re := range a.labels {
			for _, m := range re.FindAllStringSubmatch(content.Text, -1) {
				if v := strings.TrimSpace(m[1]); v != "" {
					return v, true
				}
			}
		}
	}

	return "", false
}

// ExtractOr devolve o valor encontrado ou "N/A"
func ExtractOr(content Content, kind ExtractKind) string {
	if v, ok := ExtractField(content, kind); ok {
		return v
	}
	return NotAvailable
}
