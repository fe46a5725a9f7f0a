// Package adminsvc - Revisão administrativa: filtros, paginação, estatísticas, detalhe e exportações.
package adminsvc

import (
	"net/url"
	"strconv"
	"strings"

	admindto "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/admin/dto"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
)

// PageSize é o tamanho da página da listagem
const PageSize = 10

// windowSize é a quantidade de páginas numeradas visíveis
const windowSize = 5

// NormalizeFilters limpa espaços, normaliza datas para AAAA-MM-DD e descarta datas e status inválidos
func NormalizeFilters(f admindto.FilterQuery) admindto.FilterQuery {
	out := admindto.FilterQuery{
		Tipo:       strings.TrimSpace(f.Tipo),
		Porteiro:   strings.TrimSpace(f.Porteiro),
		Status:     strings.ToUpper(strings.TrimSpace(f.Status)),
		NumeroOS:   strings.TrimSpace(f.NumeroOS),
		Matricula:  strings.TrimSpace(f.Matricula),
		Carro:      strings.TrimSpace(f.Carro),
		DataInicio: relatorio.NormalizeFilterDate(f.DataInicio),
		DataFim:    relatorio.NormalizeFilterDate(f.DataFim),
	}
	if out.Status != "" && !relatorio.Status(out.Status).Known() {
		out.Status = ""
	}
	return out
}

// FilterValues codifica exatamente os filtros não vazios
func FilterValues(f admindto.FilterQuery) url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("tipo", f.Tipo)
	set("porteiro", f.Porteiro)
	set("status", f.Status)
	set("numero_os", f.NumeroOS)
	set("matricula", f.Matricula)
	set("carro", f.Carro)
	set("data_inicio", f.DataInicio)
	set("data_fim", f.DataFim)
	return v
}

// ListURL é a URL da listagem com os filtros e a página
func ListURL(f admindto.FilterQuery, page int) string {
	v := FilterValues(f)
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return "/admin"
	}
	return "/admin?" + v.Encode()
}

// TotalPages é ceil(count / PageSize)
func TotalPages(count int) int {
	if count <= 0 {
		return 0
	}
	return (count + PageSize - 1) / PageSize
}

// PageItem é um item da barra de paginação
type PageItem struct {
	Number   int
	Active   bool
	Ellipsis bool
}

// Pagination é a barra de paginação; Show=false quando há no máximo uma página
type Pagination struct {
	Show         bool
	Current      int
	TotalPages   int
	Items        []PageItem
	PrevDisabled bool
	NextDisabled bool
}

// PageWindow monta a janela de 5 páginas em volta da atual, com primeira/última e reticências
func PageWindow(totalPages, current int) Pagination {
	p := Pagination{Current: current, TotalPages: totalPages}
	if totalPages <= 1 {
		return p
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}
	p.Current = current
	p.Show = true
	p.PrevDisabled = current == 1
	p.NextDisabled = current == totalPages

	start := max(1, current-windowSize/2)
	end := min(totalPages, start+windowSize-1)
	start = max(1, end-windowSize+1)

	if start > 1 {
		p.Items = append(p.Items, PageItem{Number: 1})
		if start > 2 {
			p.Items = append(p.Items, PageItem{Ellipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		p.Items = append(p.Items, PageItem{Number: i, Active: i == current})
	}
	if end < totalPages {
		if end < totalPages-1 {
			p.Items = append(p.Items, PageItem{Ellipsis: true})
		}
		p.Items = append(p.Items, PageItem{Number: totalPages})
	}
	return p
}

// Numbers retorna só os números visíveis (sem reticências)
func (p Pagination) Numbers() []int {
	var out []int
	for _, it := range p.Items {
		if !it.Ellipsis {
			out = append(out, it.Number)
		}
	}
	return out
}
