// Package admindto contém os DTOs do domínio Admin: filtros da listagem, paginação e busca por OS.
package admindto

// FilterQuery são os filtros da listagem; o mesmo conjunto vale para estatísticas e exportações
type FilterQuery struct {
	Tipo       string `query:"tipo" validate:"omitempty,max=50,no_xss"`      // ID do tipo de relatório
	Porteiro   string `query:"porteiro" validate:"omitempty,max=50,no_xss"`  // ID do porteiro
	Status     string `query:"status" validate:"omitempty,status_relatorio"` // PENDENTE | EM_DP | EM_TRAFEGO | COBRADO
	NumeroOS   string `query:"numero_os" validate:"omitempty,max=50,no_xss"` // Número da OS
	Matricula  string `query:"matricula" validate:"omitempty,max=50,no_xss"` // Matrícula do motorista
	Carro      string `query:"carro" validate:"omitempty,max=50,no_xss"`     // Veículo / placa
	DataInicio string `query:"data_inicio" validate:"omitempty,data_filtro"` // AAAA-MM-DD ou DD/MM/AAAA
	DataFim    string `query:"data_fim" validate:"omitempty,data_filtro"`    // AAAA-MM-DD ou DD/MM/AAAA
}

// ListQuery é a query de GET /admin
type ListQuery struct {
	Tipo       string `query:"tipo"`
	Porteiro   string `query:"porteiro"`
	Status     string `query:"status"`
	NumeroOS   string `query:"numero_os"`
	Matricula  string `query:"matricula"`
	Carro      string `query:"carro"`
	DataInicio string `query:"data_inicio"`
	DataFim    string `query:"data_fim"`
	Page       int    `query:"page"` // Página (1-based)
	Ok         string `query:"ok"`   // Mensagem de sucesso após um redirect
	Erro       string `query:"erro"` // Mensagem de erro após um redirect
}

// Filters separa os filtros da paginação e das mensagens
func (q ListQuery) Filters() FilterQuery {
	return FilterQuery{
		Tipo:       q.Tipo,
		Porteiro:   q.Porteiro,
		Status:     q.Status,
		NumeroOS:   q.NumeroOS,
		Matricula:  q.Matricula,
		Carro:      q.Carro,
		DataInicio: q.DataInicio,
		DataFim:    q.DataFim,
	}
}

// OSQuery é a query de GET /admin/os
type OSQuery struct {
	NumeroOS string `query:"numero_os" validate:"required,max=50,no_xss"`
}

// SendToDPInput é o corpo de POST /admin/relatorios/:id/enviar-dp
type SendToDPInput struct {
	Voltar string `form:"voltar" validate:"omitempty,max=1000"` // Listagem (com filtros) para onde voltar
}
