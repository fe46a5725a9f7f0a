// Package dpdto contém os DTOs do domínio DP: formulário de processamento.
package dpdto

// Ações do formulário de processamento
const (
	AcaoConfirmar  = "confirmar"
	AcaoAdicionar  = "adicionar"
	AcaoRemoverPfx = "remover:"
)

// ProcessInput é o corpo de POST /dp/relatorios/:id/processar
type ProcessInput struct {
	Valor         string   `form:"valor" validate:"omitempty,max=30"`                   // Valor da cobrança (150.00, 150,00, 1.234,56)
	Motorista     string   `form:"motorista" validate:"omitempty,max=120,no_xss"`       // Nome do motorista
	Documentos    []string `form:"documentos" validate:"omitempty,dive,max=255,no_xss"` // Nomes dos documentos já listados
	NovoDocumento string   `form:"novo_documento" validate:"omitempty,max=255,no_xss"`  // Nome a adicionar
	Acao          string   `form:"acao"`                                                // confirmar | adicionar | remover:<índice>
}
