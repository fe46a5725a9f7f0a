// Package trafegodto contém os DTOs do domínio Tráfego: confirmação de cobrança.
package trafegodto

// CobrarInput é o corpo de POST /trafego/relatorios/:id/cobrar
type CobrarInput struct {
	Confirmar string `form:"confirmar" validate:"omitempty,max=10"` // "sim" confirma; qualquer outro valor abre a confirmação
}
