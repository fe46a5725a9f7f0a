// Package authdto contém os DTOs do domínio Auth: login por setor e código de acesso.
package authdto

// LoginInput é a entrada de POST /login
type LoginInput struct {
	Setor  string `form:"setor" validate:"required,setor"`             // porteiro | admin | dp | trafego
	Codigo string `form:"codigo" validate:"required,max=100,no_xss"` // Código de acesso do setor
}

// CheckAuthResponse é o corpo de GET /api/check-auth
type CheckAuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	ID            string `json:"id"`
	Nome          string `json:"nome"`
	Setor         string `json:"setor"`
	Home          string `json:"home"`
}
