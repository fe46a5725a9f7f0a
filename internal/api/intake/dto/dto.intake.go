// Package intakedto contém os DTOs do domínio Intake: formulário do porteiro e prévia.
package intakedto

// Campos fixos do formulário; os demais vêm do esquema do tipo
const (
	FieldTipo    = "tipo"
	FieldTocados = "tocados"

	PhotoDataPfx    = "foto_"          // foto_<campo>: data URL de uma foto já anexada
	PhotoNamePfx    = "foto_nome_"     // foto_nome_<campo>: nome original do arquivo
	PhotoRemovePfx  = "remover_foto_"  // remover_foto_<campo>: descarta a foto anexada
	PhotoPresentPfx = "foto_presente_" // foto_presente_<campo>: usado só na prévia
)

// HomeQuery é a query de GET /
type HomeQuery struct {
	Tipo string `query:"tipo" validate:"omitempty,max=50,no_xss"`
}

// PreviewResponse é o corpo de resposta de POST /porteiro/preview
type PreviewResponse struct {
	Texto   string `json:"texto"`
	Tocados string `json:"tocados"`
}
