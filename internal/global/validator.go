package global

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

// InitValidator cria o validator e registra os validadores customizados
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("status_relatorio", validateStatus)
	_ = Validate.RegisterValidation("valor_monetario", validateValor)
	_ = Validate.RegisterValidation("data_filtro", validateDataFiltro)
	_ = Validate.RegisterValidation("setor", validateSetor)
}

// validateNoXSS recusa textos com padrões de script
func validateNoXSS(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"onmouseover=",
		"eval(",
		"document.cookie",
		"document.write",
		"<iframe",
		"<object",
		"<embed",
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateStatus aceita apenas os quatro status do fluxo (vazio passa, use required junto)
func validateStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return relatorio.Status(value).Known()
}

// validateValor aceita "150", "150.00", "150,00" e "1.234,56", nunca negativo
func validateValor(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	v, err := relatorio.ParseValor(value)
	return err == nil && v >= 0
}

// validateSetor aceita os quatro setores de login
func validateSetor(fl validator.FieldLevel) bool {
	return session.ValidSetor(fl.Field().String())
}

var dataFiltroRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4})$`)

// validateDataFiltro aceita AAAA-MM-DD ou DD/MM/AAAA
func validateDataFiltro(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	return value == "" || dataFiltroRe.MatchString(value)
}

// FirstValidationMessage devolve uma mensagem curta para o primeiro campo inválido
func FirstValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Dados inválidos."
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return "Campo obrigatório: " + strings.ToLower(fe.Field()) + "."
	case "setor":
		return "Selecione um setor válido."
	case "no_xss":
		return "Conteúdo não permitido em " + strings.ToLower(fe.Field()) + "."
	case "valor_monetario":
		return "Valor inválido."
	case "data_filtro":
		return "Data inválida em " + strings.ToLower(fe.Field()) + "."
	default:
		return "Campo inválido: " + strings.ToLower(fe.Field()) + "."
	}
}
