package common

import (
	"context"
	"errors"
	"net"
)

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK        = 200 // Sucesso
	StatusCreated   = 201 // Criado com sucesso
	StatusNoContent = 204 // Sucesso sem conteúdo

	// Redirection Codes (3xx)
	StatusSeeOther = 303 // Redirecionamento após POST (PRG)

	// Client Error Codes (4xx)
	StatusBadRequest          = 400 // Requisição inválida
	StatusUnauthorized        = 401 // Não autenticado
	StatusForbidden           = 403 // Sem permissão
	StatusNotFound            = 404 // Recurso não encontrado
	StatusConflict            = 409 // Conflito (ação já em andamento)
	StatusUnprocessableEntity = 422 // Regra de negócio recusada pelo backend
	StatusTooManyRequests     = 429 // Muitas requisições

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Erro interno
	StatusBadGateway          = 502 // Backend inacessível ou resposta inválida
	StatusServiceUnavailable  = 503 // Serviço indisponível
	StatusGatewayTimeout      = 504 // Backend não respondeu a tempo
)

// Response Messages
const (
	// Success Messages
	MsgSuccess = "Operação realizada com sucesso"

	// Error Messages
	MsgBadRequest         = "Requisição inválida"
	MsgUnauthorized       = "Por favor, faça login"
	MsgForbidden          = "Acesso não permitido para este setor"
	MsgNotFound           = "Relatório não encontrado"
	MsgConflict           = "Ação já em andamento"
	MsgTooManyRequests    = "Muitas requisições, tente novamente em instantes"
	MsgInternalError      = "Erro interno do sistema"
	MsgBadGateway         = "Não foi possível contactar o servidor"
	MsgGatewayTimeout     = "O servidor demorou demais para responder"
	MsgServiceUnavailable = "Serviço indisponível"

	// Validation Messages
	MsgValidationError = "Dados inválidos"
	MsgInvalidFormat   = "Resposta do servidor em formato inválido"
)

// ErrorCode define o código de erro detalhado
type ErrorCode struct {
	Code        string // Código (ex.: AUTH_001)
	Category    string // Categoria (ex.: Authentication)
	SubCategory string // Subcategoria (ex.: Session)
	Description string // Descrição
}

// Códigos de erro organizados por categoria
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Erro interno do sistema",
	}

	// Authentication Errors (AUTH_xxx)
	ErrCodeAuthSession = ErrorCode{
		Code:        "AUTH_001",
		Category:    "Authentication",
		SubCategory: "Session",
		Description: "Sessão ausente, inválida ou expirada",
	}

	ErrCodeAuthCredentials = ErrorCode{
		Code:        "AUTH_002",
		Category:    "Authentication",
		SubCategory: "Credentials",
		Description: "Setor ou código de acesso inválido",
	}

	ErrCodeAuthRole = ErrorCode{
		Code:        "AUTH_003",
		Category:    "Authentication",
		SubCategory: "Role",
		Description: "Setor sem acesso a esta página",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Dados de entrada inválidos",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Formato de dado inválido",
	}

	// Network Errors (NET_xxx)
	ErrCodeNetwork = ErrorCode{
		Code:        "NET_001",
		Category:    "Network",
		SubCategory: "Transport",
		Description: "Falha de transporte ao contactar o backend",
	}

	// Upstream Errors (UPS_xxx)
	ErrCodeUpstreamStatus = ErrorCode{
		Code:        "UPS_001",
		Category:    "Upstream",
		SubCategory: "Status",
		Description: "Backend respondeu com status de erro",
	}

	ErrCodeUpstreamBody = ErrorCode{
		Code:        "UPS_002",
		Category:    "Upstream",
		SubCategory: "Body",
		Description: "Corpo da resposta do backend malformado",
	}

	// Business Logic Errors (BIZ_xxx)
	ErrCodeBusinessState = ErrorCode{
		Code:        "BIZ_001",
		Category:    "Business",
		SubCategory: "State",
		Description: "Transição de status inválida",
	}

	ErrCodeBusinessOperation = ErrorCode{
		Code:        "BIZ_002",
		Category:    "Business",
		SubCategory: "Operation",
		Description: "Backend recusou a operação (success=false)",
	}

	ErrCodeBusinessInFlight = ErrorCode{
		Code:        "BIZ_003",
		Category:    "Business",
		SubCategory: "InFlight",
		Description: "Ação idêntica já em andamento",
	}
)

// Error define a estrutura de erro detalhada
type Error struct {
	Code       ErrorCode // Código detalhado
	Message    string    // Mensagem exibida ao usuário
	StatusCode int       // HTTP status code
	Details    any       // Informação extra
}

// Error retorna a mensagem do erro
func (e *Error) Error() string {
	return e.Message
}

// Is compara pelo código e mensagem (suporte a errors.Is)
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code.Code == t.Code.Code && e.Message == t.Message
}

// NewError cria um novo erro com todas as informações
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Erros pré-definidos
var (
	// Authentication Errors
	ErrSessionMissing     = NewError(ErrCodeAuthSession, MsgUnauthorized, StatusUnauthorized, nil)
	ErrSessionInvalid     = NewError(ErrCodeAuthSession, "Sessão expirada, faça login novamente", StatusUnauthorized, nil)
	ErrInvalidCredentials = NewError(ErrCodeAuthCredentials, "Setor ou código de acesso inválido", StatusUnauthorized, nil)
	ErrWrongRole          = NewError(ErrCodeAuthRole, MsgForbidden, StatusForbidden, nil)

	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, MsgValidationError, StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, MsgInvalidFormat, StatusBadGateway, nil)

	// Network / Upstream Errors
	ErrBackendUnreachable = NewError(ErrCodeNetwork, MsgBadGateway, StatusBadGateway, nil)
	ErrBackendTimeout     = NewError(ErrCodeNetwork, MsgGatewayTimeout, StatusGatewayTimeout, nil)
	ErrNotFound           = NewError(ErrCodeUpstreamStatus, MsgNotFound, StatusNotFound, nil)

	// Business Logic Errors
	ErrInvalidTransition = NewError(ErrCodeBusinessState, "Transição de status não permitida", StatusConflict, nil)
	ErrInFlight          = NewError(ErrCodeBusinessInFlight, MsgConflict, StatusConflict, nil)
)

// ConvertTransportError converte falhas de rede do cliente HTTP em erros do sistema
func ConvertTransportError(err error) error {
	if err == nil {
		return nil
	}

	var customErr *Error
	if errors.As(err, &customErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrBackendTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrBackendTimeout
	}

	return NewError(ErrCodeNetwork, MsgBadGateway, StatusBadGateway, err.Error())
}

// StatusOf retorna o HTTP status de um erro (500 quando não for *Error)
func StatusOf(err error) int {
	var customErr *Error
	if errors.As(err, &customErr) && customErr.StatusCode > 0 {
		return customErr.StatusCode
	}
	return StatusInternalServerError
}

// MessageOf retorna a mensagem amigável de um erro
func MessageOf(err error) string {
	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Message
	}
	return MsgInternalError
}
