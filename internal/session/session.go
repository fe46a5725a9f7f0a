// Package session cuida do ticket de sessão do navegador e dos cookies repassados ao backend.
//
// O ticket é um JWT assinado com {id, nome, setor}; a sessão real continua sendo a do backend,
// cujo cookie é repassado em toda chamada.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TicketCookie é o nome do cookie que carrega o ticket
const TicketCookie = "sr_ticket"

// Setores
const (
	SetorPorteiro = "porteiro"
	SetorAdmin    = "admin"
	SetorDP       = "dp"
	SetorTrafego  = "trafego"
)

// Setores lista os setores na ordem do formulário de login
var Setores = []string{SetorPorteiro, SetorAdmin, SetorDP, SetorTrafego}

var (
	ErrInvalidTicket = errors.New("ticket inválido")
	ErrExpiredTicket = errors.New("ticket expirado")
)

// User é o usuário da sessão
type User struct {
	ID    string `json:"id"`
	Nome  string `json:"nome"`
	Setor string `json:"setor"`
}

// Claims é o conteúdo assinado do ticket
type Claims struct {
	UserID string `json:"userId"`
	Nome   string `json:"nome"`
	Setor  string `json:"setor"`
	jwt.StandardClaims
}

// Manager emite e valida tickets
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewManager cria o gerenciador de tickets
func NewManager(secret string, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, secure: secure}
}

// TTL retorna a validade do ticket
func (m *Manager) TTL() time.Duration { return m.ttl }

// Secure indica se os cookies exigem HTTPS
func (m *Manager) Secure() bool { return m.secure }

// Issue assina um ticket para o usuário
func (m *Manager) Issue(u User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Nome:   u.Nome,
		Setor:  u.Setor,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			NotBefore: now.Unix(),
			ExpiresAt: now.Add(m.ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse valida o ticket e retorna o usuário
func (m *Manager) Parse(ticket string) (User, error) {
	if ticket == "" {
		return User{}, ErrInvalidTicket
	}
	token, err := jwt.ParseWithClaims(ticket, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return User{}, ErrExpiredTicket
		}
		return User{}, ErrInvalidTicket
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !ValidSetor(claims.Setor) {
		return User{}, ErrInvalidTicket
	}
	return User{ID: claims.UserID, Nome: claims.Nome, Setor: claims.Setor}, nil
}

// ValidSetor informa se o setor é conhecido
func ValidSetor(setor string) bool {
	for _, s := range Setores {
		if s == setor {
			return true
		}
	}
	return false
}

// HomePath é a página inicial de cada setor
func HomePath(setor string) string {
	switch setor {
	case SetorAdmin:
		return "/admin"
	case SetorDP:
		return "/dp"
	case SetorTrafego:
		return "/trafego"
	case SetorPorteiro:
		return "/"
	}
	return "/login"
}

// SetorLabel é o nome do setor exibido nas páginas
func SetorLabel(setor string) string {
	switch setor {
	case SetorPorteiro:
		return "Porteiro"
	case SetorAdmin:
		return "Administrativo"
	case SetorDP:
		return "DP"
	case SetorTrafego:
		return "Tráfego"
	}
	return setor
}

// StripDomain remove o atributo Domain de um Set-Cookie vindo do backend,
// para que o cookie fique no host deste servidor
func StripDomain(setCookie string) string {
	parts := strings.Split(setCookie, ";")
	out := parts[:0]
	for _, p := range parts {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(p)), "domain=") {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ";")
}

// ForwardHeader monta o cabeçalho Cookie para o backend sem o ticket local
func ForwardHeader(raw string) string {
	if raw == "" {
		return ""
	}
	req := http.Request{Header: http.Header{"Cookie": {raw}}}
	parts := make([]string, 0, 4)
	for _, ck := range req.Cookies() {
		if ck.Name == TicketCookie {
			continue
		}
		parts = append(parts, ck.Name+"="+ck.Value)
	}
	return strings.Join(parts, "; ")
}
