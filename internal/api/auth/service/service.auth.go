// Package authsvc contém a lógica de login: autenticação no backend e emissão do ticket de sessão.
package authsvc

import (
	"context"
	"errors"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

// Backend é a parte do cliente REST usada no login
type Backend interface {
	Login(ctx context.Context, setor, codigo string) (backend.LoginResult, error)
	Logout(ctx context.Context, cookie string) ([]string, error)
	CheckAuth(ctx context.Context, cookie string) (backend.User, error)
}

// AuthService autentica e emite tickets
type AuthService struct {
	api      Backend
	sessions *session.Manager
}

// NewAuthService cria o serviço
func NewAuthService(api Backend, sessions *session.Manager) *AuthService {
	return &AuthService{api: api, sessions: sessions}
}

// Login é o resultado de um login aceito
type Login struct {
	User       session.User
	Ticket     string
	SetCookies []string // Cookies de sessão do backend, já sem Domain
}

// Login autentica no backend; o setor da resposta manda, e precisa ser conhecido
func (s *AuthService) Login(ctx context.Context, setor, codigo string) (Login, error) {
	res, err := s.api.Login(ctx, setor, codigo)
	if err != nil {
		var customErr *common.Error
		if errors.As(err, &customErr) && customErr.Code.Code == common.ErrCodeAuthSession.Code {
			return Login{}, common.ErrInvalidCredentials
		}
		return Login{}, err
	}

	user := session.User{ID: res.User.ID.String(), Nome: res.User.Nome, Setor: res.User.Setor}
	if !session.ValidSetor(user.Setor) {
		return Login{}, common.NewError(common.ErrCodeAuthRole, "Setor desconhecido: "+user.Setor, common.StatusForbidden, nil)
	}

	ticket, err := s.sessions.Issue(user)
	if err != nil {
		return Login{}, common.NewError(common.ErrCodeInternalServer, common.MsgInternalError, common.StatusInternalServerError, err.Error())
	}

	cookies := make([]string, 0, len(res.SetCookies))
	for _, sc := range res.SetCookies {
		cookies = append(cookies, session.StripDomain(sc))
	}
	return Login{User: user, Ticket: ticket, SetCookies: cookies}, nil
}

// Logout encerra a sessão do backend; falha do backend não impede sair localmente
func (s *AuthService) Logout(ctx context.Context, cookie string) ([]string, error) {
	if cookie == "" {
		return nil, nil
	}
	raw, err := s.api.Logout(ctx, cookie)
	cookies := make([]string, 0, len(raw))
	for _, sc := range raw {
		cookies = append(cookies, session.StripDomain(sc))
	}
	return cookies, err
}

// Check confirma no backend que a sessão ainda vale e que é do mesmo usuário do ticket
func (s *AuthService) Check(ctx context.Context, cookie string, user session.User) (session.User, error) {
	u, err := s.api.CheckAuth(ctx, cookie)
	if err != nil {
		return session.User{}, err
	}
	if id := u.ID.String(); id != "" && id != user.ID {
		return session.User{}, common.ErrSessionInvalid
	}
	return user, nil
}

// SetorOption é uma opção do seletor de setor
type SetorOption struct {
	Value    string
	Label    string
	Selected bool
}

// LoginPage é o view-model da página de login
type LoginPage struct {
	Setores []SetorOption
}

// NewLoginPage monta as opções de setor, marcando a escolhida
func NewLoginPage(selected string) LoginPage {
	p := LoginPage{Setores: make([]SetorOption, 0, len(session.Setores))}
	for _, s := range session.Setores {
		p.Setores = append(p.Setores, SetorOption{Value: s, Label: session.SetorLabel(s), Selected: s == selected})
	}
	return p
}
