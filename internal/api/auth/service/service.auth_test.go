package authsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

type fakeBackend struct {
	login    backend.LoginResult
	loginErr error
	logout   []string
	user     backend.User
	checkErr error
}

func (f *fakeBackend) Login(context.Context, string, string) (backend.LoginResult, error) {
	return f.login, f.loginErr
}

func (f *fakeBackend) Logout(context.Context, string) ([]string, error) {
	return f.logout, nil
}

func (f *fakeBackend) CheckAuth(context.Context, string) (backend.User, error) {
	return f.user, f.checkErr
}

func newService(api Backend) (*AuthService, *session.Manager) {
	m := session.NewManager("segredo", time.Hour, false)
	return NewAuthService(api, m), m
}

func TestLogin(t *testing.T) {
	t.Run("emite ticket e tira o Domain dos cookies", func(t *testing.T) {
		svc, m := newService(&fakeBackend{login: backend.LoginResult{
			User:       backend.User{ID: "7", Nome: "Rita", Setor: session.SetorDP},
			SetCookies: []string{"connect.sid=abc; Path=/; Domain=api.local; HttpOnly"},
		}})

		res, err := svc.Login(context.Background(), session.SetorDP, "1234")
		require.NoError(t, err)
		assert.Equal(t, session.User{ID: "7", Nome: "Rita", Setor: session.SetorDP}, res.User)
		assert.Equal(t, []string{"connect.sid=abc; Path=/; HttpOnly"}, res.SetCookies)

		parsed, err := m.Parse(res.Ticket)
		require.NoError(t, err)
		assert.Equal(t, res.User, parsed)
	})

	t.Run("código errado", func(t *testing.T) {
		svc, _ := newService(&fakeBackend{loginErr: common.NewError(common.ErrCodeAuthSession, "x", common.StatusUnauthorized, nil)})
		_, err := svc.Login(context.Background(), session.SetorDP, "0000")
		assert.True(t, errors.Is(err, common.ErrInvalidCredentials))
	})

	t.Run("setor desconhecido na resposta", func(t *testing.T) {
		svc, _ := newService(&fakeBackend{login: backend.LoginResult{User: backend.User{ID: "1", Setor: "financeiro"}}})
		_, err := svc.Login(context.Background(), session.SetorDP, "1234")
		assert.Equal(t, common.StatusForbidden, common.StatusOf(err))
	})

	t.Run("backend fora", func(t *testing.T) {
		svc, _ := newService(&fakeBackend{loginErr: common.ErrBackendUnreachable})
		_, err := svc.Login(context.Background(), session.SetorDP, "1234")
		assert.True(t, errors.Is(err, common.ErrBackendUnreachable))
	})
}

func TestLogout(t *testing.T) {
	svc, _ := newService(&fakeBackend{logout: []string{"connect.sid=; Domain=api.local; Max-Age=0"}})

	cookies, err := svc.Logout(context.Background(), "")
	assert.NoError(t, err)
	assert.Empty(t, cookies)

	cookies, err = svc.Logout(context.Background(), "connect.sid=abc")
	assert.NoError(t, err)
	assert.Equal(t, []string{"connect.sid=; Max-Age=0"}, cookies)
}

func TestCheck(t *testing.T) {
	user := session.User{ID: "7", Nome: "Rita", Setor: session.SetorDP}

	svc, _ := newService(&fakeBackend{user: backend.User{ID: "7"}})
	got, err := svc.Check(context.Background(), "connect.sid=abc", user)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	svc, _ = newService(&fakeBackend{user: backend.User{ID: "8"}})
	_, err = svc.Check(context.Background(), "connect.sid=abc", user)
	assert.True(t, errors.Is(err, common.ErrSessionInvalid))
}

func TestNewLoginPage(t *testing.T) {
	p := NewLoginPage(session.SetorTrafego)
	require.Len(t, p.Setores, len(session.Setores))
	for _, s := range p.Setores {
		assert.Equal(t, s.Value == session.SetorTrafego, s.Selected, s.Value)
		assert.NotEmpty(t, s.Label)
	}
}
