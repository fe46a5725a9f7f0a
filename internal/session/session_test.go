package session

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("segredo", time.Hour, false)
	u := User{ID: "7", Nome: "Maria", Setor: SetorDP}

	ticket, err := m.Issue(u)
	require.NoError(t, err)

	got, err := m.Parse(ticket)
	require.NoError(t, err)
	assert.Equal(t, u, got)

	t.Run("outro segredo", func(t *testing.T) {
		_, err := NewManager("outro", time.Hour, false).Parse(ticket)
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})

	t.Run("vazio ou lixo", func(t *testing.T) {
		_, err := m.Parse("")
		assert.ErrorIs(t, err, ErrInvalidTicket)
		_, err = m.Parse("a.b.c")
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})

	t.Run("setor desconhecido", func(t *testing.T) {
		bad, err := m.Issue(User{ID: "1", Setor: "diretoria"})
		require.NoError(t, err)
		_, err = m.Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})
}

func TestParseExpired(t *testing.T) {
	m := NewManager("segredo", time.Hour, false)
	claims := Claims{
		UserID: "1",
		Setor:  SetorAdmin,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		},
	}
	ticket, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("segredo"))
	require.NoError(t, err)

	_, err = m.Parse(ticket)
	assert.ErrorIs(t, err, ErrExpiredTicket)
}

func TestHomePath(t *testing.T) {
	cases := map[string]string{
		SetorPorteiro: "/",
		SetorAdmin:    "/admin",
		SetorDP:       "/dp",
		SetorTrafego:  "/trafego",
		"":            "/login",
	}
	for setor, want := range cases {
		assert.Equal(t, want, HomePath(setor), setor)
	}
}

func TestStripDomain(t *testing.T) {
	in := "session=abc; Domain=api.exemplo.com; Path=/; HttpOnly"
	assert.Equal(t, "session=abc; Path=/; HttpOnly", StripDomain(in))
	assert.Equal(t, "a=b", StripDomain("a=b"))
}

func TestForwardHeader(t *testing.T) {
	assert.Equal(t, "session=abc; outro=1", ForwardHeader("session=abc; sr_ticket=xyz; outro=1"))
	assert.Equal(t, "", ForwardHeader("sr_ticket=xyz"))
	assert.Equal(t, "", ForwardHeader(""))
}
