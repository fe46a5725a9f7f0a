package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(cfg *LogConfig, buf *bytes.Buffer) (*logrus.Logger, *AsyncHook) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	l.SetLevel(logrus.DebugLevel)
	l.AddHook(NewFilterHook(cfg))
	hook := NewAsyncHook(buf, 10)
	l.AddHook(hook)
	l.SetOutput(&bytes.Buffer{})
	return l, hook
}

func TestAsyncHookWritesEntries(t *testing.T) {
	var buf bytes.Buffer
	l, hook := newTestLogger(&LogConfig{}, &buf)

	l.WithField("module", "dp").Info("relatório processado")
	require.NoError(t, hook.Close())

	out := buf.String()
	assert.Contains(t, out, "relatório processado")
	assert.Contains(t, out, "module=dp")
	assert.NotContains(t, out, "_filtered")
}

func TestFilterHook(t *testing.T) {
	t.Run("módulo fora da lista é descartado", func(t *testing.T) {
		var buf bytes.Buffer
		l, hook := newTestLogger(&LogConfig{FilterModules: "admin, dp"}, &buf)

		l.WithField("module", "trafego").Info("descartado")
		l.WithField("module", "DP").Info("mantido")
		l.Info("sem módulo")
		require.NoError(t, hook.Close())

		out := buf.String()
		assert.NotContains(t, out, "descartado")
		assert.Contains(t, out, "mantido")
		assert.Contains(t, out, "sem módulo")
	})

	t.Run("filtro por nível", func(t *testing.T) {
		var buf bytes.Buffer
		l, hook := newTestLogger(&LogConfig{FilterLogTypes: "error"}, &buf)

		l.Info("info")
		l.Error("falhou")
		require.NoError(t, hook.Close())

		out := buf.String()
		assert.NotContains(t, out, "msg=info")
		assert.Contains(t, out, "falhou")
	})

	t.Run("filtro por endpoint usa prefixo do path", func(t *testing.T) {
		var buf bytes.Buffer
		l, hook := newTestLogger(&LogConfig{FilterEndpoints: "/admin"}, &buf)

		l.WithField("path", "/admin/relatorios/1").Info("admin")
		l.WithField("path", "/dp").Info("dp")
		require.NoError(t, hook.Close())

		out := buf.String()
		assert.Contains(t, out, "msg=admin")
		assert.NotContains(t, out, "msg=dp")
	})
}

func TestParseFilter(t *testing.T) {
	assert.Nil(t, parseFilter(""))
	assert.Nil(t, parseFilter("*"))
	assert.Nil(t, parseFilter("a,*"))
	assert.Equal(t, map[string]bool{"a": true, "b": true}, parseFilter(" A , b ,"))
}
