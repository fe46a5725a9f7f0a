package web

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

func TestAllPagesParse(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Len(t, r.pages, len(pages))
}

func TestRenderLayout(t *testing.T) {
	r := Default()
	user := &session.User{ID: "1", Nome: "Rita", Setor: session.SetorDP}

	out, err := r.Render(PageError, View{
		Title:   "Erro",
		AppName: "Relatórios",
		User:    user,
		Erro:    "<b>falhou</b>",
		Data: struct {
			Status  int
			Message string
			Back    string
		}{404, "Página não encontrada", "/dp"},
	})
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<title>Erro | Relatórios</title>")
	assert.Contains(t, html, `href="/dp"`)
	assert.Contains(t, html, "Rita")
	assert.Contains(t, html, "&lt;b&gt;falhou&lt;/b&gt;")
	assert.Contains(t, html, "Página não encontrada")
}

func TestRenderUnknownPage(t *testing.T) {
	_, err := Default().Render("nada", View{})
	assert.Error(t, err)
}

func TestImageSrc(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AAA", string(imageSrc("data:image/png;base64,AAA")))
	assert.Equal(t, "https://cdn/x.jpg", string(imageSrc("https://cdn/x.jpg")))
	assert.Equal(t, PlaceholderImage, string(imageSrc("javascript:alert(1)")))
}

func TestStaticFS(t *testing.T) {
	_, err := fs.Stat(StaticFS(), "app.css")
	assert.NoError(t, err)
}

func TestCopyFallsBackWhenClipboardRejects(t *testing.T) {
	js, err := fs.ReadFile(StaticFS(), "app.js")
	require.NoError(t, err)
	src := string(js)

	i := strings.Index(src, "navigator.clipboard.writeText(text)")
	require.GreaterOrEqual(t, i, 0)
	rest := src[i:]
	assert.Regexp(t, `^navigator\.clipboard\.writeText\(text\)\.catch\(function \(\) \{\s*return legacyCopy\(text\);`, rest)
	assert.Contains(t, src, "function legacyCopy(text)")
}
