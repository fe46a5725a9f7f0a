// Package web contém as páginas HTML (templates embutidos) e os arquivos estáticos.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"sync"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Nomes das páginas
const (
	PageLogin           = "login"
	PageIntake          = "intake"
	PageIntakeResult    = "intake_result"
	PageAdminList       = "admin_list"
	PageAdminDetail     = "admin_detail"
	PageDPQueue         = "dp_queue"
	PageDPProcess       = "dp_process"
	PageTrafegoQueue    = "trafego_queue"
	PageTrafegoConfirm  = "trafego_confirm"
	PageGallery         = "gallery"
	PageError           = "error"
	layoutTemplate      = "layout"
	layoutTemplateFile  = "templates/layout.html"
	templateFilePattern = "templates/%s.html"

	// PlaceholderImage substitui fotos que não carregam
	PlaceholderImage = "/static/placeholder-image.svg"
)

var pages = []string{
	PageLogin, PageIntake, PageIntakeResult,
	PageAdminList, PageAdminDetail,
	PageDPQueue, PageDPProcess,
	PageTrafegoQueue, PageTrafegoConfirm,
	PageGallery, PageError,
}

// View é o que toda página recebe: cabeçalho, usuário, alertas e o view-model da página
type View struct {
	Title   string
	AppName string
	User    *session.User
	Ok      string
	Erro    string
	Data    any
}

// Renderer guarda um template por página, cada um com o layout
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"inc":        func(i int) int { return i + 1 },
	"dec":        func(i int) int { return i - 1 },
	"setorLabel": session.SetorLabel,
	"homePath":   session.HomePath,
	"join":       strings.Join,
	"imageSrc":   imageSrc,
}

// imageSrc libera data URLs de imagem no atributo src; o resto passa pelo escape normal
func imageSrc(s string) template.URL {
	if strings.HasPrefix(s, "data:image/") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") {
		return template.URL(s)
	}
	return template.URL(PlaceholderImage)
}

// New lê os templates embutidos
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(layoutTemplate).Funcs(funcs).ParseFS(templatesFS, layoutTemplateFile, fmt.Sprintf(templateFilePattern, name))
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

var (
	defaultRenderer *Renderer
	defaultOnce     sync.Once
)

// Default devolve o renderer único do processo; templates inválidos derrubam a inicialização
func Default() *Renderer {
	defaultOnce.Do(func() {
		var err error
		defaultRenderer, err = New()
		if err != nil {
			panic(err)
		}
	})
	return defaultRenderer
}

// Render executa a página inteira num buffer
func (r *Renderer) Render(name string, v View) ([]byte, error) {
	t, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("página desconhecida: %s", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutTemplate, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StaticFS é o diretório static/ embutido
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
