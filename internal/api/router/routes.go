// Package router monta as rotas da aplicação.
//
// No Fiber v3 o middleware passado direto em router.Get(path, mw, handler) não é chamado.
// Use sempre RegisterRouteWithMiddleware, que aplica o middleware com .Use() num grupo.
// Como o grupo vale para o prefixo inteiro, o middleware pode rodar mais de uma vez
// por requisição e precisa ser idempotente. Nunca registre middleware no prefixo "/".
package router

import (
	"github.com/gofiber/fiber/v3"
)

// Router guarda a app para as funções de registro de cada domínio
type Router struct {
	app *fiber.App
}

// NewRouter cria um Router
func NewRouter(app *fiber.App) *Router {
	return &Router{app: app}
}

// App devolve a app Fiber
func (r *Router) App() *fiber.App {
	return r.app
}

// RegisterRouteWithMiddleware registra a rota num grupo com os middlewares aplicados via .Use()
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	routeGroup := router.Group(prefix)
	for _, mw := range middlewares {
		routeGroup.Use(mw)
	}

	switch method {
	case fiber.MethodGet:
		routeGroup.Get(path, handler)
	case fiber.MethodPost:
		routeGroup.Post(path, handler)
	case fiber.MethodPut:
		routeGroup.Put(path, handler)
	case fiber.MethodDelete:
		routeGroup.Delete(path, handler)
	}
}

// RegisterFunc é a função de registro exportada por cada domínio
type RegisterFunc func(root fiber.Router, r *Router) error

// SetupRoutes chama o registro de cada domínio na raiz da app
func SetupRoutes(app *fiber.App, regs ...RegisterFunc) error {
	r := NewRouter(app)
	for _, reg := range regs {
		if err := reg(app, r); err != nil {
			return err
		}
	}
	return nil
}
