// Package galleryhdl - handler do visualizador de fotos e do download.
package galleryhdl

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/base/handler"
	gallerysvc "github.com/VictorDevAgencia74/sistema-relatorios/internal/api/gallery/service"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/api/middleware"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/global"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/session"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/web"
)

// Page é o view-model do visualizador
type Page struct {
	Lightbox gallerysvc.Lightbox
	Report   relatorio.Report
	Back     string
}

// GalleryHandler trata as rotas de fotos
type GalleryHandler struct {
	Service *gallerysvc.GalleryService
	now     func() time.Time
}

// NewGalleryHandler cria uma nova instância de GalleryHandler
func NewGalleryHandler() (*GalleryHandler, error) {
	if global.Backend == nil || global.ServerConfig == nil {
		return nil, fmt.Errorf("backend ou configuração não inicializados")
	}
	return &GalleryHandler{
		Service: gallerysvc.NewGalleryService(global.Backend, global.ServerConfig.PhotoTimeout()),
		now:     time.Now,
	}, nil
}

func photoIndex(c fiber.Ctx) (int, error) {
	i, err := strconv.Atoi(c.Params("indice"))
	if err != nil || i < 0 {
		return 0, gallerysvc.ErrPhotoNotFound
	}
	return i, nil
}

// backFor volta para o detalhe (admin) ou para a fila do setor
func backFor(c fiber.Ctx, id string) string {
	user, _ := middleware.CurrentUser(c)
	if user.Setor == session.SetorAdmin {
		return "/admin/relatorios/" + url.PathEscape(id)
	}
	return session.HomePath(user.Setor)
}

// HandleView mostra a foto do índice com navegação anterior/próxima
func (h *GalleryHandler) HandleView(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		i, err := photoIndex(c)
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		id := c.Params("id")
		lb, r, err := h.Service.Lightbox(c.Context(), middleware.BackendCookie(c), id, i)
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		return basehdl.Render(c, common.StatusOK, web.PageGallery, basehdl.NewView(c, "Fotos", Page{
			Lightbox: lb,
			Report:   r,
			Back:     backFor(c, id),
		}))
	})
}

// HandleDownload baixa a foto como anexo
func (h *GalleryHandler) HandleDownload(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		i, err := photoIndex(c)
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		id := c.Params("id")
		p, err := h.Service.Download(c.Context(), middleware.BackendCookie(c), id, i, h.now())
		if err != nil {
			return basehdl.HandleError(c, err)
		}
		logger.LogAction("foto_baixada", c, id, map[string]interface{}{"indice": i, "bytes": len(p.Body)})
		c.Set(fiber.HeaderContentType, p.ContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+p.FileName+`"`)
		return c.Status(common.StatusOK).Send(p.Body)
	})
}
