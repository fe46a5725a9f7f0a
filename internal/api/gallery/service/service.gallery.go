// Package gallerysvc - visualizador de fotos de um relatório e download da imagem.
package gallerysvc

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
)

const (
	// PlaceholderURL substitui imagens que não carregam
	PlaceholderURL = "/static/placeholder-image.svg"
	// Unavailable é o texto exibido sobre o placeholder
	Unavailable = "Imagem não disponível"

	maxPhotoSize = 25 << 20
)

// ErrPhotoNotFound indica índice sem foto
var ErrPhotoNotFound = common.NewError(common.ErrCodeUpstreamStatus, "Foto não encontrada", common.StatusNotFound, nil)

// Lightbox é o estado do visualizador: lista de fotos e índice atual
type Lightbox struct {
	ReportID string
	Photos   []string
	Index    int
}

// Open posiciona o visualizador no índice pedido, limitado à lista
func Open(reportID string, photos []string, i int) Lightbox {
	lb := Lightbox{ReportID: reportID, Photos: photos}
	switch {
	case len(photos) == 0 || i < 0:
		lb.Index = 0
	case i >= len(photos):
		lb.Index = len(photos) - 1
	default:
		lb.Index = i
	}
	return lb
}

// Len é a quantidade de fotos
func (l Lightbox) Len() int { return len(l.Photos) }

// Current é a URL da foto atual ("" sem fotos)
func (l Lightbox) Current() string {
	if len(l.Photos) == 0 {
		return ""
	}
	return l.Photos[l.Index]
}

func (l Lightbox) step(d int) int {
	n := len(l.Photos)
	if n == 0 {
		return 0
	}
	return (l.Index + d + n) % n
}

// Next é o índice seguinte, voltando ao início no fim
func (l Lightbox) Next() int { return l.step(1) }

// Prev é o índice anterior, indo para o fim no início
func (l Lightbox) Prev() int { return l.step(-1) }

// Counter é o contador "i / N"
func (l Lightbox) Counter() string {
	if len(l.Photos) == 0 {
		return "0 / 0"
	}
	return fmt.Sprintf("%d / %d", l.Index+1, len(l.Photos))
}

// HasMany informa se há navegação entre fotos
func (l Lightbox) HasMany() bool { return len(l.Photos) > 1 }

// ViewURL é o link do visualizador para um índice
func (l Lightbox) ViewURL(i int) string {
	return fmt.Sprintf("/fotos/%s/%d", url.PathEscape(l.ReportID), i)
}

// DownloadURL é o link de download da foto atual
func (l Lightbox) DownloadURL() string {
	return l.ViewURL(l.Index) + "/download"
}

// DownloadName é o nome do arquivo baixado: foto_relatorio_<i+1>_<AAAA-MM-DD>.jpg
func DownloadName(index int, now time.Time) string {
	return fmt.Sprintf("foto_relatorio_%d_%s.jpg", index+1, now.In(relatorio.Location).Format(relatorio.ISODateLayout))
}

// Backend é a parte do cliente REST usada pela galeria
type Backend interface {
	GetReport(ctx context.Context, cookie, id string) (relatorio.Report, error)
}

// Photo é uma imagem baixada do armazenamento
type Photo struct {
	Body        []byte
	ContentType string
	FileName    string
}

// GalleryService monta o visualizador e baixa as fotos
type GalleryService struct {
	api     Backend
	client  *fasthttp.Client
	timeout time.Duration
}

// NewGalleryService cria o serviço com o timeout de download
func NewGalleryService(api Backend, timeout time.Duration) *GalleryService {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &GalleryService{
		api: api,
		client: &fasthttp.Client{
			Name:                "sistema-relatorios",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxPhotoSize,
		},
		timeout: timeout,
	}
}

// Lightbox busca o relatório e abre o visualizador no índice pedido
func (s *GalleryService) Lightbox(ctx context.Context, cookie, id string, index int) (Lightbox, relatorio.Report, error) {
	r, err := s.api.GetReport(ctx, cookie, id)
	if err != nil {
		return Lightbox{}, relatorio.Report{}, err
	}
	return Open(r.ID, r.Photos, index), r, nil
}

// Download busca a foto no armazenamento e devolve os bytes com o nome de download
func (s *GalleryService) Download(ctx context.Context, cookie, id string, index int, now time.Time) (Photo, error) {
	r, err := s.api.GetReport(ctx, cookie, id)
	if err != nil {
		return Photo{}, err
	}
	if index < 0 || index >= len(r.Photos) {
		return Photo{}, ErrPhotoNotFound
	}

	body, contentType, err := s.fetch(ctx, r.Photos[index])
	if err != nil {
		return Photo{}, err
	}
	return Photo{Body: body, ContentType: contentType, FileName: DownloadName(index, now)}, nil
}

func (s *GalleryService) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	if err := s.client.DoTimeout(req, resp, timeout); err != nil {
		logger.WithModule("gallery").WithError(err).WithField("url", rawURL).Warn("Falha ao baixar foto")
		if err == fasthttp.ErrTimeout {
			return nil, "", common.ErrBackendTimeout
		}
		return nil, "", common.ConvertTransportError(err)
	}

	status := resp.StatusCode()
	if status == fasthttp.StatusNotFound {
		return nil, "", ErrPhotoNotFound
	}
	if status < 200 || status >= 300 {
		return nil, "", common.NewError(common.ErrCodeUpstreamStatus, common.MsgBadGateway, common.StatusBadGateway, fmt.Sprintf("armazenamento respondeu %d", status))
	}

	contentType := string(resp.Header.ContentType())
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/jpeg"
	}
	body := append([]byte(nil), resp.Body()...)
	return body, contentType, nil
}
