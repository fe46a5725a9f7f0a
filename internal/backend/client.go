// Package backend é o cliente tipado da API REST de relatórios.
// Toda chamada repassa o cookie de sessão do navegador e respeita o context da requisição.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/logger"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
)

// maxBodySize limita respostas do backend (exportações incluídas)
const maxBodySize = 32 << 20

// Client conversa com o backend
type Client struct {
	baseURL string
	http    *http.Client
	reads   singleflight.Group
}

// New cria o cliente com a URL base e o timeout de cada chamada
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL retorna a URL base configurada
func (c *Client) BaseURL() string {
	return c.baseURL
}

type response struct {
	status     int
	header     http.Header
	body       []byte
	setCookies []string
}

// do executa a chamada e converte falhas de transporte e status não-2xx em *common.Error
func (c *Client) do(ctx context.Context, method, path string, query url.Values, cookie string, payload any) (*response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("serializar payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("montar requisição: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithModule("backend").WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
		}).WithError(err).Warn("Falha ao contactar o backend")
		return nil, common.ConvertTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, common.ConvertTransportError(err)
	}

	logger.WithModule("backend").WithFields(map[string]interface{}{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("Chamada ao backend")

	r := &response{
		status:     resp.StatusCode,
		header:     resp.Header,
		body:       data,
		setCookies: resp.Header.Values("Set-Cookie"),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return r, statusError(resp.StatusCode, data)
	}
	return r, nil
}

// statusError monta o erro de um status não-2xx, usando a mensagem do backend quando houver
func statusError(status int, body []byte) error {
	var env envelope
	_ = json.Unmarshal(body, &env)
	msg := env.text()

	switch status {
	case http.StatusUnauthorized:
		if msg == "" {
			msg = common.MsgUnauthorized
		}
		return common.NewError(common.ErrCodeAuthSession, msg, common.StatusUnauthorized, nil)
	case http.StatusNotFound:
		if msg == "" {
			msg = common.MsgNotFound
		}
		return common.NewError(common.ErrCodeUpstreamStatus, msg, common.StatusNotFound, nil)
	}

	if msg == "" {
		msg = fmt.Sprintf("Erro do servidor (HTTP %d)", status)
	}
	return common.NewError(common.ErrCodeUpstreamStatus, msg, status, nil)
}

// getJSON faz um GET agrupando chamadas idênticas simultâneas do mesmo usuário
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, cookie string, out any) error {
	key := cookie + "\x00" + path + "?" + query.Encode()
	v, err, _ := c.reads.Do(key, func() (interface{}, error) {
		resp, err := c.do(ctx, http.MethodGet, path, query, cookie, nil)
		if err != nil {
			return nil, err
		}
		return resp.body, nil
	})
	if err != nil {
		return err
	}
	return decode(v.([]byte), out)
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return common.NewError(common.ErrCodeUpstreamBody, common.MsgInvalidFormat, common.StatusBadGateway, err.Error())
	}
	return nil
}

// checkSuccess transforma {success:false} em erro de negócio
func checkSuccess(body []byte) (envelope, error) {
	var env envelope
	if err := decode(body, &env); err != nil {
		return env, err
	}
	if env.Success != nil && !*env.Success {
		msg := env.text()
		if msg == "" {
			msg = "Operação recusada pelo servidor"
		}
		return env, common.NewError(common.ErrCodeBusinessOperation, msg, common.StatusUnprocessableEntity, nil)
	}
	return env, nil
}

// Login autentica setor + código de acesso
func (c *Client) Login(ctx context.Context, setor, codigo string) (LoginResult, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/login", nil, "", LoginRequest{Setor: setor, Codigo: codigo})
	if err != nil {
		return LoginResult{}, err
	}
	env, err := checkSuccess(resp.body)
	if err != nil {
		return LoginResult{}, err
	}
	if env.User == nil {
		return LoginResult{}, common.NewError(common.ErrCodeUpstreamBody, common.MsgInvalidFormat, common.StatusBadGateway, "login sem usuário")
	}

	user := *env.User
	if user.Setor == "" {
		user.Setor = setor
	}
	return LoginResult{User: user, SetCookies: resp.setCookies}, nil
}

// Logout encerra a sessão no backend e devolve os cookies que a limpam
func (c *Client) Logout(ctx context.Context, cookie string) ([]string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/logout", nil, cookie, struct{}{})
	if err != nil {
		return nil, err
	}
	return resp.setCookies, nil
}

// CheckAuth confirma a sessão do backend
func (c *Client) CheckAuth(ctx context.Context, cookie string) (User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/check-auth", nil, cookie, nil)
	if err != nil {
		return User{}, err
	}
	var env envelope
	if err := decode(resp.body, &env); err != nil {
		return User{}, err
	}
	ok := (env.Success != nil && *env.Success) || (env.Authenticated != nil && *env.Authenticated)
	if !ok || env.User == nil {
		return User{}, common.ErrSessionInvalid
	}
	return *env.User, nil
}

// ListReportTypes lista os tipos de relatório
func (c *Client) ListReportTypes(ctx context.Context, cookie string) ([]ReportType, error) {
	var out []ReportType
	err := c.getJSON(ctx, "/api/tipos-relatorio", nil, cookie, &out)
	return out, err
}

// ListPorteiros lista os porteiros
func (c *Client) ListPorteiros(ctx context.Context, cookie string) ([]Porteiro, error) {
	var out []Porteiro
	err := c.getJSON(ctx, "/api/porteiros", nil, cookie, &out)
	return out, err
}

// ListReports lista relatórios com filtros e paginação já codificados em query
func (c *Client) ListReports(ctx context.Context, cookie string, query url.Values) (ReportPage, error) {
	var out ReportPage
	err := c.getJSON(ctx, "/api/relatorios", query, cookie, &out)
	return out, err
}

// GetReport busca um relatório pelo ID
func (c *Client) GetReport(ctx context.Context, cookie, id string) (relatorio.Report, error) {
	var out relatorio.Report
	err := c.getJSON(ctx, "/api/relatorios/"+url.PathEscape(id), nil, cookie, &out)
	return out, err
}

// GetReportByNumero busca um relatório pelo número da OS
func (c *Client) GetReportByNumero(ctx context.Context, cookie, numeroOS string) (relatorio.Report, error) {
	var out relatorio.Report
	err := c.getJSON(ctx, "/api/relatorios/numero/"+url.PathEscape(numeroOS), nil, cookie, &out)
	return out, err
}

// CreateReport envia um novo relatório com as fotos pendentes
func (c *Client) CreateReport(ctx context.Context, cookie string, req CreateReportRequest) (CreateReportResult, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/relatorios", nil, cookie, req)
	if err != nil {
		return CreateReportResult{}, err
	}
	if _, err := checkSuccess(resp.body); err != nil {
		return CreateReportResult{}, err
	}
	var out CreateReportResult
	if err := decode(resp.body, &out); err != nil {
		return CreateReportResult{}, err
	}
	return out, nil
}

// UpdateStatus avança o status de um relatório
func (c *Client) UpdateStatus(ctx context.Context, cookie, id string, update StatusUpdate) error {
	resp, err := c.do(ctx, http.MethodPut, "/api/relatorios/"+url.PathEscape(id)+"/status", nil, cookie, update)
	if err != nil {
		return err
	}
	_, err = checkSuccess(resp.body)
	return err
}

// Stats busca as estatísticas sob os mesmos filtros da listagem
func (c *Client) Stats(ctx context.Context, cookie string, query url.Values) (Stats, error) {
	var out Stats
	err := c.getJSON(ctx, "/api/estatisticas", query, cookie, &out)
	return out, err
}

// ExportHTML baixa a exportação HTML gerada pelo backend
func (c *Client) ExportHTML(ctx context.Context, cookie string, query url.Values) (Export, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/exportar/html", query, cookie, nil)
	if err != nil {
		return Export{}, err
	}
	ct := resp.header.Get("Content-Type")
	if ct == "" {
		ct = "text/html; charset=utf-8"
	}
	return Export{Body: resp.body, ContentType: ct}, nil
}

// Ping verifica se o backend responde; qualquer resposta HTTP conta como disponível
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/check-auth", nil, "", nil)
	var ce *common.Error
	if err != nil && errors.As(err, &ce) && ce.Code.Code == common.ErrCodeNetwork.Code {
		return err
	}
	return nil
}
