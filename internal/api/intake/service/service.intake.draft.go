package intakesvc

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/VictorDevAgencia74/sistema-relatorios/internal/backend"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/common"
	"github.com/VictorDevAgencia74/sistema-relatorios/internal/relatorio"
)

// PorteiroDesconhecido aparece na prévia quando a sessão não tem nome
const PorteiroDesconhecido = "Não identificado"

// Photo é uma foto pendente de envio
type Photo struct {
	FileName string // Nome original do arquivo
	DataURL  string // data:<mime>;base64,... usado na prévia e no envio
}

// Draft é o rascunho de um relatório, montado por requisição
type Draft struct {
	Tipo     ReportType
	Porteiro string
	Values   map[string]string
	Touched  map[string]bool
	Photos   map[string]Photo
}

// NewDraft cria um rascunho vazio para o tipo
func NewDraft(tipo ReportType, porteiro string) *Draft {
	return &Draft{
		Tipo:     tipo,
		Porteiro: porteiro,
		Values:   make(map[string]string),
		Touched:  make(map[string]bool),
		Photos:   make(map[string]Photo),
	}
}

// Set grava o valor de um campo e o marca como editado
func (d *Draft) Set(name, value string) {
	d.Values[name] = value
	d.Touched[name] = true
}

// AttachPhoto substitui a foto do campo; só vale para campos file
func (d *Draft) AttachPhoto(name, fileName string, data []byte) error {
	c, ok := d.Tipo.Campo(name)
	if !ok || !c.IsFile() {
		return common.NewError(common.ErrCodeValidationInput, fmt.Sprintf("Campo %q não aceita fotos", name), common.StatusBadRequest, nil)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return common.NewError(common.ErrCodeValidationInput, fmt.Sprintf("O arquivo de %s não é uma imagem", c.Label), common.StatusBadRequest, nil)
	}
	d.Photos[name] = Photo{
		FileName: fileName,
		DataURL:  "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data),
	}
	return nil
}

// RemovePhoto volta o campo ao estado sem foto
func (d *Draft) RemovePhoto(name string) {
	delete(d.Photos, name)
}

// value é o valor exibido na prévia: o digitado, ou o default se o campo nunca foi editado
func (d *Draft) value(c Campo) string {
	if v := d.Values[c.Name]; v != "" {
		return v
	}
	if !d.Touched[c.Name] {
		return c.Default
	}
	return ""
}

// Preview monta o texto do relatório; FOTO<n> conta só os campos de foto preenchidos
func (d *Draft) Preview(now time.Time) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(d.Tipo.Nome))
	b.WriteString("\n\n")
	b.WriteString("Data: " + relatorio.FormatDateTime(&now) + "\n")

	porteiro := strings.TrimSpace(d.Porteiro)
	if porteiro == "" {
		porteiro = PorteiroDesconhecido
	}
	b.WriteString("Porteiro: " + porteiro + "\n\n")

	for _, c := range d.Tipo.Campos {
		if c.IsFile() {
			continue
		}
		b.WriteString("• " + c.Label + ": " + d.value(c) + "\n")
	}

	if d.Tipo.HasFileFields() {
		b.WriteString("\nFotos da avaria:")
		n := 1
		for _, c := range d.Tipo.Campos {
			if _, ok := d.Photos[c.Name]; c.IsFile() && ok {
				b.WriteString("\n- " + c.Label + ": FOTO" + strconv.Itoa(n))
				n++
			}
		}
	}
	return b.String()
}

// Validate exige os campos obrigatórios que não são de foto
func (d *Draft) Validate() error {
	var missing []string
	for _, c := range d.Tipo.Campos {
		if c.IsFile() || !c.Required {
			continue
		}
		if strings.TrimSpace(d.Values[c.Name]) == "" {
			missing = append(missing, c.Label)
		}
	}
	if len(missing) > 0 {
		return common.NewError(common.ErrCodeValidationInput,
			"Preencha os campos obrigatórios: "+strings.Join(missing, ", "),
			common.StatusBadRequest, missing)
	}
	return nil
}

// Payload monta o corpo do envio; as fotos seguem a ordem dos campos, então fotosUrls[i] é FOTO{i+1}
func (d *Draft) Payload(texto string) (backend.CreateReportRequest, error) {
	tipoID, err := strconv.Atoi(d.Tipo.ID)
	if err != nil {
		return backend.CreateReportRequest{}, common.NewError(common.ErrCodeValidationInput, "Selecione um tipo de relatório válido", common.StatusBadRequest, nil)
	}

	req := backend.CreateReportRequest{
		TipoID:               tipoID,
		Dados:                texto,
		DestinatarioWhatsapp: d.Tipo.DestinatarioWhatsapp,
		Fotos:                []backend.PhotoUpload{},
	}
	for _, c := range d.Tipo.Campos {
		p, ok := d.Photos[c.Name]
		if !c.IsFile() || !ok {
			continue
		}
		req.Fotos = append(req.Fotos, backend.PhotoUpload{
			Base64:    p.DataURL,
			CampoNome: c.Name,
			FileName:  p.FileName,
		})
	}
	return req, nil
}

// RestorePhoto reanexa uma foto que voltou do navegador num campo oculto
func (d *Draft) RestorePhoto(name, fileName, dataURL string) error {
	c, ok := d.Tipo.Campo(name)
	if !ok || !c.IsFile() {
		return common.NewError(common.ErrCodeValidationInput, fmt.Sprintf("Campo %q não aceita fotos", name), common.StatusBadRequest, nil)
	}
	if !strings.HasPrefix(dataURL, "data:image/") || !strings.Contains(dataURL, ";base64,") {
		return common.NewError(common.ErrCodeValidationInput, fmt.Sprintf("O arquivo de %s não é uma imagem", c.Label), common.StatusBadRequest, nil)
	}
	d.Photos[name] = Photo{FileName: fileName, DataURL: dataURL}
	return nil
}

// FillFromForm copia os valores enviados; campos fora de tocados só contam quando diferem do default
func (d *Draft) FillFromForm(values map[string]string, tocados string) {
	touched := make(map[string]bool)
	for _, name := range strings.Split(tocados, ",") {
		if name = strings.TrimSpace(name); name != "" {
			touched[name] = true
		}
	}
	for _, c := range d.Tipo.Campos {
		if c.IsFile() {
			continue
		}
		v, sent := values[c.Name]
		switch {
		case touched[c.Name]:
			d.Set(c.Name, v)
		case sent && v != "" && v != c.Default:
			d.Set(c.Name, v)
		}
	}
}

// TouchedList é a lista de campos editados, para o campo oculto tocados
func (d *Draft) TouchedList() string {
	var names []string
	for _, c := range d.Tipo.Campos {
		if d.Touched[c.Name] {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, ",")
}
