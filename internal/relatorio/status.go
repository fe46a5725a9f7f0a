// Package relatorio contém o modelo normalizado de relatório e as funções puras
// de formatação e extração usadas por todas as páginas.
package relatorio

// Status é o estado do relatório no fluxo PENDENTE → EM_DP → EM_TRAFEGO → COBRADO
type Status string

const (
	StatusPendente  Status = "PENDENTE"
	StatusEmDP      Status = "EM_DP"
	StatusEmTrafego Status = "EM_TRAFEGO"
	StatusCobrado   Status = "COBRADO"
)

// Statuses lista os status conhecidos na ordem do fluxo
var Statuses = []Status{StatusPendente, StatusEmDP, StatusEmTrafego, StatusCobrado}

// Known informa se o status pertence ao fluxo
func (s Status) Known() bool {
	switch s {
	case StatusPendente, StatusEmDP, StatusEmTrafego, StatusCobrado:
		return true
	}
	return false
}

// Next retorna o próximo status do fluxo; false para COBRADO e status desconhecidos
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusPendente:
		return StatusEmDP, true
	case StatusEmDP:
		return StatusEmTrafego, true
	case StatusEmTrafego:
		return StatusCobrado, true
	}
	return "", false
}

// CanAdvanceTo só é verdadeiro para o passo imediatamente seguinte
func (s Status) CanAdvanceTo(target Status) bool {
	next, ok := s.Next()
	return ok && next == target
}

// Label é o texto do badge
func (s Status) Label() string {
	switch s {
	case StatusPendente:
		return "Pendente"
	case StatusEmDP:
		return "Em DP"
	case StatusEmTrafego:
		return "Em Tráfego"
	case StatusCobrado:
		return "Cobrado"
	}
	return string(s)
}

// BadgeClass é a classe CSS do badge
func (s Status) BadgeClass() string {
	switch s {
	case StatusPendente:
		return "bg-warning"
	case StatusEmDP:
		return "bg-info"
	case StatusEmTrafego:
		return "bg-primary"
	case StatusCobrado:
		return "bg-success"
	}
	return "bg-secondary"
}

// StatLabel é o rótulo usado no painel de estatísticas
func (s Status) StatLabel() string {
	switch s {
	case StatusPendente:
		return "Pendentes"
	case StatusEmDP:
		return "Em DP"
	case StatusEmTrafego:
		return "Em Tráfego"
	case StatusCobrado:
		return "Cobrados"
	}
	return string(s)
}
