package http

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"saldo/internal/allocation"
	"saldo/internal/core"
	"saldo/internal/settlement"
)

// money formats amounts for responses as two-decimal strings. Requests may
// send a JSON number or a string; decimal.Decimal accepts both.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

func list[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Data: items}
}

type idResponse struct {
	ID int64 `json:"id"`
}

// Clients

type clientDTO struct {
	ID           int64  `json:"id"`
	Nombre       string `json:"nombre"`
	PrecioHora   string `json:"precioHora"`
	Orden        *int   `json:"orden"`
	SaldoACuenta string `json:"saldoACuenta"`
}

func toClientDTO(c core.Client) clientDTO {
	return clientDTO{
		ID:           c.ID,
		Nombre:       c.Name,
		PrecioHora:   money(c.HourlyRate),
		Orden:        c.DisplayOrder,
		SaldoACuenta: money(c.Credit),
	}
}

type createClientRequest struct {
	Nombre     string           `json:"nombre" validate:"required,max=100"`
	PrecioHora *decimal.Decimal `json:"precioHora" validate:"required"`
}

type updateClientRequest struct {
	Nombre     *string          `json:"nombre" validate:"omitempty,max=100"`
	PrecioHora *decimal.Decimal `json:"precioHora"`
}

type reorderRequest struct {
	Ordenes []clientOrder `json:"ordenes" validate:"required,min=1,dive"`
}

type clientOrder struct {
	ID    int64 `json:"id" validate:"required,gt=0"`
	Orden int   `json:"orden" validate:"gte=0"`
}

// Work items

type workItemDTO struct {
	ID            int64  `json:"id"`
	ClienteID     int64  `json:"clienteId"`
	Fecha         string `json:"fecha"`
	Horas         string `json:"horas"`
	Pagado        bool   `json:"pagado"`
	Cuadrado      bool   `json:"cuadrado"`
	Observaciones string `json:"observaciones"`
}

func toWorkItemDTO(w core.WorkItem) workItemDTO {
	return workItemDTO{
		ID:            w.ID,
		ClienteID:     w.ClientID,
		Fecha:         w.Date.String(),
		Horas:         w.Hours.String(),
		Pagado:        w.Paid,
		Cuadrado:      w.Settled,
		Observaciones: w.Notes,
	}
}

type createWorkItemRequest struct {
	ClienteID     int64            `json:"clienteId" validate:"required,gt=0"`
	Fecha         string           `json:"fecha" validate:"required"`
	Horas         *decimal.Decimal `json:"horas" validate:"required"`
	Observaciones string           `json:"observaciones" validate:"max=500"`
	Pagado        bool             `json:"pagado"`
	Cuadrado      bool             `json:"cuadrado"`
}

type updateWorkItemRequest struct {
	Fecha         *string          `json:"fecha"`
	Horas         *decimal.Decimal `json:"horas"`
	Observaciones *string          `json:"observaciones" validate:"omitempty,max=500"`
	Pagado        *bool            `json:"pagado"`
	Cuadrado      *bool            `json:"cuadrado"`
}

func (r updateWorkItemRequest) flagsOnly() bool {
	return r.Fecha == nil && r.Horas == nil && r.Observaciones == nil
}

// Materials

type materialDTO struct {
	ID          int64  `json:"id"`
	ClienteID   int64  `json:"clienteId"`
	Descripcion string `json:"descripcion"`
	Coste       string `json:"coste"`
	Fecha       string `json:"fecha"`
	Pagado      bool   `json:"pagado"`
	Cuadrado    bool   `json:"cuadrado"`
}

func toMaterialDTO(m core.MaterialItem) materialDTO {
	return materialDTO{
		ID:          m.ID,
		ClienteID:   m.ClientID,
		Descripcion: m.Description,
		Coste:       money(m.Cost),
		Fecha:       m.Date.String(),
		Pagado:      m.Paid,
		Cuadrado:    m.Settled,
	}
}

type createMaterialRequest struct {
	ClienteID   int64            `json:"clienteId" validate:"required,gt=0"`
	Descripcion string           `json:"descripcion" validate:"max=200"`
	Coste       *decimal.Decimal `json:"coste" validate:"required"`
	Fecha       string           `json:"fecha" validate:"required"`
	Pagado      bool             `json:"pagado"`
	Cuadrado    bool             `json:"cuadrado"`
}

type updateMaterialRequest struct {
	Descripcion *string          `json:"descripcion" validate:"omitempty,max=200"`
	Coste       *decimal.Decimal `json:"coste"`
	Fecha       *string          `json:"fecha"`
	Pagado      *bool            `json:"pagado"`
	Cuadrado    *bool            `json:"cuadrado"`
}

func (r updateMaterialRequest) flagsOnly() bool {
	return r.Descripcion == nil && r.Coste == nil && r.Fecha == nil
}

// Payments

type paymentDTO struct {
	ID            int64  `json:"id"`
	ClienteID     int64  `json:"clienteId"`
	Cantidad      string `json:"cantidad"`
	Fecha         string `json:"fecha"`
	Observaciones string `json:"observaciones"`
}

func toPaymentDTO(p core.Payment) paymentDTO {
	return paymentDTO{
		ID:            p.ID,
		ClienteID:     p.ClientID,
		Cantidad:      money(p.Amount),
		Fecha:         p.Date.String(),
		Observaciones: p.Notes,
	}
}

type selectionDTO struct {
	ID   int64  `json:"id" validate:"required,gt=0"`
	Tipo string `json:"tipo" validate:"required"`
}

type createPaymentRequest struct {
	ClienteID     int64            `json:"clienteId" validate:"required,gt=0"`
	Cantidad      *decimal.Decimal `json:"cantidad" validate:"required"`
	Fecha         string           `json:"fecha" validate:"required"`
	Observaciones string           `json:"observaciones" validate:"max=500"`
	Politica      string           `json:"politica" validate:"omitempty,oneof=fifo manual"`
	Seleccion     []selectionDTO   `json:"seleccion" validate:"dive"`
}

type updatePaymentRequest struct {
	Cantidad      *decimal.Decimal `json:"cantidad"`
	Fecha         *string          `json:"fecha"`
	Observaciones *string          `json:"observaciones" validate:"omitempty,max=500"`
}

type paymentOutcomeDTO struct {
	Pago       paymentDTO  `json:"pago"`
	Asignacion decisionDTO `json:"asignacion"`
	Resultado  resultDTO   `json:"resultado"`
}

// Allocation

type allocateRequest struct {
	PagoID    int64          `json:"pagoId" validate:"required,gt=0"`
	Politica  string         `json:"politica" validate:"required,oneof=fifo manual"`
	Seleccion []selectionDTO `json:"seleccion" validate:"dive"`
}

type allocationDTO struct {
	ID               int64  `json:"id"`
	PagoID           int64  `json:"pagoId"`
	ClienteID        int64  `json:"clienteId"`
	ItemID           int64  `json:"itemId"`
	Tipo             string `json:"tipo"`
	CantidadAplicada string `json:"cantidadAplicada"`
	FechaItem        string `json:"fechaItem"`
	FechaPago        string `json:"fechaPago"`
}

func toAllocationDTO(a core.Allocation) allocationDTO {
	return allocationDTO{
		ID:               a.ID,
		PagoID:           a.PaymentID,
		ClienteID:        a.ClientID,
		ItemID:           a.LineItemID,
		Tipo:             a.LineItemType.String(),
		CantidadAplicada: money(a.AmountApplied),
		FechaItem:        a.LineItemDate.String(),
		FechaPago:        a.PaymentDate.String(),
	}
}

type candidateDTO struct {
	ID          int64  `json:"id"`
	Tipo        string `json:"tipo"`
	Fecha       string `json:"fecha"`
	Horas       string `json:"horas,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
	Coste       string `json:"coste"`
}

func toCandidateDTOs(cs []allocation.Candidate) []candidateDTO {
	out := make([]candidateDTO, 0, len(cs))
	for _, c := range cs {
		dto := candidateDTO{
			ID:          c.ID,
			Tipo:        c.Type.String(),
			Fecha:       c.Date.String(),
			Descripcion: c.Description,
			Coste:       money(c.Cost),
		}
		if c.Type == core.LineItemWork {
			dto.Horas = c.Hours.String()
		}
		out = append(out, dto)
	}
	return out
}

type candidatesDTO struct {
	ClienteID       int64          `json:"clienteId"`
	Trabajos        []candidateDTO `json:"trabajos"`
	Materiales      []candidateDTO `json:"materiales"`
	Total           string         `json:"total"`
	SaldoDisponible string         `json:"saldoDisponible"`
}

type decisionItemDTO struct {
	ID       int64  `json:"id"`
	Tipo     string `json:"tipo"`
	Fecha    string `json:"fecha"`
	Cantidad string `json:"cantidad"`
}

type decisionDTO struct {
	Politica   string            `json:"politica"`
	Saldo      string            `json:"saldo"`
	Items      []decisionItemDTO `json:"items"`
	Restante   string            `json:"restante"`
	Liquidados int               `json:"liquidados"`
}

func toDecisionDTO(d allocation.Decision) decisionDTO {
	items := make([]decisionItemDTO, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, decisionItemDTO{
			ID:       it.ItemID,
			Tipo:     it.Type.String(),
			Fecha:    it.Date.String(),
			Cantidad: money(it.AmountApplied),
		})
	}
	return decisionDTO{
		Politica:   d.Policy.String(),
		Saldo:      money(d.Balance),
		Items:      items,
		Restante:   money(d.Remaining),
		Liquidados: d.SettledCount,
	}
}

type resultDTO struct {
	PagoID          int64  `json:"pagoId"`
	SettledCount    int    `json:"settledCount"`
	Skipped         int    `json:"skipped"`
	Failed          int    `json:"failed"`
	RemainingCredit string `json:"remainingCredit"`
}

func toResultDTO(r settlement.Result) resultDTO {
	return resultDTO{
		PagoID:          r.PaymentID,
		SettledCount:    r.SettledCount,
		Skipped:         r.Skipped,
		Failed:          r.Failed,
		RemainingCredit: money(r.RemainingCredit),
	}
}

// partialCommitResponse is the 502 body when some items settled and some did not.
type partialCommitResponse struct {
	resultDTO
	Error string `json:"error"`
}

// Reports

type paymentUsageDTO struct {
	PagoID   int64  `json:"pagoId"`
	Fecha    string `json:"fecha"`
	Cantidad string `json:"cantidad"`
	Usado    string `json:"usado"`
	Restante string `json:"restante"`
	Agotado  bool   `json:"agotado"`
}

type debtSummaryDTO struct {
	ClienteID              int64             `json:"clienteId"`
	Nombre                 string            `json:"nombre"`
	HorasPendientes        string            `json:"horasPendientes"`
	CosteTrabajoPendiente  string            `json:"costeTrabajoPendiente"`
	CosteMaterialPendiente string            `json:"costeMaterialPendiente"`
	CostePendiente         string            `json:"costePendiente"`
	TotalPagado            string            `json:"totalPagado"`
	SaldoACuenta           string            `json:"saldoACuenta"`
	DeudaTotal             string            `json:"deudaTotal"`
	Pagos                  []paymentUsageDTO `json:"pagos"`
}

func toDebtSummaryDTO(s core.DebtSummary) debtSummaryDTO {
	pagos := make([]paymentUsageDTO, 0, len(s.PaymentsUsage))
	for _, u := range s.PaymentsUsage {
		pagos = append(pagos, paymentUsageDTO{
			PagoID:   u.PaymentID,
			Fecha:    u.Date.String(),
			Cantidad: money(u.Amount),
			Usado:    money(u.Used),
			Restante: money(u.Remaining),
			Agotado:  u.FullyUsed,
		})
	}
	return debtSummaryDTO{
		ClienteID:              s.ClientID,
		Nombre:                 s.ClientName,
		HorasPendientes:        s.PendingHours.String(),
		CosteTrabajoPendiente:  money(s.PendingWorkCost),
		CosteMaterialPendiente: money(s.PendingMaterialCost),
		CostePendiente:         money(s.OutstandingCost),
		TotalPagado:            money(s.TotalPaid),
		SaldoACuenta:           money(s.CreditCarried),
		DeudaTotal:             money(s.TotalDebt),
		Pagos:                  pagos,
	}
}

type monthDTO struct {
	Mes   int    `json:"mes"`
	Total string `json:"total"`
}

type incomeResponse struct {
	Year  int        `json:"year"`
	Total string     `json:"total"`
	Data  []monthDTO `json:"data"`
}

func toIncomeResponse(year int, months []core.MonthTotal) incomeResponse {
	total := decimal.Zero
	data := make([]monthDTO, 0, len(months))
	for _, m := range months {
		total = total.Add(m.Total)
		data = append(data, monthDTO{Mes: m.Month, Total: money(m.Total)})
	}
	return incomeResponse{Year: year, Total: money(total), Data: data}
}

// Parsing helpers

var errInvalidInput = errors.New("invalid input")

func parseItemType(s string) (core.LineItemType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trabajo", "work":
		return core.LineItemWork, nil
	case "material":
		return core.LineItemMaterial, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidLineItem, s)
}

func parseSelection(sel []selectionDTO) ([]allocation.Key, error) {
	keys := make([]allocation.Key, 0, len(sel))
	for _, s := range sel {
		t, err := parseItemType(s.Tipo)
		if err != nil {
			return nil, err
		}
		keys = append(keys, allocation.Key{ID: s.ID, Type: t})
	}
	return keys, nil
}

func parsePolicy(s string) (allocation.Policy, error) {
	if s == "" {
		return allocation.PolicyManual, nil
	}
	p := allocation.Policy(strings.ToLower(s))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", allocation.ErrInvalidPolicy, s)
	}
	return p, nil
}

func parseDate(field, s string) (core.Date, error) {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %s: %v", errInvalidInput, field, err)
	}
	return d, nil
}

// amount rounds a request amount to cents.
func amount(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return core.Round2(*d)
}

func errInvalidSelection(part string) error {
	return fmt.Errorf("%w: seleccion %q", errInvalidInput, part)
}

func parsePositiveID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q", errInvalidInput, s)
	}
	return id, nil
}
