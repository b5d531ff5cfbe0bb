// Package pdf genera los reportes de la aplicación con Maroto v2.
//
// Reporte de inventario corporativo (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + oficina            │  fecha de generación │
//	│  ─────────────────────────────────────────────────────────  │
//	│  STOCK: Código | Producto | Libre | Asignado | Valor        │
//	│  ASIGNACIONES: Oficina | Código | Producto | Cant | Valor   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL                                                      │
//	└─────────────────────────────────────────────────────────────┘
//
// Comprobante de solicitud: datos de la solicitud, reparto de valores, entregas,
// devoluciones y un QR con el ID para verificación.
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/materiales-api/internal/application/reports"
)

var _ reports.PDFRenderer = (*MarotoGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoGenerator implementa reports.PDFRenderer usando Maroto v2.
type MarotoGenerator struct {
	company string
}

// NewMarotoGenerator construye el generador; company aparece en encabezado y metadatos.
func NewMarotoGenerator(company string) *MarotoGenerator {
	return &MarotoGenerator{company: company}
}

func (g *MarotoGenerator) newDoc(title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.company, true).
		Build()
	return maroto.New(cfg)
}

// CorporateInventory genera el reporte de inventario corporativo.
func (g *MarotoGenerator) CorporateInventory(_ context.Context, r reports.CorporateReport) ([]byte, error) {
	m := g.newDoc("Inventario corporativo")

	scope := "Todas las oficinas"
	if r.OfficeName != "" {
		scope = "Oficina: " + r.OfficeName
	}
	m.AddRows(headerRow(g.company, "INVENTARIO CORPORATIVO", scope, r.GeneratedAt.Format("02/01/2006 15:04")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	if len(r.Stock) > 0 {
		m.AddRows(sectionRow("STOCK POR PRODUCTO"))
		m.AddRows(tableHeader([]string{"Código", "Producto", "Libre", "Asignado", "Valor"}, []int{2, 4, 2, 2, 2}))
		for _, st := range r.Stock {
			value := st.UnitValue.Mul(decimal.NewFromInt(int64(st.Available + st.Assigned)))
			m.AddRows(tableRow([]string{
				st.Code, st.Name, strconv.Itoa(st.Available), strconv.Itoa(st.Assigned), money(value),
			}, []int{2, 4, 2, 2, 2}))
		}
		m.AddRows(row.New(4))
	}

	m.AddRows(sectionRow("ASIGNACIONES VIGENTES"))
	if len(r.Holdings) == 0 {
		m.AddRows(row.New(7).Add(col.New(12).Add(text.New("Sin asignaciones", props.Text{Size: 8, Color: colorGray, Top: 1}))))
	} else {
		m.AddRows(tableHeader([]string{"Oficina", "Código", "Producto", "Cant.", "Valor"}, []int{3, 2, 3, 2, 2}))
		for _, h := range r.Holdings {
			m.AddRows(tableRow([]string{
				h.OfficeName, h.ProductCode, h.ProductName, strconv.Itoa(h.Quantity),
				money(h.UnitValue.Mul(decimal.NewFromInt(int64(h.Quantity)))),
			}, []int{3, 2, 3, 2, 2}))
		}
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow("VALOR TOTAL:", money(r.TotalValue)))

	return generate(m)
}

// RequestReceipt genera el comprobante de una solicitud.
func (g *MarotoGenerator) RequestReceipt(_ context.Context, r reports.RequestReceipt) ([]byte, error) {
	req := r.Request
	m := g.newDoc("Comprobante de solicitud")

	m.AddRows(headerRow(g.company, "COMPROBANTE DE SOLICITUD", "Oficina: "+r.Office.Name, r.GeneratedAt.Format("02/01/2006 15:04")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(row.New(30).Add(
		col.New(8).Add(
			kv("Material", r.Material.Name, 1),
			kv("Solicitado / entregado", fmt.Sprintf("%d / %d", req.Requested, req.Delivered), 7),
			kv("Estado", req.Status.String(), 13),
			kv("Solicitante", nonEmpty(req.Requester, "—"), 19),
			kv("Fecha", req.CreatedAt.Format("02/01/2006"), 25),
		),
		col.New(4).Add(code.NewQr(req.ID, props.Rect{Percent: 90, Center: true})),
	))

	m.AddRows(sectionRow("REPARTO DE VALORES"))
	m.AddRows(tableHeader([]string{"Total", "% Oficina", "Oficina", "Sede principal"}, []int{3, 3, 3, 3}))
	m.AddRows(tableRow([]string{
		money(req.TotalValue), req.OfficePercent.StringFixed(0) + "%", money(req.OfficeValue), money(req.HeadquartersValue),
	}, []int{3, 3, 3, 3}))

	if len(r.Deliveries) > 0 {
		m.AddRows(row.New(4))
		m.AddRows(sectionRow("ENTREGAS"))
		m.AddRows(tableHeader([]string{"Fecha", "Cant.", "Entregado por", "Notas"}, []int{3, 2, 3, 4}))
		for _, d := range r.Deliveries {
			m.AddRows(tableRow([]string{
				d.CreatedAt.Format("02/01/2006"), strconv.Itoa(d.Quantity), d.DeliveredBy, nonEmpty(d.Notes, "—"),
			}, []int{3, 2, 3, 4}))
		}
	}
	if len(r.Returns) > 0 {
		m.AddRows(row.New(4))
		m.AddRows(sectionRow("DEVOLUCIONES"))
		m.AddRows(tableHeader([]string{"Fecha", "Cant.", "Estado", "Devuelto por"}, []int{3, 2, 3, 4}))
		for _, x := range r.Returns {
			m.AddRows(tableRow([]string{
				x.CreatedAt.Format("02/01/2006"), strconv.Itoa(x.Quantity), x.Condition, x.ReturnedBy,
			}, []int{3, 2, 3, 4}))
		}
	}
	return generate(m)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(company, title, subtitle, date string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(subtitle, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New("Generado: "+date, props.Text{Size: 8, Align: align.Right, Top: 9, Color: colorGray}),
		),
	)
}

func sectionRow(label string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func tableHeader(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		cols = append(cols, col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Left, Top: 1, Left: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

func tableRow(values []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(values))
	for i, v := range values {
		cols = append(cols, col.New(sizes[i]).Add(text.New(v, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})))
	}
	return row.New(6).Add(cols...)
}

func totalRow(label, value string) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2})),
		col.New(3).Add(text.New(value, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1})),
	)
}

func kv(label, value string, top float64) core.Component {
	return text.New(label+": "+value, props.Text{Size: 9, Top: top})
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func money(d decimal.Decimal) string {
	s := d.StringFixed(0)
	if d.IsNegative() {
		return "-$" + formatMoney(s[1:])
	}
	return "$" + formatMoney(s)
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
