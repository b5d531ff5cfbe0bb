package inventory

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Split reparte el valor de una entrega entre la oficina y la sede principal (servicio de dominio).
//
//	total   = unitario * cantidad
//	oficina = total * porcentaje / 100
//	sede    = total - oficina
//
// El porcentaje se acota a [0, 100].
func Split(unitValue decimal.Decimal, qty int, officePercent decimal.Decimal) (total, office, headquarters decimal.Decimal) {
	pct := ClampPercent(officePercent)
	total = unitValue.Mul(decimal.NewFromInt(int64(qty)))
	office = total.Mul(pct).Div(hundred).Round(2)
	headquarters = total.Sub(office)
	return total, office, headquarters
}

// ClampPercent acota un porcentaje al rango [0, 100].
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// Returnable cantidad que aún se puede devolver; nunca negativa.
func Returnable(delivered, alreadyReturned int) int {
	if r := delivered - alreadyReturned; r > 0 {
		return r
	}
	return 0
}

// StockValue valor de un stock a costo unitario.
func StockValue(unitValue decimal.Decimal, qty int) decimal.Decimal {
	return unitValue.Mul(decimal.NewFromInt(int64(qty)))
}
