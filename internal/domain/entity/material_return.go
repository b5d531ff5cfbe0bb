package entity

import "time"

// Condiciones posibles del material devuelto.
const (
	ConditionGood    = "BUENO"
	ConditionDamaged = "DAÑADO"
)

// MaterialReturn devolución (total o parcial) de una solicitud aprobada.
type MaterialReturn struct {
	ID          string
	RequestID   string
	MaterialID  string
	Quantity    int
	ReturnedBy  string
	Observation string
	Condition   string
	CreatedAt   time.Time
}
