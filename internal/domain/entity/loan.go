package entity

import "time"

// LoanStatus estado de un préstamo de material.
type LoanStatus string

const (
	LoanPending  LoanStatus = "PENDIENTE"
	LoanApproved LoanStatus = "APROBADO"
	LoanRejected LoanStatus = "RECHAZADO"
	LoanReturned LoanStatus = "DEVUELTO"
)

// Loan préstamo temporal de material a una oficina; Returned acumula devoluciones parciales.
type Loan struct {
	ID         string
	MaterialID string
	OfficeID   string
	Quantity   int
	Returned   int
	Status     LoanStatus
	Borrower   string
	DueOn      *time.Time
	ApprovedBy string
	Note       string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Outstanding unidades prestadas aún no devueltas.
func (l *Loan) Outstanding() int {
	if l.Returned >= l.Quantity {
		return 0
	}
	return l.Quantity - l.Returned
}
