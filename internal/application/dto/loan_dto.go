package dto

import "time"

// CreateLoanRequest body para solicitar un préstamo.
type CreateLoanRequest struct {
	MaterialID string     `json:"material_id"`
	OfficeID   string     `json:"office_id"`
	Quantity   int        `json:"quantity"`
	DueOn      *time.Time `json:"due_on"`
	Note       string     `json:"note"`
}

// LoanReturnRequest body para registrar la devolución de un préstamo.
type LoanReturnRequest struct {
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// LoanResponse salida de un préstamo.
type LoanResponse struct {
	ID          string     `json:"id"`
	MaterialID  string     `json:"material_id"`
	OfficeID    string     `json:"office_id"`
	Quantity    int        `json:"quantity"`
	Returned    int        `json:"returned"`
	Outstanding int        `json:"outstanding"`
	Status      string     `json:"status"`
	Borrower    string     `json:"borrower"`
	DueOn       *time.Time `json:"due_on,omitempty"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	Note        string     `json:"note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
