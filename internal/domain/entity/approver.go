package entity

// Approver persona habilitada para firmar aprobaciones de solicitudes.
type Approver struct {
	ID       string
	Name     string
	Email    string
	IsActive bool
}
