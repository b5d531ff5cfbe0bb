package dto

import "time"

// ResolveNoveltyRequest body para gestionar una novedad. Action: "aceptar" | "rechazar".
type ResolveNoveltyRequest struct {
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

// NoveltyResponse salida de una novedad.
type NoveltyResponse struct {
	ID          string     `json:"id"`
	RequestID   string     `json:"request_id"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	AffectedQty int        `json:"affected_qty"`
	ReportedBy  string     `json:"reported_by"`
	ImagePath   string     `json:"image_path,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ResolvedBy  string     `json:"resolved_by,omitempty"`
	Resolution  string     `json:"resolution,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// NoveltyStatsResponse conteos de novedades.
type NoveltyStatsResponse struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Resolved int `json:"resolved"`
}

// ReportNoveltyRequest campos del formulario de novedad (JSON o multipart).
type ReportNoveltyRequest struct {
	RequestID   string `json:"request_id" form:"request_id"`
	Type        string `json:"type" form:"type"`
	Description string `json:"description" form:"description"`
	AffectedQty int    `json:"affected_qty" form:"affected_qty"`
}
