package novelty

import "github.com/jhoicas/materiales-api/pkg/textnorm"

// Prioridades de atención de una novedad.
const (
	PriorityHigh   = "alta"
	PriorityMedium = "media"
	PriorityLow    = "baja"
)

var (
	highKeywords   = []string{"robo", "pérdida", "urgente", "grave", "emergencia"}
	mediumKeywords = []string{"daño", "avería", "incidente", "problema"}
)

// Priority deriva la prioridad a partir de palabras clave del tipo de novedad.
func Priority(noveltyType string) string {
	switch {
	case textnorm.ContainsAny(noveltyType, highKeywords...):
		return PriorityHigh
	case textnorm.ContainsAny(noveltyType, mediumKeywords...):
		return PriorityMedium
	default:
		return PriorityLow
	}
}
