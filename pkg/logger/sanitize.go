package logger

import (
	"strings"
	"unicode"
)

const maxLogField = 64

// SanitizeUsername deja un username apto para logs: sin caracteres de control
// (evita inyección de líneas) y truncado.
func SanitizeUsername(s string) string {
	return sanitize(s, maxLogField)
}

// SanitizeText limpia texto libre del usuario antes de registrarlo.
func SanitizeText(s string, max int) string {
	return sanitize(s, max)
}

// MaskEmail oculta la parte local de un correo (j***@dominio.com).
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return sanitize(email, maxLogField)
	}
	return sanitize(email[:1]+"***"+email[at:], maxLogField)
}

func sanitize(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if max > 0 {
		if runes := []rune(out); len(runes) > max {
			out = string(runes[:max]) + "…"
		}
	}
	return out
}
