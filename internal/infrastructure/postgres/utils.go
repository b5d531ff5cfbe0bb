package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isCheckViolation 23514: p. ej. available >= 0.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// scanner es pgx.Row o pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// collect recorre rows aplicando scan a cada fila.
func collect[T any](rows pgx.Rows, scan func(scanner) (*T, error)) ([]*T, error) {
	defer rows.Close()
	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// one traduce pgx.ErrNoRows a (nil, nil), como esperan los puertos GetByID.
func one[T any](row pgx.Row, scan func(scanner) (*T, error)) (*T, error) {
	v, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// nullIfEmpty envía NULL para FKs opcionales.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// filter acumula condiciones WHERE con placeholders posicionales.
type filter struct {
	conds []string
	args  []any
}

// add agrega una condición; expr lleva un %d para la posición del argumento.
func (f *filter) add(expr string, v any) {
	f.args = append(f.args, v)
	f.conds = append(f.conds, fmt.Sprintf(expr, len(f.args)))
}

// where devuelve la cláusula completa o "" si no hay condiciones.
func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// next es la posición del siguiente argumento.
func (f *filter) next() int { return len(f.args) + 1 }

// limitArg: LIMIT NULL equivale a sin límite.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
