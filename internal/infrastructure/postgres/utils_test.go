package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

func TestFilter_Positions(t *testing.T) {
	var w filter
	assert.Equal(t, "", w.where())

	w.conds = append(w.conds, "is_active")
	w.add("office_id = $%d", "o1")
	w.add("$%[1]d IN (a, b)", "o2")
	assert.Equal(t, " WHERE is_active AND office_id = $1 AND $2 IN (a, b)", w.where())
	assert.Equal(t, []any{"o1", "o2"}, w.args)
	assert.Equal(t, 3, w.next())
}

func TestRequestFilter_JoinsOfficeByName(t *testing.T) {
	st := entity.RequestApproved
	w, from := requestFilter(repository.RequestFilter{OfficeName: "Sede Norte", Status: &st})
	assert.Contains(t, from, "JOIN offices o")
	assert.Equal(t, " WHERE lower(o.name) = lower($1) AND r.status = $2", w.where())
	assert.Equal(t, []any{"Sede Norte", int16(2)}, w.args)

	w, from = requestFilter(repository.RequestFilter{OfficeID: "o1"})
	assert.NotContains(t, from, "JOIN")
	assert.Equal(t, " WHERE r.office_id = $1", w.where())
}

func TestLimitArg(t *testing.T) {
	assert.Nil(t, limitArg(0))
	assert.Nil(t, limitArg(-3))
	assert.Equal(t, 20, limitArg(20))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	assert.Equal(t, "x", nullIfEmpty("x"))
}
