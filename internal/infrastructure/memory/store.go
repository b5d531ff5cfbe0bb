// Package memory implementa los repositorios en memoria. Se usa en desarrollo local
// (DB_DRIVER=memory) y como doble de la base de datos en los tests de casos de uso.
//
// Las transacciones serializan a todos los escritores, dentro o fuera de una transacción, y
// restauran una copia del estado si la función devuelve error. Como ninguna escritura externa
// puede intercalarse, la copia solo descarta los efectos de la propia transacción.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/materiales-api/internal/domain/entity"
)

type data struct {
	offices     map[string]entity.Office
	materials   map[string]entity.Material
	requests    map[string]entity.MaterialRequest
	deliveries  []entity.Delivery
	returns     []entity.MaterialReturn
	novelties   map[string]entity.Novelty
	products    map[string]entity.CorporateProduct
	assignments map[string]entity.Assignment
	corpReturns map[string]entity.CorporateReturn
	transfers   map[string]entity.Transfer
	writeOffs   []entity.WriteOff
	history     []entity.AssignmentHistory
	loans       map[string]entity.Loan
	users       map[string]entity.User
	approvers   map[string]entity.Approver
}

func newData() *data {
	return &data{
		offices:     map[string]entity.Office{},
		materials:   map[string]entity.Material{},
		requests:    map[string]entity.MaterialRequest{},
		novelties:   map[string]entity.Novelty{},
		products:    map[string]entity.CorporateProduct{},
		assignments: map[string]entity.Assignment{},
		corpReturns: map[string]entity.CorporateReturn{},
		transfers:   map[string]entity.Transfer{},
		loans:       map[string]entity.Loan{},
		users:       map[string]entity.User{},
		approvers:   map[string]entity.Approver{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *data) clone() *data {
	return &data{
		offices:     cloneMap(d.offices),
		materials:   cloneMap(d.materials),
		requests:    cloneMap(d.requests),
		deliveries:  append([]entity.Delivery(nil), d.deliveries...),
		returns:     append([]entity.MaterialReturn(nil), d.returns...),
		novelties:   cloneMap(d.novelties),
		products:    cloneMap(d.products),
		assignments: cloneMap(d.assignments),
		corpReturns: cloneMap(d.corpReturns),
		transfers:   cloneMap(d.transfers),
		writeOffs:   append([]entity.WriteOff(nil), d.writeOffs...),
		history:     append([]entity.AssignmentHistory(nil), d.history...),
		loans:       cloneMap(d.loans),
		users:       cloneMap(d.users),
		approvers:   cloneMap(d.approvers),
	}
}

type state struct {
	txMu   sync.Mutex
	mu     sync.RWMutex
	d      *data
	faults map[string]error
}

// Store estado compartido por todos los repositorios en memoria. Los repositorios creados
// por TxRunner reciben una vista con inTx, que ya tiene tomado txMu.
type Store struct {
	*state
	inTx bool
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: &state{d: newData(), faults: map[string]error{}}}
}

// txView vista del store para los repositorios de una transacción abierta.
func (s *Store) txView() *Store {
	return &Store{state: s.state, inTx: true}
}

// lock toma el candado de escritura. Fuera de una transacción espera además a que termine
// la transacción en curso; devuelve la función que libera ambos.
func (s *Store) lock() func() {
	if s.inTx {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

// FailOn hace que la operación indicada (ej. "deliveries.create") devuelva err.
// Con err nil se elimina el fallo.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// fault debe llamarse con s.mu tomado.
func (s *Store) fault(op string) error {
	return s.faults[op]
}

// run ejecuta fn como transacción: si devuelve error se restaura el estado previo.
func (s *Store) run(fn func(tx *Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	if err := fn(s.txView()); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// byCreated ordena de más reciente a más antiguo, desempatando por ID.
func byCreated[T any](list []*T, created func(*T) time.Time, id func(*T) string) {
	sort.SliceStable(list, func(i, j int) bool {
		ci, cj := created(list[i]), created(list[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(list[i]) < id(list[j])
	})
}

func page[T any](list []*T, limit, offset int) []*T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
