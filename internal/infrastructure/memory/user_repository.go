package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var (
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.ApproverRepository = (*ApproverRepo)(nil)
)

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

// NewUserRepository construye el repositorio.
func NewUserRepository(s *Store) *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	defer r.s.lock()()
	for _, x := range r.s.d.users {
		if strings.EqualFold(x.Username, u.Username) {
			return domain.ErrUsernameAlreadyExists
		}
	}
	r.s.d.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.d.users {
		if strings.EqualFold(u.Username, username) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	defer r.s.lock()()
	if _, ok := r.s.d.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.d.users[u.ID] = *u
	return nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.User
	for _, u := range r.s.d.users {
		u := u
		out = append(out, &u)
	}
	byCreated(out,
		func(x *entity.User) time.Time { return x.CreatedAt },
		func(x *entity.User) string { return x.ID })
	return page(out, limit, offset), nil
}

func (r *UserRepo) FirstActiveID(_ context.Context) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.d.users))
	for id, u := range r.s.d.users {
		if u.IsActive {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", domain.ErrUserNotFound
	}
	sort.Strings(ids)
	return ids[0], nil
}

// ApproverRepo aprobadores en memoria.
type ApproverRepo struct{ s *Store }

// NewApproverRepository construye el repositorio.
func NewApproverRepository(s *Store) *ApproverRepo { return &ApproverRepo{s: s} }

// Put inserta o reemplaza un aprobador (no hay alta por API).
func (r *ApproverRepo) Put(a *entity.Approver) {
	defer r.s.lock()()
	r.s.d.approvers[a.ID] = *a
}

func (r *ApproverRepo) GetByID(_ context.Context, id string) (*entity.Approver, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.d.approvers[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *ApproverRepo) List(_ context.Context, onlyActive bool) ([]*entity.Approver, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Approver
	for _, a := range r.s.d.approvers {
		if onlyActive && !a.IsActive {
			continue
		}
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ApproverRepo) FirstActive(ctx context.Context) (*entity.Approver, error) {
	list, err := r.List(ctx, true)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}
