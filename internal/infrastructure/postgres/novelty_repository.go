package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/domain/repository"
)

var _ repository.NoveltyRepository = (*NoveltyRepo)(nil)

const noveltyColumns = `n.id, n.request_id, n.type, n.description, n.affected_qty, n.reported_by, n.image_path,
	n.status, n.resolved_by, n.resolution, n.created_at, n.resolved_at`

// NoveltyRepo novedades sobre PostgreSQL.
type NoveltyRepo struct {
	db Querier
}

// NewNoveltyRepository construye el adaptador.
func NewNoveltyRepository(db Querier) *NoveltyRepo {
	return &NoveltyRepo{db: db}
}

func scanNovelty(s scanner) (*entity.Novelty, error) {
	var n entity.Novelty
	err := s.Scan(&n.ID, &n.RequestID, &n.Type, &n.Description, &n.AffectedQty, &n.ReportedBy, &n.ImagePath,
		&n.Status, &n.ResolvedBy, &n.Resolution, &n.CreatedAt, &n.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoveltyRepo) Create(ctx context.Context, n *entity.Novelty) error {
	query := `
		INSERT INTO novelties (id, request_id, type, description, affected_qty, reported_by, image_path,
			status, resolved_by, resolution, created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		n.ID, n.RequestID, n.Type, n.Description, n.AffectedQty, n.ReportedBy, n.ImagePath,
		string(n.Status), n.ResolvedBy, n.Resolution, n.CreatedAt, n.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert novelty: %w", err)
	}
	return nil
}

func (r *NoveltyRepo) GetByID(ctx context.Context, id string) (*entity.Novelty, error) {
	n, err := one(r.db.QueryRow(ctx, `SELECT `+noveltyColumns+` FROM novelties n WHERE n.id = $1`, id), scanNovelty)
	if err != nil {
		return nil, fmt.Errorf("get novelty: %w", err)
	}
	return n, nil
}

func (r *NoveltyRepo) GetForUpdate(ctx context.Context, id string) (*entity.Novelty, error) {
	n, err := one(r.db.QueryRow(ctx, `SELECT `+noveltyColumns+` FROM novelties n WHERE n.id = $1 FOR UPDATE`, id), scanNovelty)
	if err != nil {
		return nil, fmt.Errorf("get novelty for update: %w", err)
	}
	return n, nil
}

func (r *NoveltyRepo) Update(ctx context.Context, n *entity.Novelty) error {
	query := `
		UPDATE novelties SET type = $2, description = $3, affected_qty = $4, image_path = $5,
			status = $6, resolved_by = $7, resolution = $8, resolved_at = $9
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		n.ID, n.Type, n.Description, n.AffectedQty, n.ImagePath, string(n.Status), n.ResolvedBy, n.Resolution, n.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update novelty: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NoveltyRepo) List(ctx context.Context, f repository.NoveltyFilter) ([]*entity.Novelty, error) {
	var w filter
	from := ` FROM novelties n`
	if f.OfficeID != "" {
		from += ` JOIN material_requests r ON r.id = n.request_id`
		w.add("r.office_id = $%d", f.OfficeID)
	}
	if f.Status != "" {
		w.add("n.status = $%d", string(f.Status))
	}
	if f.RequestID != "" {
		w.add("n.request_id = $%d", f.RequestID)
	}
	rows, err := r.db.Query(ctx, `SELECT `+noveltyColumns+from+w.where()+` ORDER BY n.created_at DESC, n.id DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list novelties: %w", err)
	}
	return collect(rows, scanNovelty)
}

func (r *NoveltyRepo) Stats(ctx context.Context) (repository.NoveltyStats, error) {
	var st repository.NoveltyStats
	query := `
		SELECT count(*),
			count(*) FILTER (WHERE status = $1),
			count(*) FILTER (WHERE status = $2),
			count(*) FILTER (WHERE status = $3)
		FROM novelties`
	err := r.db.QueryRow(ctx, query,
		string(entity.NoveltyPending), string(entity.NoveltyAccepted), string(entity.NoveltyRejected),
	).Scan(&st.Total, &st.Pending, &st.Accepted, &st.Rejected)
	if err != nil {
		return st, fmt.Errorf("novelty stats: %w", err)
	}
	st.Resolved = st.Accepted + st.Rejected
	return st, nil
}

func (r *NoveltyRepo) Types(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT type FROM novelties WHERE type <> '' ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("novelty types: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan novelty type: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
