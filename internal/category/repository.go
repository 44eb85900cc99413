package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dzgamezone-be/internal/db"
	"dzgamezone-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Category, error)
	Create(ctx context.Context, c *Category) (*Category, error)
	Update(ctx context.Context, id string, changes Changes) (*Category, error)
	ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

type repository struct {
	db *sql.DB
}

// NewRepository returns the PostgreSQL category store.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*Category, error) {
	var (
		c      Category
		parent sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &parent, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ParentID = parent.String
	return &c, nil
}

func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func (r *repository) List(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, db.Wrap("list categories", err)
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, db.Wrap("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap("iterate categories", err)
	}
	return categories, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrCategoryNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, db.Wrap("get category", err)
	}
	return c, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []string) (map[string]*Category, error) {
	result := make(map[string]*Category)
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, db.Wrap("get categories by ids", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, db.Wrap("scan category", err)
		}
		result[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap("iterate categories", err)
	}
	return result, nil
}

func (r *repository) Create(ctx context.Context, c *Category) (*Category, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "repository"), zap.String("method", "Create"))

	var parent any
	if c.ParentID != "" {
		if _, err := uuid.Parse(c.ParentID); err != nil {
			return nil, ErrParentNotFound
		}
		parent = c.ParentID
	}

	created := *c
	created.ID = uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, slug, description, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		created.ID, created.Name, created.Slug, created.Description, parent, created.CreatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrCategoryExists
		}
		log.Error("insert category failed", zap.Error(err))
		return nil, db.Wrap("insert category", err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id string, changes Changes) (*Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrCategoryNotFound
	}
	if changes.Empty() {
		return r.GetByID(ctx, id)
	}

	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if changes.Name != nil {
		add("name", *changes.Name)
	}
	if changes.Slug != nil {
		add("slug", *changes.Slug)
	}
	if changes.Description != nil {
		add("description", *changes.Description)
	}
	if changes.ParentID != nil {
		if *changes.ParentID == "" {
			add("parent_id", nil)
		} else {
			if _, err := uuid.Parse(*changes.ParentID); err != nil {
				return nil, ErrParentNotFound
			}
			add("parent_id", *changes.ParentID)
		}
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE categories SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), categoryColumns)

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrCategoryExists
		}
		return nil, db.Wrap("update category", err)
	}
	return c, nil
}

func (r *repository) ListChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	parentIDs = validUUIDs(parentIDs)
	if len(parentIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM categories WHERE parent_id = ANY($1)`, pq.Array(parentIDs))
	if err != nil {
		return nil, db.Wrap("list child categories", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, db.Wrap("scan child category", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap("iterate child categories", err)
	}
	return ids, nil
}

func (r *repository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	ids = validUUIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, db.Wrap("delete categories", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, db.Wrap("delete categories", err)
	}
	return n, nil
}
