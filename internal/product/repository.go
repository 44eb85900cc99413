package product

import (
	"context"
	"database/sql"
	"encoding/json"
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
	List(ctx context.Context, f Filter) ([]*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, id string, ch Changes) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

// NewRepository returns the PostgreSQL product store. Variants live in
// product_variants and are folded back into the product with json_agg.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectProduct = `
	SELECT
		p.id, p.name, p.slug, p.description, p.base_price, p.discount,
		p.category_id, p.brand, p.images, p.stock, p.specs, p.is_featured,
		p.created_at, p.updated_at,
		COALESCE((
			SELECT json_agg(json_build_object(
				'name', v.name,
				'sku', v.sku,
				'priceDifference', v.price_difference,
				'stock', v.stock,
				'images', v.images,
				'isDefault', v.is_default
			) ORDER BY v.position)
			FROM product_variants v
			WHERE v.product_id = p.id
		), '[]') AS variants
	FROM products p
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		p                      Product
		images, specs, variant []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.BasePrice, &p.Discount,
		&p.CategoryID, &p.Brand, &images, &p.Stock, &specs, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt, &variant,
	)
	if err != nil {
		return nil, err
	}

	p.Images = []string{}
	p.Specs = map[string]string{}
	p.Variants = []Variant{}
	if err := unmarshalIfSet(images, &p.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if err := unmarshalIfSet(specs, &p.Specs); err != nil {
		return nil, fmt.Errorf("decode specs: %w", err)
	}
	if err := unmarshalIfSet(variant, &p.Variants); err != nil {
		return nil, fmt.Errorf("decode variants: %w", err)
	}
	for i := range p.Variants {
		p.Variants[i].Images = nonNil(p.Variants[i].Images)
	}
	return &p, nil
}

func unmarshalIfSet(data []byte, dst any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *repository) query(ctx context.Context, query string, args ...any) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, db.Wrap("query products", err)
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, db.Wrap("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap("iterate products", err)
	}
	return products, nil
}

func (r *repository) List(ctx context.Context, f Filter) ([]*Product, error) {
	where := []string{}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CategoryID != "" {
		if _, err := uuid.Parse(f.CategoryID); err != nil {
			return []*Product{}, nil
		}
		where = append(where, "p.category_id = "+arg(f.CategoryID))
	}
	if f.Brand != "" {
		where = append(where, "LOWER(p.brand) = LOWER("+arg(f.Brand)+")")
	}
	if f.MinPrice != nil {
		where = append(where, "p.base_price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, "p.base_price <= "+arg(*f.MaxPrice))
	}
	if f.InStock {
		where = append(where, `(p.stock > 0 OR EXISTS (
			SELECT 1 FROM product_variants sv WHERE sv.product_id = p.id AND sv.stock > 0))`)
	}
	if f.IsFeatured {
		where = append(where, "p.is_featured = TRUE")
	}
	if f.Search != "" {
		pattern := arg("%" + escapeLike(f.Search) + "%")
		where = append(where, fmt.Sprintf("(p.name ILIKE %s OR p.slug ILIKE %s)", pattern, pattern))
	}

	query := selectProduct
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC"

	logger.FromCtx(ctx).Debug("list products",
		zap.String("layer", "repository"),
		zap.Int("conditions", len(where)),
	)
	return r.query(ctx, query, args...)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProductNotFound
	}

	p, err := scanProduct(r.db.QueryRowContext(ctx, selectProduct+" WHERE p.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, db.Wrap("get product", err)
	}
	return p, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error) {
	result := make(map[string]*Product)

	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return result, nil
	}

	products, err := r.query(ctx, selectProduct+" WHERE p.id = ANY($1)", pq.Array(valid))
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func insertVariants(ctx context.Context, tx *sql.Tx, productID string, variants []Variant) error {
	for i, v := range variants {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_variants
				(product_id, position, name, sku, price_difference, stock, images, is_default)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			productID, i, v.Name, v.SKU, v.PriceDifference, v.Stock, mustJSON(nonNil(v.Images)), v.IsDefault,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) Create(ctx context.Context, p *Product) (*Product, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "repository"), zap.String("method", "Create"))

	if _, err := uuid.Parse(p.CategoryID); err != nil {
		return nil, ErrCategoryNotFound
	}

	created := *p
	created.ID = uuid.New().String()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, db.Wrap("begin tx", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products
			(id, name, slug, description, base_price, discount, category_id, brand,
			 images, stock, specs, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		created.ID, created.Name, created.Slug, created.Description, created.BasePrice, created.Discount,
		created.CategoryID, created.Brand, mustJSON(nonNil(created.Images)), created.Stock,
		mustJSON(created.Specs), created.IsFeatured, created.CreatedAt, created.UpdatedAt,
	)
	if err == nil {
		err = insertVariants(ctx, tx, created.ID, created.Variants)
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrProductExists
		}
		log.Error("insert product failed", zap.Error(err))
		return nil, db.Wrap("insert product", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, db.Wrap("commit product", err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, id string, ch Changes) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProductNotFound
	}

	sets := []string{}
	args := []any{}
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	set("updated_at", ch.UpdatedAt)
	if ch.Name != nil {
		set("name", *ch.Name)
	}
	if ch.Slug != nil {
		set("slug", *ch.Slug)
	}
	if ch.Description != nil {
		set("description", *ch.Description)
	}
	if ch.BasePrice != nil {
		set("base_price", *ch.BasePrice)
	}
	if ch.Discount != nil {
		set("discount", *ch.Discount)
	}
	if ch.Category != nil {
		if _, err := uuid.Parse(*ch.Category); err != nil {
			return nil, ErrCategoryNotFound
		}
		set("category_id", *ch.Category)
	}
	if ch.Brand != nil {
		set("brand", *ch.Brand)
	}
	if ch.Images != nil {
		set("images", mustJSON(nonNil(*ch.Images)))
	}
	if ch.Stock != nil {
		set("stock", *ch.Stock)
	}
	if ch.Specs != nil {
		set("specs", mustJSON(*ch.Specs))
	}
	if ch.IsFeatured != nil {
		set("is_featured", *ch.IsFeatured)
	}
	args = append(args, id)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, db.Wrap("begin tx", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
		args...,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrProductExists
		}
		return nil, db.Wrap("update product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrProductNotFound
	}

	if ch.Variants != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_variants WHERE product_id = $1`, id); err != nil {
			return nil, db.Wrap("replace variants", err)
		}
		if err := insertVariants(ctx, tx, id, *ch.Variants); err != nil {
			if db.IsUniqueViolation(err) {
				return nil, ErrProductExists
			}
			return nil, db.Wrap("replace variants", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, db.Wrap("commit product", err)
	}
	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrProductNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return db.Wrap("delete product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}
