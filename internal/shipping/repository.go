package shipping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dzgamezone-be/internal/db"

	"github.com/google/uuid"
)

type Repository interface {
	List(ctx context.Context) ([]*Wilaya, error)
	GetByNumero(ctx context.Context, numero int) (*Wilaya, error)
	// GetByName matches the region name exactly, ignoring case.
	GetByName(ctx context.Context, name string) (*Wilaya, error)
	Create(ctx context.Context, w *Wilaya) (*Wilaya, error)
	Update(ctx context.Context, numero int, ch Changes) (*Wilaya, error)
	Delete(ctx context.Context, numero int) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const wilayaColumns = `id, numero, nom, prix_domicile, prix_agence, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWilaya(row rowScanner) (*Wilaya, error) {
	var w Wilaya
	err := row.Scan(&w.ID, &w.Numero, &w.Nom, &w.PrixDomicile, &w.PrixAgence, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *repository) List(ctx context.Context) ([]*Wilaya, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+wilayaColumns+` FROM shipping_wilayas ORDER BY numero ASC`)
	if err != nil {
		return nil, db.Wrap("list wilayas", err)
	}
	defer rows.Close()

	wilayas := []*Wilaya{}
	for rows.Next() {
		w, err := scanWilaya(rows)
		if err != nil {
			return nil, db.Wrap("scan wilaya", err)
		}
		wilayas = append(wilayas, w)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap("iterate wilayas", err)
	}
	return wilayas, nil
}

func (r *repository) getOne(ctx context.Context, op, where string, arg any) (*Wilaya, error) {
	w, err := scanWilaya(r.db.QueryRowContext(ctx, `SELECT `+wilayaColumns+` FROM shipping_wilayas WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWilayaNotFound
	}
	if err != nil {
		return nil, db.Wrap(op, err)
	}
	return w, nil
}

func (r *repository) GetByNumero(ctx context.Context, numero int) (*Wilaya, error) {
	return r.getOne(ctx, "get wilaya by numero", "numero = $1", numero)
}

func (r *repository) GetByName(ctx context.Context, name string) (*Wilaya, error) {
	return r.getOne(ctx, "get wilaya by name", "LOWER(nom) = LOWER($1)", strings.TrimSpace(name))
}

func (r *repository) Create(ctx context.Context, w *Wilaya) (*Wilaya, error) {
	created := *w
	created.ID = uuid.New().String()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shipping_wilayas (id, numero, nom, prix_domicile, prix_agence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		created.ID, created.Numero, created.Nom, created.PrixDomicile, created.PrixAgence,
		created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrWilayaExists
		}
		return nil, db.Wrap("insert wilaya", err)
	}
	return &created, nil
}

func (r *repository) Update(ctx context.Context, numero int, ch Changes) (*Wilaya, error) {
	sets := []string{}
	args := []any{}
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	set("updated_at", ch.UpdatedAt)
	if ch.Nom != nil {
		set("nom", *ch.Nom)
	}
	if ch.PrixDomicile != nil {
		set("prix_domicile", *ch.PrixDomicile)
	}
	if ch.PrixAgence != nil {
		set("prix_agence", *ch.PrixAgence)
	}
	args = append(args, numero)

	query := fmt.Sprintf(`UPDATE shipping_wilayas SET %s WHERE numero = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), wilayaColumns)

	w, err := scanWilaya(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWilayaNotFound
	}
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrWilayaExists
		}
		return nil, db.Wrap("update wilaya", err)
	}
	return w, nil
}

func (r *repository) Delete(ctx context.Context, numero int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shipping_wilayas WHERE numero = $1`, numero)
	if err != nil {
		return db.Wrap("delete wilaya", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWilayaNotFound
	}
	return nil
}
