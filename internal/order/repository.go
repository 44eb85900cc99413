package order

import (
	"context"
	"database/sql"
	"errors"

	"dzgamezone-be/internal/db"
	"dzgamezone-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, o *Order) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	// ApplyTransition moves the order from t.From to t.To and applies the
	// stock movement of t as one unit: either both happen or neither does.
	ApplyTransition(ctx context.Context, t Transition) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	id, reference, product_id, variant_name, quantity,
	customer_name, customer_phone, customer_email,
	wilaya, delivery_type, address, note,
	product_price, shipping_fee, total_price,
	status, stock_deducted, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.Reference, &o.ProductID, &o.VariantName, &o.Quantity,
		&o.CustomerName, &o.CustomerPhone, &o.CustomerEmail,
		&o.Wilaya, &o.DeliveryType, &o.Address, &o.Note,
		&o.ProductPrice, &o.ShippingFee, &o.TotalPrice,
		&o.Status, &o.StockDeducted, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *Order) (*Order, error) {
	if _, err := uuid.Parse(o.ProductID); err != nil {
		return nil, ErrProductNotFound
	}

	created, err := scanOrder(r.db.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, reference, product_id, variant_name, quantity,
			customer_name, customer_phone, customer_email,
			wilaya, delivery_type, address, note,
			product_price, shipping_fee, total_price,
			status, stock_deducted, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING `+orderColumns,
		uuid.NewString(), o.Reference, o.ProductID, o.VariantName, o.Quantity,
		o.CustomerName, o.CustomerPhone, o.CustomerEmail,
		o.Wilaya, o.DeliveryType, o.Address, o.Note,
		o.ProductPrice, o.ShippingFee, o.TotalPrice,
		o.Status, o.StockDeducted, o.CreatedAt, o.UpdatedAt,
	))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrReferenceCollision
		}
		return nil, db.Wrap("insert order", err)
	}
	return created, nil
}

func (r *repository) List(ctx context.Context) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, db.Wrap("list orders", err)
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, db.Wrap("scan order", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap("iterate orders", err)
	}
	return orders, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrOrderNotFound
	}

	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, db.Wrap("get order", err)
	}
	return o, nil
}

func (r *repository) ApplyTransition(ctx context.Context, t Transition) (*Order, error) {
	if _, err := uuid.Parse(t.OrderID); err != nil {
		return nil, ErrOrderNotFound
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ApplyTransition"),
		zap.String("order_id", t.OrderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, db.Wrap("begin transaction", err)
	}
	defer tx.Rollback()

	switch t.Stock {
	case StockDeduct:
		if err := deductStock(ctx, tx, t); err != nil {
			log.Info("stock deduction refused", zap.Error(err))
			return nil, err
		}
	case StockRestore:
		if err := restoreStock(ctx, tx, t); err != nil {
			return nil, err
		}
	}

	o, err := scanOrder(tx.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $1, stock_deducted = $2, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING `+orderColumns,
		t.To, t.StockDeducted, t.UpdatedAt, t.OrderID, t.From,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, db.Wrap("update order status", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, db.Wrap("commit transaction", err)
	}
	return o, nil
}

// deductStock takes t.Quantity out of the variant pool when the order names
// one, or out of the product's own stock otherwise. The update only matches
// while enough units remain.
func deductStock(ctx context.Context, tx *sql.Tx, t Transition) error {
	var (
		res sql.Result
		err error
	)
	if t.VariantName != "" {
		res, err = tx.ExecContext(ctx, `
			UPDATE product_variants
			SET stock = stock - $1
			WHERE product_id = $2 AND name = $3 AND stock >= $1`,
			t.Quantity, t.ProductID, t.VariantName,
		)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1
			WHERE id = $2 AND stock >= $1`,
			t.Quantity, t.ProductID,
		)
	}
	if err != nil {
		return db.Wrap("deduct stock", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return db.Wrap("deduct stock", err)
	}
	if n == 1 {
		return nil
	}
	return diagnoseStock(ctx, tx, t)
}

// diagnoseStock explains why a conditional decrement matched no row.
func diagnoseStock(ctx context.Context, tx *sql.Tx, t Transition) error {
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, t.ProductID,
	).Scan(&exists); err != nil {
		return db.Wrap("check product", err)
	}
	if !exists {
		return ErrProductNotFound
	}
	if t.VariantName == "" {
		return ErrInsufficientStock
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM product_variants WHERE product_id = $1 AND name = $2)`,
		t.ProductID, t.VariantName,
	).Scan(&exists); err != nil {
		return db.Wrap("check variant", err)
	}
	if !exists {
		return ErrVariantNotFound
	}
	return ErrInsufficientStock
}

// restoreStock puts t.Quantity back. A pool that no longer exists is skipped.
func restoreStock(ctx context.Context, tx *sql.Tx, t Transition) error {
	var err error
	if t.VariantName != "" {
		_, err = tx.ExecContext(ctx, `
			UPDATE product_variants
			SET stock = stock + $1
			WHERE product_id = $2 AND name = $3`,
			t.Quantity, t.ProductID, t.VariantName,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE products SET stock = stock + $1 WHERE id = $2`,
			t.Quantity, t.ProductID,
		)
	}
	if err != nil {
		return db.Wrap("restore stock", err)
	}
	return nil
}
