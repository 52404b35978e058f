package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/fos/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(order domain.OrderRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	itemsJSON, err := marshalItems(order.Items)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, restaurant_id, status, total_amount, items,
			payment_reference, failure_reason, customer_reference,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		order.ID, order.RestaurantID, string(order.Status),
		order.TotalAmount, itemsJSON,
		order.PaymentReference, order.FailureReason, order.CustomerReference,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateOrderID
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// Update применяет частичный патч одним UPDATE. nil-поля не меняют
// хранимые значения; failure_reason очищается только явным флагом.
func (r *orderRepository) Update(id string, patch domain.OrderUpdate) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	itemsJSON, err := marshalItems(patch.Items)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2,
		    total_amount = COALESCE($3, total_amount),
		    items = COALESCE($4::jsonb, items),
		    payment_reference = COALESCE($5, payment_reference),
		    failure_reason = CASE
		        WHEN $6 THEN NULL
		        WHEN $7::text IS NOT NULL THEN $7
		        ELSE failure_reason
		    END,
		    updated_at = NOW()
		WHERE id = $1
	`,
		id, string(patch.Status),
		patch.TotalAmount, itemsJSON, patch.PaymentReference,
		patch.ClearFailureReason, patch.FailureReason,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) Get(id string) (domain.OrderRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, restaurant_id, status, total_amount, items,
		       payment_reference, failure_reason, customer_reference,
		       created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OrderRecord{}, domain.ErrOrderNotFound
		}
		return domain.OrderRecord{}, fmt.Errorf("select order: %w", err)
	}

	return order, nil
}

func (r *orderRepository) List(limit int) ([]domain.OrderRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, restaurant_id, status, total_amount, items,
		       payment_reference, failure_reason, customer_reference,
		       created_at, updated_at
		FROM orders
		ORDER BY updated_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $1", limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.OrderRecord, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (domain.OrderRecord, error) {
	var (
		order    domain.OrderRecord
		status   string
		itemsRaw []byte
	)
	if err := row.Scan(
		&order.ID, &order.RestaurantID, &status, &order.TotalAmount, &itemsRaw,
		&order.PaymentReference, &order.FailureReason, &order.CustomerReference,
		&order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return domain.OrderRecord{}, err
	}
	order.Status = domain.OrderStatus(status)

	if len(itemsRaw) > 0 {
		if err := json.Unmarshal(itemsRaw, &order.Items); err != nil {
			return domain.OrderRecord{}, fmt.Errorf("decode order items: %w", err)
		}
	}

	return order, nil
}

// marshalItems сериализует позиции в JSONB; nil остаётся NULL в базе.
func marshalItems(items []domain.PricedLineItem) ([]byte, error) {
	if items == nil {
		return nil, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode order items: %w", err)
	}
	return data, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
