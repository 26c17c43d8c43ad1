package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/rugstore/storefront/internal/domain"
	"github.com/rugstore/storefront/internal/repository"
	apperrors "github.com/rugstore/storefront/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `id, order_number, user_id, email, customer_name, phone, address, city, zip, notes,
	shipping_method, payment_method, subtotal, shipping_cost, total, status, stage, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	var order domain.Order
	var userID uuid.NullUUID
	err := row.Scan(
		&order.ID,
		&order.Number,
		&userID,
		&order.Email,
		&order.CustomerName,
		&order.Phone,
		&order.Address,
		&order.City,
		&order.Zip,
		&order.Notes,
		&order.ShippingMethod,
		&order.PaymentMethod,
		&order.Subtotal,
		&order.ShippingCost,
		&order.Total,
		&order.Status,
		&order.Stage,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		order.UserID = &userID.UUID
	}
	return &order, nil
}

// Create inserts the order and its items in one transaction
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("could not start transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	orderQuery := `
		INSERT INTO orders (id, user_id, email, customer_name, phone, address, city, zip, notes,
			shipping_method, payment_method, subtotal, shipping_cost, total, status, stage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING order_number
	`
	err = tx.QueryRowContext(ctx, orderQuery,
		order.ID,
		order.UserID,
		order.Email,
		order.CustomerName,
		order.Phone,
		order.Address,
		order.City,
		order.Zip,
		order.Notes,
		order.ShippingMethod,
		order.PaymentMethod,
		order.Subtotal,
		order.ShippingCost,
		order.Total,
		order.Status,
		order.Stage,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.Number)
	if err != nil {
		r.logger.Error("Failed to insert order", zap.String("email", order.Email), zap.Error(err))
		return fmt.Errorf("could not create order: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, variant_id, name, size, color, quantity, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		return fmt.Errorf("could not prepare item statement: %w", err)
	}
	defer stmt.Close()

	for i := range order.Items {
		item := &order.Items[i]
		item.ID = uuid.New()
		item.OrderID = order.ID
		item.CreatedAt = now

		_, err = stmt.ExecContext(ctx,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.VariantID,
			item.Name,
			item.Size,
			item.Color,
			item.Quantity,
			item.Price,
			item.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to insert order item",
				zap.String("order_number", order.Number),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			return fmt.Errorf("could not create order item (product_id: %s): %w", item.ProductID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		r.logger.Error("Failed to commit order", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, number))
	if err == sql.ErrNoRows {
		return nil, &apperrors.ErrNotFound{Resource: "order", ID: number}
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.String("order_number", number), zap.Error(err))
		return nil, err
	}

	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, int, error) {
	var where []string
	var args []interface{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(order_number ILIKE $%d OR customer_name ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+whereClause, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count orders", zap.Error(err))
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, orderBy(filter.Ordering), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// orderBy turns "-field" into a whitelisted ORDER BY clause
func orderBy(ordering string) string {
	desc := strings.HasPrefix(ordering, "-")
	column, ok := repository.OrderingColumns[strings.TrimPrefix(ordering, "-")]
	if !ok {
		column, desc = "created_at", true
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return column + " " + dir + ", id " + dir
}

func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID.String()
		byID[o.ID] = o
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, variant_id, name, size, color, quantity, price, created_at
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY created_at, id
	`, pq.Array(ids))
	if err != nil {
		r.logger.Error("Failed to query order items", zap.Error(err))
		return fmt.Errorf("could not retrieve order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.VariantID,
			&item.Name,
			&item.Size,
			&item.Color,
			&item.Quantity,
			&item.Price,
			&item.CreatedAt,
		); err != nil {
			return fmt.Errorf("error scanning order item: %w", err)
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

func (r *orderRepository) Update(ctx context.Context, id uuid.UUID, status domain.OrderStatus, stage domain.OrderStage) error {
	query := `UPDATE orders SET status = $2, stage = $3, updated_at = $4 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, string(status), string(stage), time.Now())
	if err != nil {
		r.logger.Error("Failed to update order", zap.String("order_id", id.String()), zap.Error(err))
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &apperrors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return nil
}
