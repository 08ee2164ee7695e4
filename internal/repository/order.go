package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Fadil369/brainsait-healthcare-platform/internal/domain"

	log "github.com/sirupsen/logrus"
)

type postgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) *postgresOrderRepository {
	return &postgresOrderRepository{db: db}
}

// Create inserts the order with its items, the pending payment and the
// invoice in one transaction. Generated IDs and timestamps are written back
// into the passed structs.
func (r *postgresOrderRepository) Create(ctx context.Context, order *domain.Order, payment *domain.Payment, invoice *domain.Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	log.WithFields(log.Fields{
		"items":       len(order.Items),
		"total_cents": order.TotalCents,
		"currency":    order.Currency,
	}).Info("Creating new order")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin order transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (tenant_id, user_id, status, subtotal_cents, vat_cents, total_cents, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		order.TenantID,
		order.UserID,
		order.Status,
		order.SubtotalCents,
		order.VATCents,
		order.TotalCents,
		order.Currency,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		log.WithError(err).Error("Failed to insert order")
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price_cents)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			order.ID,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.UnitPriceCents,
		).Scan(&item.ID)

		if err != nil {
			log.WithError(err).WithField("order_id", order.ID).Error("Failed to insert order item")
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	payment.OrderID = order.ID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO payments (order_id, status, method, amount_cents, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		payment.OrderID,
		payment.Status,
		nullIfEmpty(payment.Method),
		payment.AmountCents,
		payment.Currency,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)

	if err != nil {
		log.WithError(err).WithField("order_id", order.ID).Error("Failed to insert payment")
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	invoice.OrderID = order.ID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO invoices (order_id, number, subtotal_cents, vat_rate_bp, vat_cents, total_cents, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, issued_at`,
		invoice.OrderID,
		invoice.Number,
		invoice.SubtotalCents,
		invoice.VATRateBP,
		invoice.VATCents,
		invoice.TotalCents,
		invoice.Currency,
	).Scan(&invoice.ID, &invoice.IssuedAt)

	if err != nil {
		log.WithError(err).WithField("order_id", order.ID).Error("Failed to insert invoice")
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"order_id": order.ID,
		"invoice":  invoice.Number,
	}).Info("Order successfully created")
	return nil
}

func (r *postgresOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var order domain.Order
	var tenantID, userID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, user_id, status, subtotal_cents, vat_cents, total_cents, currency, created_at, updated_at
		FROM orders
		WHERE id = $1`, id,
	).Scan(
		&order.ID,
		&tenantID,
		&userID,
		&order.Status,
		&order.SubtotalCents,
		&order.VATCents,
		&order.TotalCents,
		&order.Currency,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		log.WithError(err).WithField("order_id", id).Error("Failed to get order by ID")
		return nil, err
	}

	if tenantID.Valid {
		order.TenantID = &tenantID.String
	}
	if userID.Valid {
		order.UserID = &userID.String
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, product_name, quantity, unit_price_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at`, id,
	)
	if err != nil {
		log.WithError(err).WithField("order_id", id).Error("Failed to load order items")
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPriceCents,
		); err != nil {
			log.WithError(err).Error("Failed to scan order item row")
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	return &order, rows.Err()
}

func (r *postgresOrderRepository) List(ctx context.Context, status, userID *string, limit, offset int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var query strings.Builder
	args := []interface{}{}
	argPos := 1

	query.WriteString(`SELECT id, tenant_id, user_id, status, subtotal_cents, vat_cents, total_cents, currency, created_at, updated_at
	                   FROM orders
	                   WHERE 1=1`)

	if status != nil {
		query.WriteString(fmt.Sprintf(" AND status = $%d", argPos))
		args = append(args, *status)
		argPos++
	}

	if userID != nil {
		query.WriteString(fmt.Sprintf(" AND user_id = $%d", argPos))
		args = append(args, *userID)
		argPos++
	}

	query.WriteString(" ORDER BY created_at DESC")
	query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1))
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		log.WithError(err).Error("Failed to list orders")
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		var tenantID, rowUserID sql.NullString

		err := rows.Scan(
			&order.ID,
			&tenantID,
			&rowUserID,
			&order.Status,
			&order.SubtotalCents,
			&order.VATCents,
			&order.TotalCents,
			&order.Currency,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			log.WithError(err).Error("Failed to scan order row")
			return nil, err
		}

		if tenantID.Valid {
			order.TenantID = &tenantID.String
		}
		if rowUserID.Valid {
			order.UserID = &rowUserID.String
		}

		orders = append(orders, order)
	}

	return orders, rows.Err()
}

func (r *postgresOrderRepository) Count(ctx context.Context, status, userID *string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var query strings.Builder
	args := []interface{}{}
	argPos := 1

	query.WriteString(`SELECT COUNT(*) FROM orders WHERE 1=1`)

	if status != nil {
		query.WriteString(fmt.Sprintf(" AND status = $%d", argPos))
		args = append(args, *status)
		argPos++
	}

	if userID != nil {
		query.WriteString(fmt.Sprintf(" AND user_id = $%d", argPos))
		args = append(args, *userID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, query.String(), args...).Scan(&total); err != nil {
		log.WithError(err).Error("Failed to count orders")
		return 0, err
	}

	return total, nil
}

// UpdateStatus moves an order between statuses with an optimistic guard on
// the expected current status, so concurrent transitions cannot race past
// the state machine.
func (r *postgresOrderRepository) UpdateStatus(ctx context.Context, id, fromStatus, toStatus string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	log.WithFields(log.Fields{
		"order_id": id,
		"from":     fromStatus,
		"to":       toStatus,
	}).Info("Updating order status")

	query := `
		UPDATE orders SET
			status = $1,
			updated_at = NOW()
		WHERE id = $2
		  AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, toStatus, id, fromStatus)
	if err != nil {
		log.WithError(err).WithField("order_id", id).Error("Failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not determine rows affected: %w", err)
	}

	if rowsAffected == 0 {
		_, err := r.GetByID(ctx, id)
		if err != nil {
			return domain.ErrOrderNotFound
		}
		return domain.ErrInvalidOrderTransition
	}

	log.WithField("order_id", id).Info("Order status successfully updated")
	return nil
}

// Cancel atomically cancels an order that is still pending or paid.
func (r *postgresOrderRepository) Cancel(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	log.WithField("order_id", id).Info("Cancelling order")

	query := `
		UPDATE orders SET
			status = $1,
			updated_at = NOW()
		WHERE id = $2
		  AND status IN ($3, $4)
	`

	result, err := r.db.ExecContext(ctx, query,
		domain.OrderStatusCancelled, id,
		domain.OrderStatusPending, domain.OrderStatusPaid,
	)
	if err != nil {
		log.WithError(err).WithField("order_id", id).Error("Failed to cancel order")
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not determine rows affected: %w", err)
	}

	if rowsAffected == 0 {
		_, err := r.GetByID(ctx, id)
		if err != nil {
			return domain.ErrOrderNotFound
		}
		return domain.ErrOrderNotCancellable
	}

	log.WithField("order_id", id).Info("Order successfully cancelled")
	return nil
}

func (r *postgresOrderRepository) GetPaymentByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var payment domain.Payment
	var method sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, status, method, amount_cents, currency, created_at, updated_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, orderID,
	).Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Status,
		&method,
		&payment.AmountCents,
		&payment.Currency,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		log.WithError(err).WithField("order_id", orderID).Error("Failed to get payment")
		return nil, err
	}

	if method.Valid {
		payment.Method = method.String
	}

	return &payment, nil
}

func (r *postgresOrderRepository) GetInvoiceByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var invoice domain.Invoice

	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, number, subtotal_cents, vat_rate_bp, vat_cents, total_cents, currency, issued_at
		FROM invoices
		WHERE order_id = $1`, orderID,
	).Scan(
		&invoice.ID,
		&invoice.OrderID,
		&invoice.Number,
		&invoice.SubtotalCents,
		&invoice.VATRateBP,
		&invoice.VATCents,
		&invoice.TotalCents,
		&invoice.Currency,
		&invoice.IssuedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		log.WithError(err).WithField("order_id", orderID).Error("Failed to get invoice")
		return nil, err
	}

	return &invoice, nil
}
