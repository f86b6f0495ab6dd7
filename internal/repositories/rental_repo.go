package repositories

import (
	"context"
	"fmt"

	"rentalhub/internal/common"
	"rentalhub/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type RentalRepository interface {
	Create(ctx context.Context, order *models.RentalOrder) error
	GetByID(ctx context.Context, id string) (*models.RentalOrder, error)
	Update(ctx context.Context, order *models.RentalOrder) error
	UpdateWithLines(ctx context.Context, order *models.RentalOrder) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *models.RentalFilter) ([]*models.RentalOrder, error)
	StatusSummary(ctx context.Context) ([]models.StatusSummary, error)
}

type rentalRepo struct {
	db Database
}

func NewRentalRepo(db Database) RentalRepository {
	return &rentalRepo{db: db}
}

const rentalColumns = `id, status, customer, invoice_address, delivery_address, schedule_date, responsible, untaxed_total, tax, total, version, created_at, updated_at`

const lineColumns = `id, rental_id, position, product_id, product, quantity, unit_price, tax, sub_total`

// Create inserts the header and its lines in one transaction. The id is
// drawn from rental_order_seq and formatted as R0001.
func (r *rentalRepo) Create(ctx context.Context, order *models.RentalOrder) error {
	query := `
		INSERT INTO rental_orders (id, status, customer, invoice_address, delivery_address, schedule_date, responsible, untaxed_total, tax, total, version, created_at, updated_at)
		VALUES ('R' || LPAD(nextval('rental_order_seq')::text, 4, '0'), $1, $2, $3, $4, $5, $6, $7, $8, $9, 1, NOW(), NOW())
		RETURNING id, version, created_at, updated_at
	`
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query, order.Status, order.Customer, order.InvoiceAddress, order.DeliveryAddress, order.ScheduleDate, order.Responsible, order.UntaxedTotal, order.Tax, order.Total).
			Scan(&order.ID, &order.Version, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}
		order.RenumberLines()
		return insertLines(ctx, tx, order.OrderLines)
	})
	return translate(err, "create rental", "rental", order.ID)
}

// GetByID loads the header and its lines ordered by position
func (r *rentalRepo) GetByID(ctx context.Context, id string) (*models.RentalOrder, error) {
	order := &models.RentalOrder{}
	query := `
		SELECT ` + rentalColumns + `
		FROM rental_orders
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&order.ID, &order.Status, &order.Customer, &order.InvoiceAddress, &order.DeliveryAddress, &order.ScheduleDate, &order.Responsible, &order.UntaxedTotal, &order.Tax, &order.Total, &order.Version, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, translate(err, "load rental", "rental", id)
	}

	lines, err := r.listLines(ctx, id)
	if err != nil {
		return nil, translate(err, "load rental lines", "rental", id)
	}
	order.OrderLines = lines
	return order, nil
}

func (r *rentalRepo) listLines(ctx context.Context, rentalID string) ([]models.OrderLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM rental_order_lines
		WHERE rental_id = $1
		ORDER BY position
	`
	rows, err := r.db.Query(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []models.OrderLine{}
	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(&l.ID, &l.RentalID, &l.Position, &l.ProductID, &l.Product, &l.Quantity, &l.UnitPrice, &l.Tax, &l.SubTotal); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Update writes header fields, status and totals. The write only applies
// if the stored version still matches order.Version; otherwise a
// ConflictError is returned and nothing changes.
func (r *rentalRepo) Update(ctx context.Context, order *models.RentalOrder) error {
	tag, err := r.db.Exec(ctx, updateRentalQuery, updateRentalArgs(order)...)
	if err != nil {
		return translate(err, "update rental", "rental", order.ID)
	}
	if tag.RowsAffected() == 0 {
		return common.ConflictError("rental", order.ID)
	}
	order.Version++
	return nil
}

// UpdateWithLines is Update plus a full rewrite of the order lines, all in
// one transaction.
func (r *rentalRepo) UpdateWithLines(ctx context.Context, order *models.RentalOrder) error {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateRentalQuery, updateRentalArgs(order)...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return common.ConflictError("rental", order.ID)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM rental_order_lines WHERE rental_id = $1`, order.ID); err != nil {
			return err
		}
		order.RenumberLines()
		return insertLines(ctx, tx, order.OrderLines)
	})
	if err != nil {
		return translate(err, "update rental lines", "rental", order.ID)
	}
	order.Version++
	return nil
}

const updateRentalQuery = `
		UPDATE rental_orders
		SET status = $1, customer = $2, invoice_address = $3, delivery_address = $4, schedule_date = $5, responsible = $6, untaxed_total = $7, tax = $8, total = $9, version = version + 1, updated_at = NOW()
		WHERE id = $10 AND version = $11
	`

func updateRentalArgs(order *models.RentalOrder) []interface{} {
	return []interface{}{order.Status, order.Customer, order.InvoiceAddress, order.DeliveryAddress, order.ScheduleDate, order.Responsible, order.UntaxedTotal, order.Tax, order.Total, order.ID, order.Version}
}

func insertLines(ctx context.Context, tx pgx.Tx, lines []models.OrderLine) error {
	query := `
		INSERT INTO rental_order_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, l := range lines {
		if _, err := tx.Exec(ctx, query, l.ID, l.RentalID, l.Position, l.ProductID, l.Product, l.Quantity, l.UnitPrice, l.Tax, l.SubTotal); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the rental; lines go with it through ON DELETE CASCADE
func (r *rentalRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rental_orders WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete rental", "rental", id)
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundError("rental", id)
	}
	return nil
}

// List returns rental headers without lines, newest first
func (r *rentalRepo) List(ctx context.Context, filter *models.RentalFilter) ([]*models.RentalOrder, error) {
	if filter == nil {
		filter = &models.RentalFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	query := `
		SELECT ` + rentalColumns + `
		FROM rental_orders
		WHERE 1 = 1
	`
	args := []interface{}{}
	conditionCount := 0

	if filter.Status != nil {
		conditionCount++
		query += fmt.Sprintf(` AND status = $%d`, conditionCount)
		args = append(args, *filter.Status)
	}

	if filter.Customer != "" {
		conditionCount++
		query += fmt.Sprintf(` AND customer ILIKE $%d`, conditionCount)
		args = append(args, "%"+filter.Customer+"%")
	}

	query += ` ORDER BY created_at DESC`

	conditionCount++
	query += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		query += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, common.PersistenceError("list rentals", err)
	}
	defer rows.Close()

	orders := []*models.RentalOrder{}
	for rows.Next() {
		o := &models.RentalOrder{}
		if err := rows.Scan(&o.ID, &o.Status, &o.Customer, &o.InvoiceAddress, &o.DeliveryAddress, &o.ScheduleDate, &o.Responsible, &o.UntaxedTotal, &o.Tax, &o.Total, &o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, common.PersistenceError("list rentals", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, common.PersistenceError("list rentals", err)
	}
	return orders, nil
}

// StatusSummary counts rentals and sums their totals per status
func (r *rentalRepo) StatusSummary(ctx context.Context) ([]models.StatusSummary, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM rental_orders
		GROUP BY status
		ORDER BY status
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, common.PersistenceError("summarize rentals", err)
	}
	defer rows.Close()

	summaries := []models.StatusSummary{}
	for rows.Next() {
		var s models.StatusSummary
		var total decimal.Decimal
		if err := rows.Scan(&s.Status, &s.Count, &total); err != nil {
			return nil, common.PersistenceError("summarize rentals", err)
		}
		s.Total = total
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, common.PersistenceError("summarize rentals", err)
	}
	return summaries, nil
}
