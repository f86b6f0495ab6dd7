package repositories

import (
	"context"
	"fmt"

	"rentalhub/internal/common"
	"rentalhub/internal/models"

	"github.com/google/uuid"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, limit, offset int) ([]*models.Product, error)
}

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, name, description, rental_unit, rental_price, tax, created_at, updated_at`

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, description, rental_unit, rental_price, tax, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, product.ID, product.Name, product.Description, product.RentalUnit, product.RentalPrice, product.Tax).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	return translate(err, "create product", "product", product.ID.String())
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := &models.Product{}
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&product.ID, &product.Name, &product.Description, &product.RentalUnit, &product.RentalPrice, &product.Tax, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, translate(err, "load product", "product", id.String())
	}
	return product, nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, rental_unit = $3, rental_price = $4, tax = $5, updated_at = NOW()
		WHERE id = $6
	`
	tag, err := r.db.Exec(ctx, query, product.Name, product.Description, product.RentalUnit, product.RentalPrice, product.Tax, product.ID)
	if err != nil {
		return translate(err, "update product", "product", product.ID.String())
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundError("product", product.ID.String())
	}
	return nil
}

// Delete removes a catalog item. Lines that referenced it keep their copied
// name and price; the FK is ON DELETE SET NULL.
func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete product", "product", id.String())
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundError("product", id.String())
	}
	return nil
}

func (r *productRepo) List(ctx context.Context, search string, limit, offset int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE 1 = 1
	`
	args := []interface{}{}
	conditionCount := 0

	if search != "" {
		conditionCount++
		query += fmt.Sprintf(` AND (name ILIKE $%d OR COALESCE(description, '') ILIKE $%d)`, conditionCount, conditionCount)
		args = append(args, "%"+search+"%")
	}

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, conditionCount+1, conditionCount+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, common.PersistenceError("list products", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.RentalUnit, &p.RentalPrice, &p.Tax, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, common.PersistenceError("list products", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, common.PersistenceError("list products", err)
	}
	return products, nil
}
