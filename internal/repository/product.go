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

type postgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) *postgresProductRepository {
	return &postgresProductRepository{db: db}
}

// nullIfEmpty maps empty optional text columns to SQL NULL.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (r *postgresProductRepository) ListProducts(ctx context.Context, category *string, onlyActive bool, limit, offset int) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var query strings.Builder
	args := []interface{}{}
	argPos := 1

	query.WriteString(`SELECT id, sku, category, name, name_ar, description, description_ar, price_cents, currency, region, is_active, created_at, updated_at
	                   FROM products
	                   WHERE 1=1`)

	if category != nil {
		query.WriteString(fmt.Sprintf(" AND category = $%d", argPos))
		args = append(args, *category)
		argPos++
	}

	if onlyActive {
		query.WriteString(fmt.Sprintf(" AND is_active = $%d", argPos))
		args = append(args, true)
		argPos++
	}

	query.WriteString(" ORDER BY created_at DESC")
	query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1))
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var product domain.Product
		var nameAr, description, descriptionAr, region sql.NullString
		err := rows.Scan(
			&product.ID,
			&product.SKU,
			&product.Category,
			&product.Name,
			&nameAr,
			&description,
			&descriptionAr,
			&product.PriceCents,
			&product.Currency,
			&region,
			&product.IsActive,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			log.WithError(err).Error("Failed to scan product row")
			return nil, err
		}

		if nameAr.Valid {
			product.NameAr = nameAr.String
		}
		if description.Valid {
			product.Description = description.String
		}
		if descriptionAr.Valid {
			product.DescriptionAr = descriptionAr.String
		}
		if region.Valid {
			product.Region = region.String
		}

		products = append(products, product)
	}

	return products, rows.Err()
}

func (r *postgresProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var product domain.Product
	var nameAr, description, descriptionAr, region sql.NullString
	query := `SELECT id, sku, category, name, name_ar, description, description_ar, price_cents, currency, region, is_active, created_at, updated_at
	          FROM products
	          WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.SKU,
		&product.Category,
		&product.Name,
		&nameAr,
		&description,
		&descriptionAr,
		&product.PriceCents,
		&product.Currency,
		&region,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		log.WithError(err).WithField("product_id", id).Error("Failed to get product by ID")
		return nil, err
	}

	if nameAr.Valid {
		product.NameAr = nameAr.String
	}
	if description.Valid {
		product.Description = description.String
	}
	if descriptionAr.Valid {
		product.DescriptionAr = descriptionAr.String
	}
	if region.Valid {
		product.Region = region.String
	}

	return &product, nil
}

func (r *postgresProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var product domain.Product
	var nameAr, description, descriptionAr, region sql.NullString
	query := `SELECT id, sku, category, name, name_ar, description, description_ar, price_cents, currency, region, is_active, created_at, updated_at
	          FROM products
	          WHERE sku = $1`

	err := r.db.QueryRowContext(ctx, query, sku).Scan(
		&product.ID,
		&product.SKU,
		&product.Category,
		&product.Name,
		&nameAr,
		&description,
		&descriptionAr,
		&product.PriceCents,
		&product.Currency,
		&region,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		log.WithError(err).WithField("sku", sku).Error("Failed to get product by SKU")
		return nil, err
	}

	if nameAr.Valid {
		product.NameAr = nameAr.String
	}
	if description.Valid {
		product.Description = description.String
	}
	if descriptionAr.Valid {
		product.DescriptionAr = descriptionAr.String
	}
	if region.Valid {
		product.Region = region.String
	}

	return &product, nil
}

func (r *postgresProductRepository) Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	log.WithFields(log.Fields{
		"sku":      req.SKU,
		"name":     req.Name,
		"category": req.Category,
	}).Info("Creating new product")

	query := `INSERT INTO products (sku, category, name, name_ar, description, description_ar, price_cents, currency, region, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id, sku, category, name, name_ar, description, description_ar, price_cents, currency, region, is_active, created_at, updated_at`

	var product domain.Product
	var nameAr, description, descriptionAr, region sql.NullString

	err := r.db.QueryRowContext(ctx, query,
		req.SKU,
		req.Category,
		req.Name,
		nullIfEmpty(req.NameAr),
		nullIfEmpty(req.Description),
		nullIfEmpty(req.DescriptionAr),
		req.PriceCents,
		req.Currency,
		nullIfEmpty(req.Region),
		req.IsActive,
	).Scan(
		&product.ID,
		&product.SKU,
		&product.Category,
		&product.Name,
		&nameAr,
		&description,
		&descriptionAr,
		&product.PriceCents,
		&product.Currency,
		&region,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"sku":      req.SKU,
			"name":     req.Name,
			"category": req.Category,
		}).Error("Failed to create product")
		return nil, err
	}

	if nameAr.Valid {
		product.NameAr = nameAr.String
	}
	if description.Valid {
		product.Description = description.String
	}
	if descriptionAr.Valid {
		product.DescriptionAr = descriptionAr.String
	}
	if region.Valid {
		product.Region = region.String
	}

	return &product, nil
}

func (r *postgresProductRepository) Update(ctx context.Context, id string, req domain.UpdateProductRequest) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	setParts := []string{}
	args := []interface{}{}
	argPos := 1

	if req.Category != nil {
		setParts = append(setParts, fmt.Sprintf("category = $%d", argPos))
		args = append(args, *req.Category)
		argPos++
	}
	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *req.Name)
		argPos++
	}
	if req.NameAr != nil {
		setParts = append(setParts, fmt.Sprintf("name_ar = $%d", argPos))
		args = append(args, nullIfEmpty(*req.NameAr))
		argPos++
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", argPos))
		args = append(args, nullIfEmpty(*req.Description))
		argPos++
	}
	if req.DescriptionAr != nil {
		setParts = append(setParts, fmt.Sprintf("description_ar = $%d", argPos))
		args = append(args, nullIfEmpty(*req.DescriptionAr))
		argPos++
	}
	if req.PriceCents != nil {
		setParts = append(setParts, fmt.Sprintf("price_cents = $%d", argPos))
		args = append(args, *req.PriceCents)
		argPos++
	}
	if req.Region != nil {
		setParts = append(setParts, fmt.Sprintf("region = $%d", argPos))
		args = append(args, nullIfEmpty(*req.Region))
		argPos++
	}
	if req.IsActive != nil {
		setParts = append(setParts, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE products
	                      SET %s
	                      WHERE id = $%d
	                      RETURNING id, sku, category, name, name_ar, description, description_ar, price_cents, currency, region, is_active, created_at, updated_at`,
		strings.Join(setParts, ", "), argPos)

	var product domain.Product
	var nameAr, description, descriptionAr, region sql.NullString
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&product.ID,
		&product.SKU,
		&product.Category,
		&product.Name,
		&nameAr,
		&description,
		&descriptionAr,
		&product.PriceCents,
		&product.Currency,
		&region,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		log.WithError(err).WithField("product_id", id).Error("Failed to update product")
		return nil, err
	}

	if nameAr.Valid {
		product.NameAr = nameAr.String
	}
	if description.Valid {
		product.Description = description.String
	}
	if descriptionAr.Valid {
		product.DescriptionAr = descriptionAr.String
	}
	if region.Valid {
		product.Region = region.String
	}

	return &product, nil
}

func (r *postgresProductRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	log.WithField("product_id", id).Info("Deleting product")

	query := `DELETE FROM products WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		log.WithError(err).WithField("product_id", id).Error("Failed to delete product")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}
