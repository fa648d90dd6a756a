package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// ProductFilter captures catalog listing parameters.
type ProductFilter struct {
	CategorySlug string
	CategoryIDs  []int64
	ExcludeID    int64
	Search       string
	MinPrice     *float64
	MaxPrice     *float64
	InStock      *bool
	Featured     *bool
	OnSale       *bool
	OrderBy      string
	Order        string
	Limit        int
	Offset       int
}

// ProductRepository encapsulates catalog persistence. Only published
// products are ever returned.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `p.id, p.name, p.slug, p.sku, p.type, p.status, p.featured, p.description,
               p.short_description, p.price, p.regular_price, p.sale_price, p.stock_status,
               p.stock_quantity, p.total_sales, p.average_rating, p.rating_count, p.images,
               p.created_at, p.updated_at`

var productOrderColumns = map[string]string{
	"date":       "p.created_at",
	"price":      "p.price",
	"name":       "p.name",
	"popularity": "p.total_sales",
	"rating":     "p.average_rating",
	"id":         "p.id",
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products p WHERE p.id=$1 AND p.status='publish'`
	return r.fetchSingle(ctx, query, id)
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products p WHERE p.slug=$1 AND p.status='publish'`
	return r.fetchSingle(ctx, query, slug)
}

func (r *productRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Product, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	if err := r.attachCategories(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// GetByIDs returns published products in the order of ids, skipping unknown ones.
func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + productColumns + ` FROM products p WHERE p.id = ANY($1) AND p.status='publish'`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachCategories(ctx, products); err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	ordered := make([]domain.Product, 0, len(products))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error) {
	where, args := productWhere(filter)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM products p WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderColumn, ok := productOrderColumns[filter.OrderBy]
	if !ok {
		orderColumn = productOrderColumns["date"]
	}
	direction := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		direction = "ASC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM products p WHERE %s ORDER BY %s %s, p.id %s LIMIT %d OFFSET %d`,
		productColumns, where, orderColumn, direction, direction, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachCategories(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// productWhere builds the WHERE clause and its positional arguments.
func productWhere(filter ProductFilter) (string, []any) {
	clauses := []string{"p.status='publish'"}
	args := []any{}

	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		clauses = append(clauses, fmt.Sprintf(`EXISTS (SELECT 1 FROM product_category_links l
            JOIN product_categories c ON c.id=l.category_id
            WHERE l.product_id=p.id AND c.slug=$%d)`, len(args)))
	}
	if len(filter.CategoryIDs) > 0 {
		args = append(args, filter.CategoryIDs)
		clauses = append(clauses, fmt.Sprintf(`EXISTS (SELECT 1 FROM product_category_links l
            WHERE l.product_id=p.id AND l.category_id = ANY($%d))`, len(args)))
	}
	if filter.ExcludeID > 0 {
		args = append(args, filter.ExcludeID)
		clauses = append(clauses, fmt.Sprintf("p.id <> $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(search))+"%")
		like := fmt.Sprintf(`LIKE $%d ESCAPE '\'`, len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(p.name) %s OR LOWER(p.short_description) %s OR LOWER(p.description) %s OR LOWER(p.sku) %s)",
			like, like, like, like))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		clauses = append(clauses, fmt.Sprintf("p.price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("p.price <= $%d", len(args)))
	}
	if filter.InStock != nil {
		if *filter.InStock {
			clauses = append(clauses, "p.stock_status <> 'outofstock'")
		} else {
			clauses = append(clauses, "p.stock_status = 'outofstock'")
		}
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		clauses = append(clauses, fmt.Sprintf("p.featured = $%d", len(args)))
	}
	if filter.OnSale != nil {
		if *filter.OnSale {
			clauses = append(clauses, "(p.sale_price IS NOT NULL AND p.sale_price < p.regular_price)")
		} else {
			clauses = append(clauses, "(p.sale_price IS NULL OR p.sale_price >= p.regular_price)")
		}
	}

	return strings.Join(clauses, " AND "), args
}

func (r *productRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const query = `
        SELECT c.id, c.name, c.slug, c.parent_id, COUNT(p.id)
        FROM product_categories c
        LEFT JOIN product_category_links l ON l.category_id=c.id
        LEFT JOIN products p ON p.id=l.product_id AND p.status='publish'
        GROUP BY c.id, c.name, c.slug, c.parent_id
        ORDER BY c.name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.ParentID, &category.Count); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *productRepository) attachCategories(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, len(products))
	index := make(map[int64]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
	}

	const query = `
        SELECT l.product_id, c.id, c.name, c.slug, c.parent_id
        FROM product_category_links l
        JOIN product_categories c ON c.id=l.category_id
        WHERE l.product_id = ANY($1)
        ORDER BY c.name`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var category domain.Category
		if err := rows.Scan(&productID, &category.ID, &category.Name, &category.Slug, &category.ParentID); err != nil {
			return err
		}
		if i, ok := index[productID]; ok {
			products[i].Categories = append(products[i].Categories, category)
		}
	}
	return rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern using '\' as the escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()
	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.SKU,
			&p.Type,
			&p.Status,
			&p.Featured,
			&p.Description,
			&p.ShortDescription,
			&p.Price,
			&p.RegularPrice,
			&p.SalePrice,
			&p.StockStatus,
			&p.StockQuantity,
			&p.TotalSales,
			&p.AverageRating,
			&p.RatingCount,
			&p.Images,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return result, nil
}
