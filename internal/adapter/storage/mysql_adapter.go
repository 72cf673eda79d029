package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/crm/internal/core/domain"
	"github.com/rl1809/crm/internal/port"
)

const mysqlDuplicateEntry = 1062

//go:embed schema.sql
var schemaSQL string

var (
	customerColumns = map[string]string{"name": "name", "email": "email", "createdAt": "created_at"}
	productColumns  = map[string]string{"name": "name", "price": "price", "stock": "stock", "createdAt": "created_at"}
	orderColumns    = map[string]string{"orderDate": "o.order_date", "totalAmount": "o.total_amount"}
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate creates the tables when missing.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *MySQLAdapter) InTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &mysqlTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (m *MySQLAdapter) CountCustomers(ctx context.Context) (int, error) {
	var n int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}

func (m *MySQLAdapter) ListCustomers(ctx context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	order, err := orderClause(filter.OrderBy, domain.CustomerSortFields, customerColumns, "created_at, id")
	if err != nil {
		return nil, err
	}

	var where []string
	var args []any
	if filter.NameContains != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, likePattern(filter.NameContains))
	}
	if filter.EmailContains != "" {
		where = append(where, "LOWER(email) LIKE ?")
		args = append(args, likePattern(filter.EmailContains))
	}

	rows, err := m.db.QueryContext(ctx,
		`SELECT id, name, email, phone, created_at FROM customers`+whereClause(where)+order, args...)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	out := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (m *MySQLAdapter) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	order, err := orderClause(filter.OrderBy, domain.ProductSortFields, productColumns, "created_at, id")
	if err != nil {
		return nil, err
	}

	var where []string
	var args []any
	if filter.NameContains != "" {
		where = append(where, "LOWER(name) LIKE ?")
		args = append(args, likePattern(filter.NameContains))
	}
	if filter.PriceGte != nil {
		where = append(where, "price >= ?")
		args = append(args, *filter.PriceGte)
	}
	if filter.PriceLte != nil {
		where = append(where, "price <= ?")
		args = append(args, *filter.PriceLte)
	}
	if filter.StockLt != nil {
		where = append(where, "stock < ?")
		args = append(args, *filter.StockLt)
	}

	rows, err := m.db.QueryContext(ctx,
		`SELECT id, name, price, stock, created_at FROM products`+whereClause(where)+order, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (m *MySQLAdapter) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	order, err := orderClause(filter.OrderBy, domain.OrderSortFields, orderColumns, "o.order_date, o.id")
	if err != nil {
		return nil, err
	}

	var where []string
	var args []any
	if filter.CustomerID != "" {
		where = append(where, "o.customer_id = ?")
		args = append(args, filter.CustomerID)
	}
	if filter.OrderDateGte != nil {
		where = append(where, "o.order_date >= ?")
		args = append(args, filter.OrderDateGte.UTC())
	}
	if filter.OrderDateLte != nil {
		where = append(where, "o.order_date <= ?")
		args = append(args, filter.OrderDateLte.UTC())
	}
	if filter.TotalAmountGte != nil {
		where = append(where, "o.total_amount >= ?")
		args = append(args, *filter.TotalAmountGte)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT o.id, o.customer_id, o.total_amount, o.order_date,
		       c.id, c.name, c.email, c.phone, c.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id`+whereClause(where)+order, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	out := []domain.Order{}
	index := map[string]int{}
	for rows.Next() {
		var (
			o     domain.Order
			c     domain.Customer
			phone sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &o.OrderDate,
			&c.ID, &c.Name, &c.Email, &phone, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		c.Phone = phone.String
		o.Customer = &c
		o.Products = []domain.Product{}
		index[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]any, 0, len(out))
	for _, o := range out {
		ids = append(ids, o.ID)
	}
	prows, err := m.db.QueryContext(ctx, `
		SELECT op.order_id, p.id, p.name, p.price, p.stock, p.created_at
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id IN (`+placeholders(len(ids))+`)
		ORDER BY op.order_id, op.position`, ids...)
	if err != nil {
		return nil, fmt.Errorf("query order products: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var (
			orderID string
			p       domain.Product
		)
		if err := prows.Scan(&orderID, &p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order product: %w", err)
		}
		i := index[orderID]
		out[i].Products = append(out[i].Products, p)
	}
	return out, prows.Err()
}

type mysqlTx struct {
	tx *sql.Tx
}

func (t *mysqlTx) CustomerEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE email = ?)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (t *mysqlTx) InsertCustomer(ctx context.Context, c domain.Customer) error {
	var phone sql.NullString
	if c.Phone != "" {
		phone = sql.NullString{String: c.Phone, Valid: true}
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, phone, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, phone, c.CreatedAt,
	)
	if isDuplicateEntry(err) {
		return domain.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (t *mysqlTx) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT id, name, email, phone, created_at FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (t *mysqlTx) InsertProduct(ctx context.Context, p domain.Product) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO products (id, name, price, stock, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Price, p.Stock, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (t *mysqlTx) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, price, stock, created_at
		FROM products WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (t *mysqlTx) InsertOrder(ctx context.Context, o domain.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, total_amount, order_date)
		VALUES (?, ?, ?, ?)`,
		o.ID, o.CustomerID, o.TotalAmount, o.OrderDate,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, p := range o.Products {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO order_products (order_id, product_id, position)
			VALUES (?, ?, ?)`,
			o.ID, p.ID, i,
		)
		if err != nil {
			return fmt.Errorf("insert order product: %w", err)
		}
	}
	return nil
}

func (t *mysqlTx) LockLowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, name, price, stock, created_at
		FROM products WHERE stock < ?
		ORDER BY created_at, id
		FOR UPDATE`, threshold)
	if err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (t *mysqlTx) IncrementStockBelow(ctx context.Context, productID string, increment, threshold int) (bool, error) {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + ?
		WHERE id = ? AND stock < ?`,
		increment, productID, threshold,
	)
	if err != nil {
		return false, fmt.Errorf("update stock: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	var (
		c     domain.Customer
		phone sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &phone, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	c.Phone = phone.String
	return &c, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

func orderClause(orderBy string, allowed []string, columns map[string]string, fallback string) (string, error) {
	key, err := domain.ParseOrderBy(orderBy, allowed)
	if err != nil {
		return "", err
	}
	if key == nil {
		return " ORDER BY " + fallback, nil
	}
	dir := "ASC"
	if key.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, %s", columns[key.Field], dir, fallback), nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
