package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/techstore/internal/core/domain"
)

// SQLAdapter persists users, products and orders through database/sql.
type SQLAdapter struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLAdapter(db *sql.DB, dialect Dialect) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: dialect}
}

func NewMySQLAdapter(db *sql.DB) *SQLAdapter {
	return NewSQLAdapter(db, MySQL)
}

func NewPostgresAdapter(db *sql.DB) *SQLAdapter {
	return NewSQLAdapter(db, Postgres)
}

func (s *SQLAdapter) ApplySchema(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// insert runs an INSERT inside tx and returns the generated id.
func (s *SQLAdapter) insert(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	if s.dialect.returning {
		var id int64
		err := tx.QueryRowContext(ctx, s.dialect.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	result, err := tx.ExecContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLAdapter) constraintError(err error, fields ...string) error {
	kind, detail, ok := s.dialect.classify(err)
	if !ok {
		return err
	}
	return &domain.ConstraintError{Kind: kind, Field: constraintField(detail, fields...), Err: err}
}

func (s *SQLAdapter) CreateUser(ctx context.Context, user *domain.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := s.insert(ctx, tx,
		`INSERT INTO users (email, password, name) VALUES (?, ?, ?)`,
		user.Email, user.Password, user.Name,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", s.constraintError(err, "email"))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	user.ID = id
	return nil
}

func (s *SQLAdapter) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT id, email, password, name
		FROM users WHERE email = ?`), email,
	).Scan(&u.ID, &u.Email, &u.Password, &u.Name)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (s *SQLAdapter) CreateProduct(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	var sims sql.NullInt64
	var cpu sql.NullString
	if product.Phone != nil {
		sims = sql.NullInt64{Int64: int64(product.Phone.SimCount), Valid: true}
	}
	if product.Computer != nil {
		cpu = sql.NullString{String: product.Computer.CPU, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := s.insert(ctx, tx,
		`INSERT INTO products (name, price, category, sim_count, cpu) VALUES (?, ?, ?, ?, ?)`,
		product.Name, product.Price, string(product.Category), sims, cpu,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	product.ID = id
	return nil
}

const productColumns = `id, name, price, category, sim_count, cpu`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p        domain.Product
		category string
		sims     sql.NullInt64
		cpu      sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &category, &sims, &cpu); err != nil {
		return domain.Product{}, err
	}

	cat, err := domain.ParseCategory(category)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %d: %w", p.ID, err)
	}
	p.Category = cat
	switch cat {
	case domain.CategoryPhone:
		p.Phone = &domain.PhoneSpec{SimCount: int(sims.Int64)}
	case domain.CategoryComputer:
		p.Computer = &domain.ComputerSpec{CPU: cpu.String}
	}
	return p, nil
}

func (s *SQLAdapter) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT `+productColumns+` FROM products WHERE id = ?`), id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

func (s *SQLAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (s *SQLAdapter) CountProducts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (s *SQLAdapter) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := s.insert(ctx, tx, `
		INSERT INTO orders (user_id, product_id, status, created_at)
		VALUES (?, ?, ?, ?)`,
		order.UserID, order.ProductID, order.Status, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", s.constraintError(err, "user_id", "product_id"))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	order.ID = id
	return nil
}

func (s *SQLAdapter) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT id, user_id, product_id, status, created_at
		FROM orders WHERE id = ?`), id,
	).Scan(&o.ID, &o.UserID, &o.ProductID, &o.Status, &o.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &o, nil
}
