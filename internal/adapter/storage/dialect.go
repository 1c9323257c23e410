package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/rl1809/techstore/internal/core/domain"
)

// Dialect captures what differs between the supported SQL servers.
type Dialect struct {
	Driver string
	Schema []string

	// returning is true when inserts report the new id via RETURNING
	// instead of LastInsertId.
	returning  bool
	rebind     func(query string) string
	classify   func(err error) (domain.ConstraintKind, string, bool)
	prepareDSN func(dsn string) (string, error)
}

// PrepareDSN returns dsn with the connection options the adapter relies on.
func (d Dialect) PrepareDSN(dsn string) (string, error) {
	if d.prepareDSN == nil {
		return dsn, nil
	}
	return d.prepareDSN(dsn)
}

// Open prepares dsn for the dialect and opens a pool on its driver.
func Open(d Dialect, dsn string) (*sql.DB, error) {
	dsn, err := d.PrepareDSN(dsn)
	if err != nil {
		return nil, err
	}
	return sql.Open(d.Driver, dsn)
}

// prepareMySQLDSN turns on parseTime so DATETIME columns scan into time.Time.
func prepareMySQLDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

var MySQL = Dialect{
	Driver: "mysql",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) COLLATE utf8mb4_bin NOT NULL,
			password VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			UNIQUE KEY uq_users_email (email)
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(12,2) NOT NULL,
			category VARCHAR(32) NOT NULL,
			sim_count INT NULL,
			cpu VARCHAR(255) NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			status VARCHAR(64) NOT NULL DEFAULT 'created',
			created_at DATETIME(6) NOT NULL,
			CONSTRAINT fk_orders_user_id FOREIGN KEY (user_id) REFERENCES users(id),
			CONSTRAINT fk_orders_product_id FOREIGN KEY (product_id) REFERENCES products(id)
		)`,
	},
	rebind:     func(q string) string { return q },
	classify:   classifyMySQL,
	prepareDSN: prepareMySQLDSN,
}

var Postgres = Dialect{
	Driver: "postgres",
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) NOT NULL CONSTRAINT uq_users_email UNIQUE,
			password VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price NUMERIC(12,2) NOT NULL,
			category VARCHAR(32) NOT NULL,
			sim_count INT NULL,
			cpu VARCHAR(255) NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL CONSTRAINT fk_orders_user_id REFERENCES users(id),
			product_id BIGINT NOT NULL CONSTRAINT fk_orders_product_id REFERENCES products(id),
			status VARCHAR(64) NOT NULL DEFAULT 'created',
			created_at TIMESTAMPTZ NOT NULL
		)`,
	},
	returning: true,
	rebind:    rebindDollar,
	classify:  classifyPostgres,
}

// DialectFor maps a driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case MySQL.Driver:
		return MySQL, nil
	case Postgres.Driver:
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported sql driver %q", driver)
}

// rebindDollar rewrites ? placeholders to $1, $2, ...
func rebindDollar(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const (
	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func classifyMySQL(err error) (domain.ConstraintKind, string, bool) {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return "", "", false
	}
	switch me.Number {
	case mysqlDuplicateEntry:
		return domain.ConstraintUnique, me.Message, true
	case mysqlNoReferencedRow:
		return domain.ConstraintReference, me.Message, true
	}
	return "", "", false
}

func classifyPostgres(err error) (domain.ConstraintKind, string, bool) {
	var pe *pq.Error
	if !errors.As(err, &pe) {
		return "", "", false
	}
	switch string(pe.Code) {
	case pgUniqueViolation:
		return domain.ConstraintUnique, pe.Constraint, true
	case pgForeignKeyViolation:
		return domain.ConstraintReference, pe.Constraint, true
	}
	return "", "", false
}

// constraintField picks the first known column named in the server's detail.
func constraintField(detail string, candidates ...string) string {
	for _, c := range candidates {
		if strings.Contains(detail, c) {
			return c
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}
