// Package mysql implements the user store on MySQL via database/sql and
// github.com/go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/go-verification-mailer/internal/config"
	"github.com/go-verification-mailer/internal/domain"
)

const markEmailSentQuery = "UPDATE user SET email_sent_at = NOW(), email_status = 'sent' WHERE id = ?"

// Connector opens per-invocation connections. The password is supplied at
// Open time because it is resolved per invocation.
type Connector struct {
	cfg     config.DB
	timeout time.Duration
	open    func(dsn string) (*sql.DB, error)
}

func NewConnector(cfg config.DB) *Connector {
	return &Connector{
		cfg:     cfg,
		timeout: 5 * time.Second,
		open:    func(dsn string) (*sql.DB, error) { return sql.Open("mysql", dsn) },
	}
}

// DSN builds the driver DSN for password.
func (c *Connector) DSN(password string) string {
	mc := mysql.NewConfig()
	mc.User = c.cfg.User
	mc.Passwd = password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	mc.DBName = c.cfg.Name
	mc.ParseTime = true
	// Report matched rather than changed rows so a repeated update of an
	// already-sent user is not mistaken for an unknown id.
	mc.ClientFoundRows = true
	mc.Timeout = c.timeout
	return mc.FormatDSN()
}

// Open acquires exactly one connection. The returned UserRepo must be closed
// on every exit path.
func (c *Connector) Open(ctx context.Context, password string) (*UserRepo, error) {
	db, err := c.open(c.DSN(password))
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w: %w", domain.ErrDatabaseUpdate, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: connect: %w: %w", domain.ErrDatabaseUpdate, err)
	}
	return &UserRepo{db: db, conn: conn}, nil
}

// UserRepo updates the verification columns of the user table over a single connection.
type UserRepo struct {
	db   *sql.DB
	conn *sql.Conn
}

// MarkEmailSent records a successful send for userID. Zero affected rows
// means the user does not exist.
func (r *UserRepo) MarkEmailSent(ctx context.Context, userID string) error {
	res, err := r.conn.ExecContext(ctx, markEmailSentQuery, userID)
	if err != nil {
		return fmt.Errorf("mysql: mark email sent for %s: %w: %w", userID, domain.ErrDatabaseUpdate, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mysql: rows affected: %w: %w", domain.ErrDatabaseUpdate, err)
	}
	if n == 0 {
		return fmt.Errorf("mysql: id %s: %w", userID, errors.Join(domain.ErrDatabaseUpdate, domain.ErrUserNotFound))
	}
	return nil
}

// Close releases the connection and the pool behind it.
func (r *UserRepo) Close() error {
	return errors.Join(r.conn.Close(), r.db.Close())
}
