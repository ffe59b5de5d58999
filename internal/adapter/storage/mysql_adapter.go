package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/parts-inventory/internal/core/domain"
)

const mysqlDuplicateEntry = 1062

const partsSchema = `
CREATE TABLE IF NOT EXISTS parts (
	id           BIGINT AUTO_INCREMENT PRIMARY KEY,
	manufacturer VARCHAR(255) NOT NULL,
	part         VARCHAR(255) NOT NULL,
	model        VARCHAR(255) NOT NULL,
	quantity     INT NOT NULL DEFAULT 0,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uq_parts_key (manufacturer, part, model)
) DEFAULT CHARSET = utf8mb4`

type MySQLOptions struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the driver DSN. ClientFoundRows makes UPDATE report matched rows,
// so an update that leaves values unchanged is not mistaken for a missing row.
func (o MySQLOptions) DSN() string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", o.Host, o.Port)
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.DBName = o.Database
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// OpenMySQL opens a bounded connection pool and verifies it. Requests beyond
// MaxOpenConns wait for a free connection.
func OpenMySQL(ctx context.Context, opts MySQLOptions) (*sql.DB, error) {
	db, err := sql.Open("mysql", opts.DSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// EnsureSchema creates the parts table when it does not exist yet.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, partsSchema); err != nil {
		return fmt.Errorf("create parts table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) FindByKey(ctx context.Context, key domain.PartKey) (*domain.Part, error) {
	var p domain.Part
	err := m.db.QueryRowContext(ctx, `
		SELECT id, manufacturer, part, model, quantity
		FROM parts WHERE manufacturer = ? AND part = ? AND model = ?`,
		key.Manufacturer, key.Part, key.Model,
	).Scan(&p.ID, &p.Manufacturer, &p.Part, &p.Model, &p.Quantity)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query part: %w", err)
	}
	return &p, nil
}

func (m *MySQLAdapter) Insert(ctx context.Context, part domain.Part) (domain.Part, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO parts (manufacturer, part, model, quantity)
		VALUES (?, ?, ?, ?)`,
		part.Manufacturer, part.Part, part.Model, part.Quantity,
	)
	if isDuplicateEntry(err) {
		return domain.Part{}, domain.ErrDuplicatePart
	}
	if err != nil {
		return domain.Part{}, fmt.Errorf("insert part: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return domain.Part{}, fmt.Errorf("last insert id: %w", err)
	}
	part.ID = id
	return part, nil
}

// AdjustQuantity applies the delta with a single guarded UPDATE, so concurrent
// adjustments of the same row never lose updates or drive stock negative.
func (m *MySQLAdapter) AdjustQuantity(ctx context.Context, id int64, delta int) (int, bool, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE parts
		SET quantity = quantity + ?
		WHERE id = ? AND quantity + ? >= 0`,
		delta, id, delta,
	)
	if err != nil {
		return 0, false, fmt.Errorf("update quantity: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("rows affected: %w", err)
	}

	var quantity int
	err = tx.QueryRowContext(ctx, `SELECT quantity FROM parts WHERE id = ?`, id).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, domain.ErrPartNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("query quantity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit: %w", err)
	}
	return quantity, rows > 0, nil
}

func (m *MySQLAdapter) Update(ctx context.Context, part domain.Part) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE parts
		SET manufacturer = ?, part = ?, model = ?, quantity = ?
		WHERE id = ?`,
		part.Manufacturer, part.Part, part.Model, part.Quantity, part.ID,
	)
	if isDuplicateEntry(err) {
		return domain.ErrDuplicatePart
	}
	if err != nil {
		return fmt.Errorf("update part: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrPartNotFound
	}
	return nil
}

func (m *MySQLAdapter) List(ctx context.Context) ([]domain.Part, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, manufacturer, part, model, quantity
		FROM parts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query parts: %w", err)
	}
	defer rows.Close()

	parts := make([]domain.Part, 0)
	for rows.Next() {
		var p domain.Part
		if err := rows.Scan(&p.ID, &p.Manufacturer, &p.Part, &p.Model, &p.Quantity); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parts: %w", err)
	}
	return parts, nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	if _, err := m.db.ExecContext(ctx, `DELETE FROM parts WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("delete parts: %w", err)
	}
	return nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
