package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/printware/printdesk/internal/domain/errors"
	"github.com/printware/printdesk/internal/domain/model"
	"github.com/printware/printdesk/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool the storage needs; it allows swapping
// in a mock pool for tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type productRepository struct {
	storage *Storage
}

type bulkOrderRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{storage: s}
}

func (s *Storage) BulkOrders() repository.BulkOrderRepository {
	return &bulkOrderRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

// terminalStatuses guards bulk order updates: a record that reached one of
// these never changes again.
const terminalStatuses = `('ORDER_CREATED', 'FAILED', 'CANCELLED')`

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            id SERIAL PRIMARY KEY,
            name TEXT UNIQUE NOT NULL,
            unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
            departments TEXT[] NOT NULL DEFAULT '{}'
        )`,
		`CREATE TABLE IF NOT EXISTS bulk_orders (
            id TEXT PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id),
            order_number TEXT UNIQUE NOT NULL,
            status TEXT NOT NULL,
            payload BYTEA NOT NULL,
            distinct_designs INT NOT NULL DEFAULT 0,
            total_copies INT NOT NULL DEFAULT 0,
            parent_order_id BIGINT,
            failure_reason TEXT NOT NULL DEFAULT '',
            uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id),
            product_id BIGINT REFERENCES products(id),
            order_number TEXT NOT NULL,
            design_name TEXT NOT NULL DEFAULT '',
            copies INT NOT NULL DEFAULT 1,
            status TEXT NOT NULL,
            payment_status TEXT NOT NULL,
            total_price DOUBLE PRECISION NOT NULL DEFAULT 0,
            total_payable DOUBLE PRECISION,
            courier_status TEXT,
            tracking_id TEXT NOT NULL DEFAULT '',
            awb_code TEXT NOT NULL DEFAULT '',
            packed_at TIMESTAMPTZ,
            dispatched_at TIMESTAMPTZ,
            delivered_at TIMESTAMPTZ,
            pickup_scheduled_date TIMESTAMPTZ,
            estimated_delivery_date TIMESTAMPTZ,
            is_bulk_parent BOOLEAN NOT NULL DEFAULT FALSE,
            is_bulk_child BOOLEAN NOT NULL DEFAULT FALSE,
            parent_order_id BIGINT,
            bulk_order_id TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_departments (
            order_id BIGINT NOT NULL REFERENCES orders(id),
            department TEXT NOT NULL,
            position INT NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'pending',
            started_at TIMESTAMPTZ,
            completed_at TIMESTAMPTZ,
            PRIMARY KEY (order_id, department)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_bulk_orders_user ON bulk_orders(user_id, uploaded_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_bulk_orders_claim ON bulk_orders(status, uploaded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_parent ON orders(parent_order_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Login = login
	u.PasswordHash = passwordHash
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, password_hash, created_at FROM users WHERE login=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, login, password_hash, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- ProductRepository implementation ---

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	const query = `SELECT id, name, unit_price, departments FROM products WHERE id=$1`
	var p model.Product
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.UnitPrice, &p.Departments)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) DepartmentSequence(ctx context.Context, productID int64) ([]string, error) {
	const query = `SELECT departments FROM products WHERE id=$1`
	var departments []string
	err := r.storage.pool.QueryRow(ctx, query, productID).Scan(&departments)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return departments, nil
}

// --- BulkOrderRepository implementation ---

const bulkOrderColumns = `id, user_id, order_number, status, payload, distinct_designs,
       total_copies, parent_order_id, failure_reason, uploaded_at, updated_at`

func scanBulkOrder(row pgx.Row) (*model.BulkOrder, error) {
	var b model.BulkOrder
	err := row.Scan(&b.ID, &b.UserID, &b.OrderNumber, &b.Status, &b.Payload, &b.DistinctDesigns,
		&b.TotalCopies, &b.ParentOrderID, &b.FailureReason, &b.UploadedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bulkOrderRepository) Create(ctx context.Context, bulk *model.BulkOrder) (*model.BulkOrder, error) {
	const query = `INSERT INTO bulk_orders (id, user_id, order_number, status, payload)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING uploaded_at, updated_at`
	created := *bulk
	err := r.storage.pool.QueryRow(ctx, query, bulk.ID, bulk.UserID, bulk.OrderNumber, bulk.Status, bulk.Payload).
		Scan(&created.UploadedAt, &created.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *bulkOrderRepository) GetByID(ctx context.Context, id string) (*model.BulkOrder, error) {
	const query = `SELECT ` + bulkOrderColumns + ` FROM bulk_orders WHERE id=$1`
	bulk, err := scanBulkOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return bulk, nil
}

func (r *bulkOrderRepository) ListByUser(ctx context.Context, userID int64) ([]model.BulkOrder, error) {
	const query = `SELECT ` + bulkOrderColumns + `
                   FROM bulk_orders WHERE user_id=$1 ORDER BY uploaded_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.BulkOrder
	for rows.Next() {
		bulk, err := scanBulkOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *bulk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *bulkOrderRepository) ClaimBatchForSplitting(ctx context.Context, limit int) ([]model.BulkOrder, error) {
	// In-flight statuses are reclaimed too: a worker crash between claim and
	// completion must not strand the record. Re-processing is safe because
	// CompleteSplit is a single terminal-guarded transaction.
	const selectQuery = `SELECT ` + bulkOrderColumns + `
                         FROM bulk_orders
                         WHERE status IN ('UPLOADED', 'SPLITTING', 'PROCESSING')
                         ORDER BY uploaded_at
                         LIMIT $1
                         FOR UPDATE SKIP LOCKED`

	var claimed []model.BulkOrder
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			bulk, err := scanBulkOrder(rows)
			if err != nil {
				return err
			}
			claimed = append(claimed, *bulk)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for i := range claimed {
			if _, err := tx.Exec(ctx, `UPDATE bulk_orders SET status='SPLITTING', updated_at=NOW() WHERE id=$1`, claimed[i].ID); err != nil {
				return err
			}
			claimed[i].Status = model.BulkOrderStatusSplitting
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *bulkOrderRepository) SetStatus(ctx context.Context, id string, status model.BulkOrderStatus) (bool, error) {
	const query = `UPDATE bulk_orders SET status=$1, updated_at=NOW()
                   WHERE id=$2 AND status NOT IN ` + terminalStatuses
	tag, err := r.storage.pool.Exec(ctx, query, status, id)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	return false, r.ensureExists(ctx, id)
}

func (r *bulkOrderRepository) SetFailed(ctx context.Context, id string, reason string) (bool, error) {
	const query = `UPDATE bulk_orders SET status='FAILED', failure_reason=$1, updated_at=NOW()
                   WHERE id=$2 AND status NOT IN ` + terminalStatuses
	tag, err := r.storage.pool.Exec(ctx, query, reason, id)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	return false, r.ensureExists(ctx, id)
}

// ensureExists distinguishes "guarded away" from "no such record" after a
// zero-row update.
func (r *bulkOrderRepository) ensureExists(ctx context.Context, id string) error {
	var exists bool
	err := r.storage.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bulk_orders WHERE id=$1)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *bulkOrderRepository) CompleteSplit(ctx context.Context, id string, designs []model.DesignSpec) (*model.BulkOrder, bool, error) {
	var (
		result  *model.BulkOrder
		applied bool
	)

	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		bulk, err := scanBulkOrder(tx.QueryRow(ctx, `SELECT `+bulkOrderColumns+` FROM bulk_orders WHERE id=$1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		if bulk.Status.IsTerminal() {
			result = bulk
			return nil
		}

		totalCopies := 0
		for _, d := range designs {
			totalCopies += d.Copies
		}

		const insertParent = `INSERT INTO orders (user_id, order_number, copies, status, payment_status, is_bulk_parent, bulk_order_id)
                              VALUES ($1, $2, $3, $4, $5, TRUE, $6)
                              RETURNING id`
		var parentID int64
		err = tx.QueryRow(ctx, insertParent,
			bulk.UserID, bulk.OrderNumber, totalCopies,
			model.OrderStatusRequest, model.PaymentStatusPending, bulk.ID,
		).Scan(&parentID)
		if err != nil {
			return err
		}

		const insertChild = `INSERT INTO orders (user_id, order_number, design_name, copies, status, payment_status, is_bulk_child, parent_order_id, bulk_order_id)
                             VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8)`
		for i, d := range designs {
			childNumber := fmt.Sprintf("%s-%02d", bulk.OrderNumber, i+1)
			if _, err := tx.Exec(ctx, insertChild,
				bulk.UserID, childNumber, d.Name, d.Copies,
				model.OrderStatusRequest, model.PaymentStatusPending, parentID, bulk.ID,
			); err != nil {
				return err
			}
		}

		const finalize = `UPDATE bulk_orders
                          SET status='ORDER_CREATED', distinct_designs=$1, total_copies=$2, parent_order_id=$3, updated_at=NOW()
                          WHERE id=$4`
		if _, err := tx.Exec(ctx, finalize, len(designs), totalCopies, parentID, id); err != nil {
			return err
		}

		bulk.Status = model.BulkOrderStatusOrderCreated
		bulk.DistinctDesigns = len(designs)
		bulk.TotalCopies = totalCopies
		bulk.ParentOrderID = &parentID
		result = bulk
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, applied, nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, user_id, product_id, order_number, design_name, copies, status, payment_status,
       total_price, total_payable, courier_status, tracking_id, awb_code,
       packed_at, dispatched_at, delivered_at, pickup_scheduled_date, estimated_delivery_date,
       is_bulk_parent, is_bulk_child, parent_order_id, bulk_order_id, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o            model.Order
		totalPayable *float64
		courier      *string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.ProductID, &o.OrderNumber, &o.DesignName, &o.Copies, &o.Status, &o.PaymentStatus,
		&o.TotalPrice, &totalPayable, &courier, &o.TrackingID, &o.AWBCode,
		&o.PackedAt, &o.DispatchedAt, &o.DeliveredAt, &o.PickupScheduledDate, &o.EstimatedDeliveryDate,
		&o.IsBulkParent, &o.IsBulkChild, &o.ParentOrderID, &o.BulkOrderID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if totalPayable != nil {
		o.PriceSnapshot = &model.PriceSnapshot{TotalPayable: *totalPayable}
	}
	if courier != nil {
		o.CourierStatus = model.CourierStatus(*courier)
	}
	return &o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadDepartments(ctx, order); err != nil {
		return nil, err
	}
	if order.IsBulkParent {
		if err := r.loadChildren(ctx, order); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (r *orderRepository) loadDepartments(ctx context.Context, order *model.Order) error {
	const query = `SELECT department, status, started_at, completed_at
                   FROM order_departments WHERE order_id=$1 ORDER BY position`
	rows, err := r.storage.pool.Query(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d model.DepartmentStatus
		if err := rows.Scan(&d.Department, &d.Status, &d.StartedAt, &d.CompletedAt); err != nil {
			return err
		}
		order.Departments = append(order.Departments, d)
	}
	return rows.Err()
}

func (r *orderRepository) loadChildren(ctx context.Context, order *model.Order) error {
	const query = `SELECT id FROM orders WHERE parent_order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var childID int64
		if err := rows.Scan(&childID); err != nil {
			return err
		}
		order.ChildOrders = append(order.ChildOrders, childID)
	}
	return rows.Err()
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + `
                   FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error {
	const query = `UPDATE orders SET payment_status=$1, updated_at=NOW() WHERE id=$2`
	tag, err := r.storage.pool.Exec(ctx, query, status, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// WithinTransaction executes fn inside a transaction, rolling back on error.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
