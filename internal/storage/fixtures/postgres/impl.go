// Package postgres предоставляет методы для работы с postgres хранилищем фикстур.
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kdv2001/apiMock/internal/domain"
)

// Storage хранилище фикстур. Безопасно для конкурентного использования.
type Storage struct {
	dbPool *pgxpool.Pool
}

// NewStorage создает объект хранилища.
func NewStorage(ctx context.Context, pool *pgxpool.Pool) (*Storage, error) {
	s := &Storage{
		dbPool: pool,
	}

	err := s.createTables(ctx)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) createTables(ctx context.Context) error {
	tx, err := s.dbPool.Begin(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, fixturesTable)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// Close закрывает все соединения пула.
func (s *Storage) Close() {
	s.dbPool.Close()
}

// Ping проверяет работоспособность хранилища.
func (s *Storage) Ping(ctx context.Context) error {
	return s.dbPool.Ping(ctx)
}

// Get возвращает фикстуру по пути относительно корня фикстур.
func (s *Storage) Get(ctx context.Context, path string) (domain.Fixture, error) {
	var (
		body      string
		updatedAt time.Time
	)
	err := s.dbPool.QueryRow(ctx,
		`select body, updated_at from fixtures where path = $1;`,
		normalize(path)).Scan(&body, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Fixture{}, domain.ErrNotFound
		}

		return domain.Fixture{}, classify(err)
	}

	return domain.Fixture{
		Path:      normalize(path),
		Body:      []byte(body),
		UpdatedAt: updatedAt,
	}, nil
}

// Put сохраняет фикстуру, перезаписывая существующую.
func (s *Storage) Put(ctx context.Context, f domain.Fixture) error {
	updatedAt := f.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := s.dbPool.Exec(ctx, `insert into fixtures (path, body, updated_at)
values ($1, $2, $3)
on conflict (path) do update set body = excluded.body, updated_at = excluded.updated_at;`,
		normalize(f.Path), string(f.Body), updatedAt)
	if err != nil {
		return classify(err)
	}

	return nil
}

// List возвращает пути всех фикстур в лексикографическом порядке.
func (s *Storage) List(ctx context.Context) ([]string, error) {
	rows, err := s.dbPool.Query(ctx, `select path from fixtures order by path;`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	res := make([]string, 0)
	for rows.Next() {
		var p string
		if err = rows.Scan(&p); err != nil {
			return nil, err
		}
		res = append(res, p)
	}

	return res, rows.Err()
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		(pgerrcode.IsInvalidTransactionInitiation(pgErr.Code) || pgErr.Code == pgerrcode.LockNotAvailable) {
		return domain.ErrResourceIsLocked
	}

	return err
}

func normalize(path string) string {
	return strings.TrimLeft(path, "/")
}
