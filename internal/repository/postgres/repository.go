package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"memo-service/internal/model"
	"memo-service/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Столбцы таблицы memos в порядке сканирования
const memoColumns = "id, title, content, category, tags, created_at, updated_at"

// schema создает таблицу заметок, если её ещё нет.
// ID и created_at назначаются хранилищем (gen_random_uuid / now)
const schema = `
CREATE TABLE IF NOT EXISTS memos (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	category   TEXT NOT NULL,
	tags       TEXT[],
	created_at TIMESTAMPTZ DEFAULT now(),
	updated_at TIMESTAMPTZ DEFAULT now()
);`

var _ repository.MemoRepository = (*repo)(nil)

type repo struct {
	pool *pgxpool.Pool
}

// NewRepository создает репозиторий заметок поверх PostgreSQL (pgx pool).
// Проверяет соединение и создает схему при старте
func NewRepository(ctx context.Context, dsn string) (repository.MemoRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	// gen_random_uuid требует pgcrypto на версиях до PostgreSQL 13
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS pgcrypto"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create extension pgcrypto: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table memos: %w", err)
	}

	return &repo{pool: pool}, nil
}

// rowToMemo преобразует строку таблицы в доменную модель.
// Контракт трансформации: NULL tags → пустой слайс, NULL временные метки →
// текущий момент (защитный дефолт, в нормальной работе не ожидается)
func rowToMemo(id, title, content, category string, tags []string, createdAt, updatedAt *time.Time) model.Memo {
	if tags == nil {
		tags = []string{}
	}

	now := time.Now()
	created := now
	if createdAt != nil {
		created = *createdAt
	}
	updated := now
	if updatedAt != nil {
		updated = *updatedAt
	}

	return model.Memo{
		ID:        id,
		Title:     title,
		Content:   content,
		Category:  model.Category(category),
		Tags:      tags,
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

// scanMemo сканирует одну строку результата в доменную модель
func scanMemo(row pgx.Row) (model.Memo, error) {
	var (
		id, title, content, category string
		tags                         []string
		createdAt, updatedAt         *time.Time
	)

	if err := row.Scan(&id, &title, &content, &category, &tags, &createdAt, &updatedAt); err != nil {
		return model.Memo{}, err
	}

	return rowToMemo(id, title, content, category, tags, createdAt, updatedAt), nil
}

// collectMemos сканирует все строки результата в слайс доменных моделей
func collectMemos(rows pgx.Rows) ([]model.Memo, error) {
	defer rows.Close()

	var memos []model.Memo
	for rows.Next() {
		memo, err := scanMemo(rows)
		if err != nil {
			return nil, err
		}
		memos = append(memos, memo)
	}

	return memos, rows.Err()
}

// FetchAll возвращает все заметки, отсортированные по дате создания (убывание)
func (r *repo) FetchAll(ctx context.Context) ([]model.Memo, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+memoColumns+" FROM memos ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("select memos: %w", err)
	}

	return collectMemos(rows)
}

// Insert создает новую заметку и возвращает назначенную хранилищем запись.
// ID и обе временные метки генерируются на стороне базы в одном операторе,
// поэтому в момент создания created_at == updated_at
func (r *repo) Insert(ctx context.Context, form model.MemoForm) (model.Memo, error) {
	row := r.pool.QueryRow(ctx,
		"INSERT INTO memos (title, content, category, tags) VALUES ($1, $2, $3, $4) RETURNING "+memoColumns,
		form.Title, form.Content, form.Category.String(), form.Tags)

	memo, err := scanMemo(row)
	if err != nil {
		return model.Memo{}, fmt.Errorf("insert memo: %w", err)
	}

	return memo, nil
}

// Update обновляет заметку по ID и возвращает подтвержденную хранилищем запись
func (r *repo) Update(ctx context.Context, memo model.Memo) (model.Memo, error) {
	row := r.pool.QueryRow(ctx,
		"UPDATE memos SET title = $2, content = $3, category = $4, tags = $5, updated_at = $6 WHERE id = $1 RETURNING "+memoColumns,
		memo.ID, memo.Title, memo.Content, memo.Category.String(), memo.Tags, memo.UpdatedAt)

	updated, err := scanMemo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Memo{}, repository.ErrMemoNotFound
		}
		return model.Memo{}, fmt.Errorf("update memo: %w", err)
	}

	return updated, nil
}

// Delete удаляет заметку по ID. Несуществующий ID — успешный no-op
func (r *repo) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM memos WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete memo: %w", err)
	}
	return nil
}

// DeleteAll удаляет все заметки
func (r *repo) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM memos"); err != nil {
		return fmt.Errorf("delete all memos: %w", err)
	}
	return nil
}

// FindByID возвращает заметку по её ID
func (r *repo) FindByID(ctx context.Context, id string) (model.Memo, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE id = $1", id)

	memo, err := scanMemo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Memo{}, repository.ErrMemoNotFound
		}
		return model.Memo{}, fmt.Errorf("select memo by id: %w", err)
	}

	return memo, nil
}

// Search возвращает заметки, содержащие подстроку query в заголовке или
// содержании (ILIKE, без учета регистра)
func (r *repo) Search(ctx context.Context, query string) ([]model.Memo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.FetchAll(ctx)
	}

	rows, err := r.pool.Query(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE title ILIKE '%' || $1 || '%' OR content ILIKE '%' || $1 || '%' ORDER BY created_at DESC",
		query)
	if err != nil {
		return nil, fmt.Errorf("search memos: %w", err)
	}

	return collectMemos(rows)
}

// ListByCategory возвращает заметки указанной категории
func (r *repo) ListByCategory(ctx context.Context, category model.Category) ([]model.Memo, error) {
	if category.String() == model.CategoryAll {
		return r.FetchAll(ctx)
	}

	rows, err := r.pool.Query(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE category = $1 ORDER BY created_at DESC",
		category.String())
	if err != nil {
		return nil, fmt.Errorf("select memos by category: %w", err)
	}

	return collectMemos(rows)
}

// Close закрывает пул соединений
func (r *repo) Close() error {
	r.pool.Close()
	return nil
}
