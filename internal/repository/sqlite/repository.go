package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"memo-service/internal/model"
	"memo-service/internal/repository"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Столбцы таблицы memos в порядке сканирования
const memoColumns = "id, title, content, category, tags, created_at, updated_at"

// timeLayout формат хранения временных меток: RFC3339 с фиксированной
// шириной дробной части, чтобы лексикографический ORDER BY совпадал
// с хронологическим порядком
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// schema создает таблицу заметок, если её ещё нет.
// Теги хранятся как JSON-массив, временные метки — как RFC3339 (UTC)
const schema = `
CREATE TABLE IF NOT EXISTS memos (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	category   TEXT NOT NULL,
	tags       TEXT,
	created_at TEXT,
	updated_at TEXT
);`

var _ repository.MemoRepository = (*repo)(nil)

type repo struct {
	db *sql.DB
}

// NewRepository создает репозиторий заметок поверх SQLite (modernc, без cgo).
// Проверяет соединение и создает схему при старте
func NewRepository(path string) (repository.MemoRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table memos: %w", err)
	}

	return &repo{db: db}, nil
}

// encodeTags сериализует теги в JSON для хранения
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	return string(raw), nil
}

// rowToMemo преобразует строку таблицы в доменную модель.
// Контракт трансформации: NULL tags → пустой слайс, NULL/некорректные
// временные метки → текущий момент (защитный дефолт)
func rowToMemo(id, title, content, category string, tags, createdAt, updatedAt sql.NullString) (model.Memo, error) {
	decoded := []string{}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &decoded); err != nil {
			return model.Memo{}, fmt.Errorf("unmarshal tags: %w", err)
		}
	}

	parseTime := func(v sql.NullString) time.Time {
		if !v.Valid {
			return time.Now()
		}
		t, err := time.Parse(time.RFC3339Nano, v.String)
		if err != nil {
			return time.Now()
		}
		return t
	}

	return model.Memo{
		ID:        id,
		Title:     title,
		Content:   content,
		Category:  model.Category(category),
		Tags:      decoded,
		CreatedAt: parseTime(createdAt),
		UpdatedAt: parseTime(updatedAt),
	}, nil
}

// scanMemo сканирует одну строку результата в доменную модель
func scanMemo(row interface{ Scan(...any) error }) (model.Memo, error) {
	var (
		id, title, content, category string
		tags, createdAt, updatedAt   sql.NullString
	)

	if err := row.Scan(&id, &title, &content, &category, &tags, &createdAt, &updatedAt); err != nil {
		return model.Memo{}, err
	}

	return rowToMemo(id, title, content, category, tags, createdAt, updatedAt)
}

// queryMemos выполняет запрос и сканирует все строки в слайс доменных моделей
func (r *repo) queryMemos(ctx context.Context, query string, args ...any) ([]model.Memo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
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

// FetchAll возвращает все заметки, отсортированные по дате создания (убывание).
// rowid используется как вторичный ключ для стабильного порядка при равных метках
func (r *repo) FetchAll(ctx context.Context) ([]model.Memo, error) {
	memos, err := r.queryMemos(ctx,
		"SELECT "+memoColumns+" FROM memos ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("select memos: %w", err)
	}
	return memos, nil
}

// Insert создает новую заметку и возвращает назначенную хранилищем запись.
// В момент создания created_at == updated_at
func (r *repo) Insert(ctx context.Context, form model.MemoForm) (model.Memo, error) {
	tags, err := encodeTags(form.Tags)
	if err != nil {
		return model.Memo{}, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	stamp := now.Format(timeLayout)

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO memos ("+memoColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, form.Title, form.Content, form.Category.String(), tags, stamp, stamp)
	if err != nil {
		return model.Memo{}, fmt.Errorf("insert memo: %w", err)
	}

	return model.Memo{
		ID:        id,
		Title:     form.Title,
		Content:   form.Content,
		Category:  form.Category,
		Tags:      append([]string{}, form.Tags...),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update обновляет заметку по ID и возвращает подтвержденную хранилищем запись
func (r *repo) Update(ctx context.Context, memo model.Memo) (model.Memo, error) {
	tags, err := encodeTags(memo.Tags)
	if err != nil {
		return model.Memo{}, err
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE memos SET title = ?, content = ?, category = ?, tags = ?, updated_at = ? WHERE id = ?",
		memo.Title, memo.Content, memo.Category.String(), tags,
		memo.UpdatedAt.UTC().Format(timeLayout), memo.ID)
	if err != nil {
		return model.Memo{}, fmt.Errorf("update memo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return model.Memo{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return model.Memo{}, repository.ErrMemoNotFound
	}

	// Перечитываем запись, чтобы вернуть подтвержденное хранилищем состояние
	return r.FindByID(ctx, memo.ID)
}

// Delete удаляет заметку по ID. Несуществующий ID — успешный no-op
func (r *repo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM memos WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete memo: %w", err)
	}
	return nil
}

// DeleteAll удаляет все заметки
func (r *repo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM memos"); err != nil {
		return fmt.Errorf("delete all memos: %w", err)
	}
	return nil
}

// FindByID возвращает заметку по её ID
func (r *repo) FindByID(ctx context.Context, id string) (model.Memo, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE id = ?", id)

	memo, err := scanMemo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Memo{}, repository.ErrMemoNotFound
		}
		return model.Memo{}, fmt.Errorf("select memo by id: %w", err)
	}

	return memo, nil
}

// Search возвращает заметки, содержащие подстроку query в заголовке или
// содержании (без учета регистра)
func (r *repo) Search(ctx context.Context, query string) ([]model.Memo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.FetchAll(ctx)
	}

	pattern := "%" + strings.ToLower(query) + "%"
	memos, err := r.queryMemos(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE lower(title) LIKE ? OR lower(content) LIKE ? ORDER BY created_at DESC, rowid DESC",
		pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search memos: %w", err)
	}
	return memos, nil
}

// ListByCategory возвращает заметки указанной категории
func (r *repo) ListByCategory(ctx context.Context, category model.Category) ([]model.Memo, error) {
	if category.String() == model.CategoryAll {
		return r.FetchAll(ctx)
	}

	memos, err := r.queryMemos(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE category = ? ORDER BY created_at DESC, rowid DESC",
		category.String())
	if err != nil {
		return nil, fmt.Errorf("select memos by category: %w", err)
	}
	return memos, nil
}

// Close закрывает соединение с базой
func (r *repo) Close() error {
	return r.db.Close()
}
