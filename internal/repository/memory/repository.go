package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"memo-service/internal/model"
	"memo-service/internal/repository"

	"github.com/google/uuid"
)

var _ repository.MemoRepository = (*repo)(nil)

type repo struct {
	mu    sync.RWMutex
	memos map[string]model.Memo
	order []string // порядок вставки, новые в конце
}

// NewRepository создает новый экземпляр in-memory репозитория на основе map.
// Используется в тестах и в демо-режиме без внешнего хранилища
func NewRepository() repository.MemoRepository {
	return &repo{
		memos: make(map[string]model.Memo),
	}
}

// FetchAll возвращает все заметки, отсортированные по дате создания (убывание)
func (r *repo) FetchAll(ctx context.Context) ([]model.Memo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshot(), nil
}

// snapshot возвращает заметки в обратном порядке вставки (новые первыми).
// Вызывающий должен держать как минимум RLock
func (r *repo) snapshot() []model.Memo {
	memos := make([]model.Memo, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		memos = append(memos, r.memos[r.order[i]])
	}
	return memos
}

// Insert создает новую заметку из данных формы и возвращает полную запись
func (r *repo) Insert(ctx context.Context, form model.MemoForm) (model.Memo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Хранилище назначает ID и временные метки
	now := time.Now()
	memo := model.Memo{
		ID:        uuid.New().String(),
		Title:     form.Title,
		Content:   form.Content,
		Category:  form.Category,
		Tags:      form.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.memos[memo.ID] = memo
	r.order = append(r.order, memo.ID)

	return memo, nil
}

// Update обновляет существующую заметку и возвращает обновленную запись
func (r *repo) Update(ctx context.Context, memo model.Memo) (model.Memo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.memos[memo.ID]
	if !exists {
		return model.Memo{}, repository.ErrMemoNotFound
	}

	// CreatedAt неизменяем после создания
	memo.CreatedAt = existing.CreatedAt
	r.memos[memo.ID] = memo

	return memo, nil
}

// Delete удаляет заметку по ID. Несуществующий ID — no-op
func (r *repo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.memos[id]; !exists {
		return nil
	}

	delete(r.memos, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

// DeleteAll удаляет все заметки
func (r *repo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.memos = make(map[string]model.Memo)
	r.order = nil

	return nil
}

// FindByID возвращает заметку по её ID
func (r *repo) FindByID(ctx context.Context, id string) (model.Memo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	memo, exists := r.memos[id]
	if !exists {
		return model.Memo{}, repository.ErrMemoNotFound
	}

	return memo, nil
}

// Search возвращает заметки, содержащие подстроку query в заголовке или
// содержании (без учета регистра)
func (r *repo) Search(ctx context.Context, query string) ([]model.Memo, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return r.FetchAll(ctx)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var memos []model.Memo
	for _, memo := range r.snapshot() {
		if strings.Contains(strings.ToLower(memo.Title), query) ||
			strings.Contains(strings.ToLower(memo.Content), query) {
			memos = append(memos, memo)
		}
	}

	return memos, nil
}

// ListByCategory возвращает заметки указанной категории
func (r *repo) ListByCategory(ctx context.Context, category model.Category) ([]model.Memo, error) {
	if category.String() == model.CategoryAll {
		return r.FetchAll(ctx)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var memos []model.Memo
	for _, memo := range r.snapshot() {
		if memo.Category == category {
			memos = append(memos, memo)
		}
	}

	return memos, nil
}
