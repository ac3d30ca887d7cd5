package service

import (
	"context"

	"memo-service/internal/model"
)

// MemoService интерфейс слоя состояния/кэша заметок.
// Владеет единственной авторитетной копией коллекции заметок в памяти,
// активными фильтрами и оркестрацией всех мутаций через репозиторий
type MemoService interface {
	// Refresh перезагружает авторитетную коллекцию целиком из хранилища.
	// Ошибка чтения деградируется до пустого результата (fail-soft)
	Refresh(ctx context.Context)

	// Create создает новую заметку и добавляет её в начало коллекции.
	// При ошибке коллекция остается нетронутой, ошибка пробрасывается
	Create(ctx context.Context, form model.MemoForm) (model.Memo, error)

	// Update обновляет заметку с указанным ID данными формы.
	// Возвращает ErrMemoNotFound без обращения к хранилищу, если заметки
	// нет в авторитетной коллекции
	Update(ctx context.Context, id string, form model.MemoForm) (model.Memo, error)

	// Delete удаляет заметку по ID.
	// При ошибке коллекция остается нетронутой, ошибка пробрасывается
	Delete(ctx context.Context, id string) error

	// ClearAll удаляет все заметки и сбрасывает активные фильтры
	ClearAll(ctx context.Context) error

	// GetByID возвращает заметку из авторитетной коллекции без обращения
	// к хранилищу. Второе значение false, если заметка не найдена
	GetByID(id string) (model.Memo, bool)

	// Memos возвращает производное представление: коллекцию, отфильтрованную
	// по активной категории и поисковому запросу, с сохранением порядка
	Memos() []model.Memo

	// AllMemos возвращает копию полной авторитетной коллекции
	AllMemos() []model.Memo

	// SetSearchQuery устанавливает поисковый запрос (без сетевого вызова)
	SetSearchQuery(query string)

	// SetCategoryFilter устанавливает фильтр категории (без сетевого вызова)
	SetCategoryFilter(category string)

	// SearchQuery возвращает текущий поисковый запрос
	SearchQuery() string

	// SelectedCategory возвращает текущий фильтр категории
	SelectedCategory() string

	// Loading возвращает true во время загрузки коллекции из хранилища
	Loading() bool

	// Stats возвращает статистику, пересчитанную от текущего состояния
	Stats() model.Stats
}
