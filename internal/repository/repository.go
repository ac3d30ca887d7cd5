package repository

import (
	"context"
	"errors"

	"memo-service/internal/model"
)

// ErrMemoNotFound возвращается, когда заметка не найдена в хранилище
var ErrMemoNotFound = errors.New("memo not found")

// MemoRepository интерфейс адаптера хранилища заметок.
// Единственная граница с механизмом персистентности: никакой другой
// компонент не выполняет сетевых операций
type MemoRepository interface {
	// FetchAll возвращает все заметки, отсортированные по дате создания (убывание)
	FetchAll(ctx context.Context) ([]model.Memo, error)

	// Insert создает новую заметку из данных формы и возвращает полную запись
	// с назначенными хранилищем ID и временными метками
	Insert(ctx context.Context, form model.MemoForm) (model.Memo, error)

	// Update обновляет заметку по её ID и возвращает подтвержденную хранилищем
	// запись. Возвращает ErrMemoNotFound, если заметка не существует
	Update(ctx context.Context, memo model.Memo) (model.Memo, error)

	// Delete удаляет заметку по ID. Удаление несуществующего ID считается
	// успешным no-op и отдельно не детектируется
	Delete(ctx context.Context, id string) error

	// DeleteAll удаляет все заметки. Явная именованная операция очистки
	// вместо "удаления по широкому предикату"
	DeleteAll(ctx context.Context) error

	// FindByID возвращает заметку по её ID.
	// Возвращает ErrMemoNotFound, если строк не найдено
	FindByID(ctx context.Context, id string) (model.Memo, error)

	// Search возвращает заметки, содержащие подстроку query в заголовке или
	// содержании (без учета регистра). Пустой query эквивалентен FetchAll
	Search(ctx context.Context, query string) ([]model.Memo, error)

	// ListByCategory возвращает заметки указанной категории.
	// Сентинел "all" эквивалентен FetchAll
	ListByCategory(ctx context.Context, category model.Category) ([]model.Memo, error)
}
