package memos

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"memo-service/internal/model"
	"memo-service/internal/repository"
	svc "memo-service/internal/service"
)

var _ svc.MemoService = (*service)(nil)

// service слой состояния/кэша заметок. Единственный владелец авторитетной
// коллекции: все производные представления вычисляются от неё при каждом
// чтении, все мутации проходят через репозиторий до изменения состояния
type service struct {
	memoRepository repository.MemoRepository

	mu               sync.RWMutex
	memos            []model.Memo // авторитетная коллекция, новые первыми
	loading          bool
	searchQuery      string
	selectedCategory string
}

// NewMemoService создает новый экземпляр слоя состояния/кэша поверх
// репозитория и сразу выполняет первоначальную загрузку коллекции.
// Предполагается один экземпляр на время жизни приложения
func NewMemoService(ctx context.Context, memoRepository repository.MemoRepository) svc.MemoService {
	s := &service{
		memoRepository:   memoRepository,
		selectedCategory: model.CategoryAll,
	}

	s.Refresh(ctx)

	return s
}

// Refresh перезагружает авторитетную коллекцию целиком из хранилища.
// Ошибка чтения деградируется до пустой коллекции с логированием (fail-soft):
// UI видит "нет заметок" вместо жесткой ошибки
func (s *service) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	memos, err := s.memoRepository.FetchAll(ctx)
	if err != nil {
		log.Printf("Error loading memos from store: %v", err)
		memos = nil
	}

	s.mu.Lock()
	s.memos = memos
	s.loading = false
	s.mu.Unlock()
}

// Create создает новую заметку через репозиторий и добавляет подтвержденную
// хранилищем запись в начало коллекции. Оптимистичной вставки нет: при
// ошибке коллекция остается нетронутой
func (s *service) Create(ctx context.Context, form model.MemoForm) (model.Memo, error) {
	if err := form.Validate(); err != nil {
		return model.Memo{}, err
	}

	created, err := s.memoRepository.Insert(ctx, form)
	if err != nil {
		return model.Memo{}, err
	}

	s.mu.Lock()
	// Новые заметки добавляются в начало: порядок по убыванию даты создания
	// сохраняется в предположении, что вставки — самые новые записи
	s.memos = append([]model.Memo{created}, s.memos...)
	s.mu.Unlock()

	return created, nil
}

// Update обновляет заметку с указанным ID данными формы.
// Предусловие проверяется локально: если заметки нет в авторитетной
// коллекции, возвращается ErrMemoNotFound без обращения к хранилищу
func (s *service) Update(ctx context.Context, id string, form model.MemoForm) (model.Memo, error) {
	if err := form.Validate(); err != nil {
		return model.Memo{}, err
	}

	existing, ok := s.GetByID(id)
	if !ok {
		return model.Memo{}, repository.ErrMemoNotFound
	}

	// Объединяем существующую запись с полями формы, метка обновления —
	// клиентские часы в момент выдачи команды
	merged := form.Apply(existing)
	merged.UpdatedAt = time.Now()

	updated, err := s.memoRepository.Update(ctx, merged)
	if err != nil {
		return model.Memo{}, err
	}

	s.mu.Lock()
	// Замена на месте без изменения порядка
	for i := range s.memos {
		if s.memos[i].ID == id {
			s.memos[i] = updated
			break
		}
	}
	s.mu.Unlock()

	return updated, nil
}

// Delete удаляет заметку по ID. Удаление из коллекции происходит только
// после подтверждения хранилищем (оптимистичного удаления нет)
func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.memoRepository.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.memos {
		if s.memos[i].ID == id {
			s.memos = append(s.memos[:i], s.memos[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	return nil
}

// ClearAll удаляет все заметки и сбрасывает активные фильтры
func (s *service) ClearAll(ctx context.Context) error {
	if err := s.memoRepository.DeleteAll(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.memos = nil
	s.searchQuery = ""
	s.selectedCategory = model.CategoryAll
	s.mu.Unlock()

	return nil
}

// GetByID возвращает заметку из авторитетной коллекции без обращения к хранилищу
func (s *service) GetByID(id string) (model.Memo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, memo := range s.memos {
		if memo.ID == id {
			return memo, true
		}
	}

	return model.Memo{}, false
}

// Memos возвращает производное представление текущего состояния:
// коллекцию, отфильтрованную по категории и поисковому запросу.
// Чистая функция от (коллекция, searchQuery, selectedCategory),
// пересчитывается при каждом вызове и нигде не сохраняется
func (s *service) Memos() []model.Memo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filtered()
}

// filtered вычисляет отфильтрованное представление.
// Вызывающий должен держать как минимум RLock
func (s *service) filtered() []model.Memo {
	memos := s.memos

	// Фильтрация по категории
	if s.selectedCategory != model.CategoryAll {
		var byCategory []model.Memo
		for _, memo := range memos {
			if memo.Category.String() == s.selectedCategory {
				byCategory = append(byCategory, memo)
			}
		}
		memos = byCategory
	}

	// Фильтрация по поисковому запросу: подстрока без учета регистра
	// в заголовке, содержании или любом из тегов
	query := strings.ToLower(strings.TrimSpace(s.searchQuery))
	if query != "" {
		var matched []model.Memo
		for _, memo := range memos {
			if memo.Matches(query) {
				matched = append(matched, memo)
			}
		}
		memos = matched
	}

	// Порядок — отфильтрованная подпоследовательность исходного порядка
	result := make([]model.Memo, len(memos))
	copy(result, memos)

	return result
}

// AllMemos возвращает копию полной авторитетной коллекции
func (s *service) AllMemos() []model.Memo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	memos := make([]model.Memo, len(s.memos))
	copy(memos, s.memos)

	return memos
}

// SetSearchQuery устанавливает поисковый запрос.
// Чисто локальная операция: сетевого вызова нет, производное представление
// меняется немедленно
func (s *service) SetSearchQuery(query string) {
	s.mu.Lock()
	s.searchQuery = query
	s.mu.Unlock()
}

// SetCategoryFilter устанавливает фильтр категории (без сетевого вызова)
func (s *service) SetCategoryFilter(category string) {
	s.mu.Lock()
	s.selectedCategory = category
	s.mu.Unlock()
}

// SearchQuery возвращает текущий поисковый запрос
func (s *service) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.searchQuery
}

// SelectedCategory возвращает текущий фильтр категории
func (s *service) SelectedCategory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selectedCategory
}

// Loading возвращает true во время загрузки коллекции из хранилища
func (s *service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loading
}

// Stats возвращает статистику, пересчитанную от текущего состояния при
// каждом вызове: общее количество, количество по категориям и размер
// отфильтрованного представления
func (s *service) Stats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byCategory := make(map[string]int)
	for _, memo := range s.memos {
		byCategory[memo.Category.String()]++
	}

	return model.Stats{
		Total:      len(s.memos),
		ByCategory: byCategory,
		Filtered:   len(s.filtered()),
	}
}
