package memos

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"memo-service/internal/model"
	"memo-service/internal/repository"
)

// mockRepository - простой mock репозитория для тестирования.
// Хранит заметки в порядке "новые первыми", как контрактный FetchAll
type mockRepository struct {
	memos []model.Memo

	fetchError     error
	insertError    error
	updateError    error
	deleteError    error
	deleteAllError error

	fetchCalls  int
	insertCalls int
	updateCalls int
	deleteCalls int
}

var _ repository.MemoRepository = (*mockRepository)(nil)

func newMockRepository() *mockRepository {
	return &mockRepository{}
}

var mockIDSeq int

func nextMockID() string {
	mockIDSeq++
	return "mock-id-" + strconv.Itoa(mockIDSeq)
}

func (m *mockRepository) FetchAll(ctx context.Context) ([]model.Memo, error) {
	m.fetchCalls++
	if m.fetchError != nil {
		return nil, m.fetchError
	}
	memos := make([]model.Memo, len(m.memos))
	copy(memos, m.memos)
	return memos, nil
}

func (m *mockRepository) Insert(ctx context.Context, form model.MemoForm) (model.Memo, error) {
	m.insertCalls++
	if m.insertError != nil {
		return model.Memo{}, m.insertError
	}
	now := time.Now()
	memo := model.Memo{
		ID:        nextMockID(),
		Title:     form.Title,
		Content:   form.Content,
		Category:  form.Category,
		Tags:      form.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.memos = append([]model.Memo{memo}, m.memos...)
	return memo, nil
}

func (m *mockRepository) Update(ctx context.Context, memo model.Memo) (model.Memo, error) {
	m.updateCalls++
	if m.updateError != nil {
		return model.Memo{}, m.updateError
	}
	for i := range m.memos {
		if m.memos[i].ID == memo.ID {
			memo.CreatedAt = m.memos[i].CreatedAt
			m.memos[i] = memo
			return memo, nil
		}
	}
	return model.Memo{}, repository.ErrMemoNotFound
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	if m.deleteError != nil {
		return m.deleteError
	}
	for i := range m.memos {
		if m.memos[i].ID == id {
			m.memos = append(m.memos[:i], m.memos[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockRepository) DeleteAll(ctx context.Context) error {
	if m.deleteAllError != nil {
		return m.deleteAllError
	}
	m.memos = nil
	return nil
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (model.Memo, error) {
	for _, memo := range m.memos {
		if memo.ID == id {
			return memo, nil
		}
	}
	return model.Memo{}, repository.ErrMemoNotFound
}

func (m *mockRepository) Search(ctx context.Context, query string) ([]model.Memo, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return m.FetchAll(ctx)
	}
	var memos []model.Memo
	for _, memo := range m.memos {
		if strings.Contains(strings.ToLower(memo.Title), query) ||
			strings.Contains(strings.ToLower(memo.Content), query) {
			memos = append(memos, memo)
		}
	}
	return memos, nil
}

func (m *mockRepository) ListByCategory(ctx context.Context, category model.Category) ([]model.Memo, error) {
	if category.String() == model.CategoryAll {
		return m.FetchAll(ctx)
	}
	var memos []model.Memo
	for _, memo := range m.memos {
		if memo.Category == category {
			memos = append(memos, memo)
		}
	}
	return memos, nil
}

// newTestService создает слой состояния поверх mock репозитория
func newTestService(t *testing.T, mockRepo *mockRepository) *service {
	t.Helper()
	return NewMemoService(context.Background(), mockRepo).(*service)
}

func mustCreate(t *testing.T, s *service, title, content string, category model.Category, tags ...string) model.Memo {
	t.Helper()
	memo, err := s.Create(context.Background(), model.MemoForm{
		Title:    title,
		Content:  content,
		Category: category,
		Tags:     tags,
	})
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", title, err)
	}
	return memo
}

func TestMemoService_InitialRefresh(t *testing.T) {
	mockRepo := newMockRepository()
	mockRepo.memos = []model.Memo{
		{ID: "b", Title: "Second", Content: "b", Category: model.CategoryWork},
		{ID: "a", Title: "First", Content: "a", Category: model.CategoryPersonal},
	}

	s := newTestService(t, mockRepo)

	if mockRepo.fetchCalls != 1 {
		t.Errorf("Expected one fetch on initialization, got %d", mockRepo.fetchCalls)
	}
	if s.Loading() {
		t.Error("Expected loading=false after initial refresh")
	}

	memos := s.AllMemos()
	if len(memos) != 2 {
		t.Fatalf("Expected 2 memos, got %d", len(memos))
	}
	// Порядок хранилища (новые первыми) сохраняется как есть
	if memos[0].ID != "b" || memos[1].ID != "a" {
		t.Errorf("Expected store order preserved, got %q, %q", memos[0].ID, memos[1].ID)
	}
}

func TestMemoService_Refresh_FailSoft(t *testing.T) {
	mockRepo := newMockRepository()
	mockRepo.memos = []model.Memo{{ID: "a", Title: "Keep", Content: "x"}}

	s := newTestService(t, mockRepo)
	if len(s.AllMemos()) != 1 {
		t.Fatalf("Expected 1 memo after initial refresh")
	}

	// Ошибка списочного чтения деградируется до пустого результата,
	// а не пробрасывается наружу
	mockRepo.fetchError = errors.New("store unavailable")
	s.Refresh(context.Background())

	if len(s.AllMemos()) != 0 {
		t.Errorf("Expected empty collection after failed refresh, got %d", len(s.AllMemos()))
	}
	if s.Loading() {
		t.Error("Expected loading=false after failed refresh")
	}

	// Восстановление: следующий успешный refresh заменяет коллекцию целиком
	mockRepo.fetchError = nil
	mockRepo.memos = []model.Memo{{ID: "b", Title: "Back", Content: "y"}}
	s.Refresh(context.Background())

	if len(s.AllMemos()) != 1 {
		t.Errorf("Expected 1 memo after recovery, got %d", len(s.AllMemos()))
	}
}

func TestMemoService_Create_Success(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	mustCreate(t, s, "Old", "old content", model.CategoryWork)
	created := mustCreate(t, s, "Groceries", "milk, eggs", model.CategoryPersonal, "home")

	if created.ID == "" {
		t.Error("Expected store-assigned ID")
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("Expected createdAt == updatedAt at creation, got %v and %v",
			created.CreatedAt, created.UpdatedAt)
	}

	// Новая заметка добавляется в начало коллекции
	memos := s.AllMemos()
	if len(memos) != 2 {
		t.Fatalf("Expected 2 memos, got %d", len(memos))
	}
	if memos[0].ID != created.ID {
		t.Errorf("Expected created memo to be prepended, got %q first", memos[0].Title)
	}

	// Round-trip: GetByID возвращает отправленные поля формы
	got, ok := s.GetByID(created.ID)
	if !ok {
		t.Fatal("Expected created memo to be found by ID")
	}
	if got.Title != "Groceries" || got.Content != "milk, eggs" {
		t.Errorf("Round-trip mismatch: got title %q, content %q", got.Title, got.Content)
	}
	if got.Category != model.CategoryPersonal {
		t.Errorf("Round-trip mismatch: got category %q", got.Category)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "home" {
		t.Errorf("Round-trip mismatch: got tags %v", got.Tags)
	}
}

func TestMemoService_Create_ValidationError(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	_, err := s.Create(context.Background(), model.MemoForm{Title: "  ", Content: "body"})
	if err == nil {
		t.Fatal("Expected validation error for empty title")
	}
	if mockRepo.insertCalls != 0 {
		t.Errorf("Expected no store call on validation failure, got %d", mockRepo.insertCalls)
	}
	if len(s.AllMemos()) != 0 {
		t.Error("Expected collection untouched after validation failure")
	}
}

func TestMemoService_Create_StoreError(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)
	mustCreate(t, s, "Existing", "x", model.CategoryOther)

	// Оптимистичной вставки нет: при отказе хранилища коллекция нетронута
	mockRepo.insertError = errors.New("constraint violation")
	_, err := s.Create(context.Background(), model.MemoForm{Title: "New", Content: "y"})
	if err == nil {
		t.Fatal("Expected propagated store error")
	}
	if len(s.AllMemos()) != 1 {
		t.Errorf("Expected collection untouched, got %d memos", len(s.AllMemos()))
	}
}

func TestMemoService_Update_Success(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	mustCreate(t, s, "Other", "other", model.CategoryWork)
	draft := mustCreate(t, s, "Draft", "draft content", model.CategoryWork, "wip")

	time.Sleep(5 * time.Millisecond)

	updated, err := s.Update(context.Background(), draft.ID, model.MemoForm{
		Title:    "Final",
		Content:  draft.Content,
		Category: draft.Category,
		Tags:     draft.Tags,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Title != "Final" {
		t.Errorf("Expected title %q, got %q", "Final", updated.Title)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("Expected updatedAt > createdAt, got %v and %v",
			updated.UpdatedAt, updated.CreatedAt)
	}

	// Запись заменяется на месте, порядок не меняется
	memos := s.AllMemos()
	if len(memos) != 2 {
		t.Fatalf("Expected 2 memos, got %d", len(memos))
	}
	if memos[0].ID != draft.ID || memos[0].Title != "Final" {
		t.Errorf("Expected in-place replacement at position 0, got %q (%q)",
			memos[0].ID, memos[0].Title)
	}
}

func TestMemoService_Update_NotFound(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)
	mustCreate(t, s, "Existing", "x", model.CategoryOther)

	// Локальное предусловие: заметки нет в коллекции, хранилище не вызывается
	_, err := s.Update(context.Background(), "nonexistent-id", model.MemoForm{
		Title:   "Anything",
		Content: "anything",
	})
	if !errors.Is(err, repository.ErrMemoNotFound) {
		t.Fatalf("Expected ErrMemoNotFound, got: %v", err)
	}
	if mockRepo.updateCalls != 0 {
		t.Errorf("Expected no store call for unknown id, got %d", mockRepo.updateCalls)
	}
	if len(s.AllMemos()) != 1 {
		t.Error("Expected collection untouched")
	}
}

func TestMemoService_Update_StoreError(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)
	memo := mustCreate(t, s, "Draft", "draft", model.CategoryWork)

	mockRepo.updateError = errors.New("store rejected write")
	_, err := s.Update(context.Background(), memo.ID, model.MemoForm{
		Title:   "Final",
		Content: "final",
	})
	if err == nil {
		t.Fatal("Expected propagated store error")
	}

	got, ok := s.GetByID(memo.ID)
	if !ok || got.Title != "Draft" {
		t.Errorf("Expected collection untouched after failed update, got title %q", got.Title)
	}
}

func TestMemoService_Delete_Success(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	keep := mustCreate(t, s, "Keep", "k", model.CategoryWork)
	gone := mustCreate(t, s, "Gone", "g", model.CategoryWork)

	if err := s.Delete(context.Background(), gone.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	memos := s.AllMemos()
	if len(memos) != 1 || memos[0].ID != keep.ID {
		t.Errorf("Expected only %q to remain, got %d memos", keep.Title, len(memos))
	}
	if _, ok := s.GetByID(gone.ID); ok {
		t.Error("Expected deleted memo to be absent from the collection")
	}
}

func TestMemoService_Delete_StoreError(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)
	memo := mustCreate(t, s, "Keep", "k", model.CategoryWork)

	// Оптимистичного удаления нет: при отказе хранилища запись остается
	mockRepo.deleteError = errors.New("store rejected delete")
	if err := s.Delete(context.Background(), memo.ID); err == nil {
		t.Fatal("Expected propagated store error")
	}
	if _, ok := s.GetByID(memo.ID); !ok {
		t.Error("Expected collection untouched after failed delete")
	}
}

func TestMemoService_ClearAll(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	mustCreate(t, s, "One", "1", model.CategoryWork)
	mustCreate(t, s, "Two", "2", model.CategoryPersonal)
	s.SetSearchQuery("one")
	s.SetCategoryFilter("work")

	if err := s.ClearAll(context.Background()); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	stats := s.Stats()
	if stats.Total != 0 {
		t.Errorf("Expected stats.Total == 0, got %d", stats.Total)
	}
	if s.SearchQuery() != "" {
		t.Errorf("Expected search query reset, got %q", s.SearchQuery())
	}
	if s.SelectedCategory() != model.CategoryAll {
		t.Errorf("Expected category filter reset to %q, got %q",
			model.CategoryAll, s.SelectedCategory())
	}
}

func TestMemoService_ClearAll_StoreError(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	mustCreate(t, s, "One", "1", model.CategoryWork)
	s.SetSearchQuery("one")
	s.SetCategoryFilter("work")

	mockRepo.deleteAllError = errors.New("store rejected clear")
	if err := s.ClearAll(context.Background()); err == nil {
		t.Fatal("Expected propagated store error")
	}

	// Состояние полностью нетронуто, включая фильтры
	if len(s.AllMemos()) != 1 {
		t.Error("Expected collection untouched after failed clear")
	}
	if s.SearchQuery() != "one" || s.SelectedCategory() != "work" {
		t.Errorf("Expected filters untouched, got query %q, category %q",
			s.SearchQuery(), s.SelectedCategory())
	}
}

func TestMemoService_FilteredView_Search(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	mustCreate(t, s, "Trip Plan", "flights and hotel", model.CategoryIdea, "travel")
	mustCreate(t, s, "Work Notes", "meeting agenda", model.CategoryWork)

	// Поиск без учета регистра по заголовку
	s.SetSearchQuery("trip")
	memos := s.Memos()
	if len(memos) != 1 || memos[0].Title != "Trip Plan" {
		t.Fatalf("Expected exactly %q, got %d memo(s)", "Trip Plan", len(memos))
	}

	// Поиск по содержанию
	s.SetSearchQuery("AGENDA")
	memos = s.Memos()
	if len(memos) != 1 || memos[0].Title != "Work Notes" {
		t.Fatalf("Expected match by content, got %d memo(s)", len(memos))
	}

	// Поиск по тегу
	s.SetSearchQuery("travel")
	memos = s.Memos()
	if len(memos) != 1 || memos[0].Title != "Trip Plan" {
		t.Fatalf("Expected match by tag, got %d memo(s)", len(memos))
	}
}

func TestMemoService_FilteredView_WhitespaceQuery(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	mustCreate(t, s, "One", "1", model.CategoryWork)
	mustCreate(t, s, "Two", "2", model.CategoryWork)

	s.SetSearchQuery("one")
	if len(s.Memos()) != 1 {
		t.Fatal("Expected single match for non-empty query")
	}

	// Запрос из одних пробелов эквивалентен пустому: остаточной
	// фильтрации не остается
	s.SetSearchQuery("   ")
	if len(s.Memos()) != 2 {
		t.Errorf("Expected full view for whitespace-only query, got %d", len(s.Memos()))
	}
}

func TestMemoService_FilteredView_Commutativity(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	mustCreate(t, s, "Budget Report", "quarterly budget", model.CategoryWork)
	mustCreate(t, s, "Budget Trip", "vacation budget", model.CategoryPersonal)
	mustCreate(t, s, "Meeting", "no money talk", model.CategoryWork)

	// Категория затем поиск
	s.SetCategoryFilter("work")
	s.SetSearchQuery("budget")
	first := s.Memos()

	// Сброс и обратный порядок установки фильтров
	s.SetCategoryFilter(model.CategoryAll)
	s.SetSearchQuery("")
	s.SetSearchQuery("budget")
	s.SetCategoryFilter("work")
	second := s.Memos()

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("Expected 1 memo from both orders, got %d and %d", len(first), len(second))
	}
	if first[0].ID != second[0].ID {
		t.Errorf("Expected identical result sets, got %q and %q", first[0].Title, second[0].Title)
	}
}

func TestMemoService_FilteredView_Idempotent(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	mustCreate(t, s, "Alpha", "a", model.CategoryWork)
	mustCreate(t, s, "Beta", "b", model.CategoryPersonal)
	s.SetSearchQuery("a")

	first := s.Memos()
	second := s.Memos()

	if len(first) != len(second) {
		t.Fatalf("Expected identical lengths, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("Expected identical element at %d, got %q and %q",
				i, first[i].ID, second[i].ID)
		}
	}
}

func TestMemoService_FilteredView_OrderPreserved(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	first := mustCreate(t, s, "Match One", "x", model.CategoryWork)
	mustCreate(t, s, "Other", "y", model.CategoryWork)
	last := mustCreate(t, s, "Match Two", "z", model.CategoryWork)

	s.SetSearchQuery("match")
	memos := s.Memos()

	// Результат — подпоследовательность исходного порядка (новые первыми)
	if len(memos) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(memos))
	}
	if memos[0].ID != last.ID || memos[1].ID != first.ID {
		t.Errorf("Expected order %q, %q; got %q, %q",
			last.Title, first.Title, memos[0].Title, memos[1].Title)
	}
}

func TestMemoService_Stats(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	mustCreate(t, s, "One", "1", model.CategoryWork)
	mustCreate(t, s, "Two", "2", model.CategoryWork)
	mustCreate(t, s, "Three", "3", model.CategoryPersonal)
	// Неизвестная категория принимается и учитывается как есть
	mustCreate(t, s, "Four", "4", model.Category("custom"))

	s.SetCategoryFilter("work")
	stats := s.Stats()

	if stats.Total != 4 {
		t.Errorf("Expected total 4, got %d", stats.Total)
	}
	if stats.Filtered != 2 {
		t.Errorf("Expected filtered 2, got %d", stats.Filtered)
	}
	if stats.ByCategory["work"] != 2 || stats.ByCategory["personal"] != 1 || stats.ByCategory["custom"] != 1 {
		t.Errorf("Unexpected byCategory: %v", stats.ByCategory)
	}
	if len(stats.ByCategory) != 3 {
		t.Errorf("Expected only observed categories as keys, got %v", stats.ByCategory)
	}
}

func TestMemoService_CollectionSizeInvariant(t *testing.T) {
	mockRepo := newMockRepository()
	s := newTestService(t, mockRepo)

	// Размер коллекции равен числу созданий минус число удалений,
	// независимо от чередования с изменениями фильтров
	a := mustCreate(t, s, "A", "a", model.CategoryWork)
	s.SetSearchQuery("zzz")
	b := mustCreate(t, s, "B", "b", model.CategoryPersonal)
	s.SetCategoryFilter("idea")
	mustCreate(t, s, "C", "c", model.CategoryIdea)

	if err := s.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	s.SetSearchQuery("")
	if err := s.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if got := s.Stats().Total; got != 1 {
		t.Errorf("Expected collection size 1 (3 creates - 2 deletes), got %d", got)
	}
}
