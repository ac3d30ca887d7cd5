package model

import (
	"errors"
	"strings"
	"time"
)

// Category категория заметки. Тип открытый: известные категории заданы
// константами, но любое другое значение принимается и отображается как есть
type Category string

// Известные категории заметок
const (
	CategoryPersonal Category = "personal"
	CategoryWork     Category = "work"
	CategoryStudy    Category = "study"
	CategoryIdea     Category = "idea"
	CategoryOther    Category = "other"
)

// CategoryAll сентинел фильтра категорий: "показывать все категории"
const CategoryAll = "all"

// KnownCategories возвращает список известных категорий в порядке отображения
func KnownCategories() []Category {
	return []Category{
		CategoryPersonal,
		CategoryWork,
		CategoryStudy,
		CategoryIdea,
		CategoryOther,
	}
}

// Known проверяет, входит ли категория в закрытое множество известных
func (c Category) Known() bool {
	switch c {
	case CategoryPersonal, CategoryWork, CategoryStudy, CategoryIdea, CategoryOther:
		return true
	}
	return false
}

// String возвращает строковое представление категории
func (c Category) String() string {
	return string(c)
}

// Memo представляет заметку (доменная модель)
type Memo struct {
	ID        string    // UUID заметки, назначается хранилищем
	Title     string    // Заголовок заметки
	Content   string    // Содержание заметки (может содержать markdown)
	Category  Category  // Категория заметки
	Tags      []string  // Теги заметки (порядок сохраняется, дубликаты допустимы)
	CreatedAt time.Time // Дата создания, назначается хранилищем
	UpdatedAt time.Time // Дата последнего обновления
}

// MemoForm данные формы создания/редактирования заметки
type MemoForm struct {
	Title    string
	Content  string
	Category Category
	Tags     []string
}

// Validate проверяет валидность данных формы
func (f *MemoForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return errors.New("title cannot be empty")
	}
	if strings.TrimSpace(f.Content) == "" {
		return errors.New("content cannot be empty")
	}
	return nil
}

// Apply накладывает поля формы на существующую заметку и возвращает
// объединённую копию. ID и CreatedAt не изменяются
func (f *MemoForm) Apply(memo Memo) Memo {
	memo.Title = f.Title
	memo.Content = f.Content
	memo.Category = f.Category
	memo.Tags = f.Tags
	return memo
}

// IsEmpty проверяет, пуста ли заметка
func (m *Memo) IsEmpty() bool {
	return m.ID == "" && m.Title == "" && m.Content == ""
}

// Matches проверяет, содержит ли заметка подстроку query (без учета регистра)
// в заголовке, содержании или любом из тегов
func (m *Memo) Matches(query string) bool {
	if strings.Contains(strings.ToLower(m.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Content), query) {
		return true
	}
	for _, tag := range m.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// Stats статистика по коллекции заметок
type Stats struct {
	Total      int            // Общее количество заметок
	ByCategory map[string]int // Количество заметок по каждой встреченной категории
	Filtered   int            // Количество заметок в отфильтрованном представлении
}
