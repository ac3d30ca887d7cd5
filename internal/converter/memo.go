package converter

import (
	"time"

	"memo-service/internal/model"
)

// MemoPayload JSON-представление заметки для HTTP API.
// Формат полей совпадает с клиентской моделью веб-приложения
type MemoPayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MemoFormPayload JSON-представление данных формы создания/редактирования
type MemoFormPayload struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// StatsPayload JSON-представление статистики коллекции
type StatsPayload struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
	Filtered   int            `json:"filtered"`
}

// ModelToPayload конвертирует доменную модель Memo в JSON-представление
func ModelToPayload(memo model.Memo) MemoPayload {
	tags := memo.Tags
	if tags == nil {
		tags = []string{}
	}

	return MemoPayload{
		ID:        memo.ID,
		Title:     memo.Title,
		Content:   memo.Content,
		Category:  memo.Category.String(),
		Tags:      tags,
		CreatedAt: memo.CreatedAt,
		UpdatedAt: memo.UpdatedAt,
	}
}

// ModelsToPayloads конвертирует слайс доменных моделей в слайс JSON-представлений
func ModelsToPayloads(memos []model.Memo) []MemoPayload {
	payloads := make([]MemoPayload, len(memos))
	for i, memo := range memos {
		payloads[i] = ModelToPayload(memo)
	}

	return payloads
}

// PayloadToForm конвертирует JSON-представление формы в доменную модель
func PayloadToForm(payload MemoFormPayload) model.MemoForm {
	return model.MemoForm{
		Title:    payload.Title,
		Content:  payload.Content,
		Category: model.Category(payload.Category),
		Tags:     payload.Tags,
	}
}

// StatsToPayload конвертирует статистику в JSON-представление
func StatsToPayload(stats model.Stats) StatsPayload {
	byCategory := stats.ByCategory
	if byCategory == nil {
		byCategory = map[string]int{}
	}

	return StatsPayload{
		Total:      stats.Total,
		ByCategory: byCategory,
		Filtered:   stats.Filtered,
	}
}
