package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"memo-service/internal/converter"
	"memo-service/internal/repository"
	svc "memo-service/internal/service"
)

// Handler реализует HTTP JSON API для работы с заметками
type Handler struct {
	memoService svc.MemoService
}

// NewHandler создает новый экземпляр HTTP хэндлера
func NewHandler(memoService svc.MemoService) *Handler {
	return &Handler{
		memoService: memoService,
	}
}

// errorPayload JSON-конверт ошибки с причиной и внутренним кодом
type errorPayload struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Code   string `json:"code,omitempty"`
}

// listResponse ответ списочного эндпоинта: производное представление плюс
// текущее состояние фильтров и флаг загрузки
type listResponse struct {
	Memos            []converter.MemoPayload `json:"memos"`
	Loading          bool                    `json:"loading"`
	SearchQuery      string                  `json:"searchQuery"`
	SelectedCategory string                  `json:"selectedCategory"`
}

// writeJSON сериализует тело ответа с указанным статусом
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[HTTP] Failed to encode response: %v", err)
	}
}

// ListMemos возвращает производное представление коллекции.
// Необязательные query-параметры q и category обновляют активные фильтры
// сессии перед чтением (приложение рассчитано на одного потребителя)
func (h *Handler) ListMemos(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	if params.Has("q") {
		h.memoService.SetSearchQuery(params.Get("q"))
	}
	if params.Has("category") {
		h.memoService.SetCategoryFilter(params.Get("category"))
	}

	writeJSON(w, http.StatusOK, listResponse{
		Memos:            converter.ModelsToPayloads(h.memoService.Memos()),
		Loading:          h.memoService.Loading(),
		SearchQuery:      h.memoService.SearchQuery(),
		SelectedCategory: h.memoService.SelectedCategory(),
	})
}

// CreateMemo создает новую заметку из данных формы
func (h *Handler) CreateMemo(w http.ResponseWriter, r *http.Request) {
	var payload converter.MemoFormPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{
			Error:  "invalid request body",
			Reason: err.Error(),
			Code:   "INVALID_BODY",
		})
		return
	}

	memo, err := h.memoService.Create(r.Context(), converter.PayloadToForm(payload))
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, converter.ModelToPayload(memo))
}

// GetMemo возвращает заметку по ID из авторитетной коллекции
func (h *Handler) GetMemo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	memo, ok := h.memoService.GetByID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorPayload{
			Error:  "memo not found",
			Reason: fmt.Sprintf("Memo with ID %s was not found in the collection", id),
			Code:   "MEMO_NOT_FOUND",
		})
		return
	}

	writeJSON(w, http.StatusOK, converter.ModelToPayload(memo))
}

// UpdateMemo обновляет заметку по ID данными формы
func (h *Handler) UpdateMemo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload converter.MemoFormPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{
			Error:  "invalid request body",
			Reason: err.Error(),
			Code:   "INVALID_BODY",
		})
		return
	}

	memo, err := h.memoService.Update(r.Context(), id, converter.PayloadToForm(payload))
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, converter.ModelToPayload(memo))
}

// DeleteMemo удаляет заметку по ID
func (h *Handler) DeleteMemo(w http.ResponseWriter, r *http.Request) {
	if err := h.memoService.Delete(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearMemos удаляет все заметки и сбрасывает фильтры
func (h *Handler) ClearMemos(w http.ResponseWriter, r *http.Request) {
	if err := h.memoService.ClearAll(r.Context()); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefreshMemos перезагружает коллекцию целиком из хранилища
func (h *Handler) RefreshMemos(w http.ResponseWriter, r *http.Request) {
	h.memoService.Refresh(r.Context())

	writeJSON(w, http.StatusOK, listResponse{
		Memos:            converter.ModelsToPayloads(h.memoService.Memos()),
		Loading:          h.memoService.Loading(),
		SearchQuery:      h.memoService.SearchQuery(),
		SelectedCategory: h.memoService.SelectedCategory(),
	})
}

// GetStats возвращает статистику коллекции
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, converter.StatsToPayload(h.memoService.Stats()))
}

// handleError конвертирует внутренние ошибки в HTTP статусы с детализацией
func handleError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	// Не найдено: как локальное предусловие, так и явный сигнал хранилища
	if errors.Is(err, repository.ErrMemoNotFound) {
		writeJSON(w, http.StatusNotFound, errorPayload{
			Error:  "memo not found",
			Reason: "The requested memo was not found",
			Code:   "MEMO_NOT_FOUND",
		})
		return
	}

	// Ошибки валидации формы
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "cannot be empty") || strings.Contains(errMsg, "invalid") {
		writeJSON(w, http.StatusBadRequest, errorPayload{
			Error:  err.Error(),
			Reason: "Validation failed: " + err.Error(),
			Code:   "VALIDATION_ERROR",
		})
		return
	}

	// Все остальные ошибки - Internal
	log.Printf("[HTTP] Internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorPayload{
		Error:  "internal error",
		Reason: fmt.Sprintf("An internal error occurred: %v", err),
		Code:   "INTERNAL_ERROR",
	})
}
