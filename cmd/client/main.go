package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "http://localhost:8080/api/v1"

// memo JSON-представление заметки, возвращаемое сервером
type memo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// memoForm данные формы создания/редактирования заметки
type memoForm struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// listResponse ответ списочного эндпоинта
type listResponse struct {
	Memos            []memo `json:"memos"`
	SearchQuery      string `json:"searchQuery"`
	SelectedCategory string `json:"selectedCategory"`
}

// stats статистика коллекции
type stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
	Filtered   int            `json:"filtered"`
}

// client минимальный HTTP клиент для демонстрации API
type client struct {
	baseURL string
	http    *http.Client
}

// do выполняет запрос и декодирует JSON ответ в out (если out != nil)
func (c *client) do(method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s: %d %s (%s)", method, path, resp.StatusCode, apiErr.Error, apiErr.Code)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

func main() {
	baseURL := os.Getenv("SERVER_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	c := &client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}

	log.Printf("Connecting to Memo Service at %s...", baseURL)

	// 1. Создаем пару заметок
	var groceries memo
	if err := c.do("POST", "/memos", memoForm{
		Title:    "Groceries",
		Content:  "milk, eggs",
		Category: "personal",
		Tags:     []string{"home"},
	}, &groceries); err != nil {
		log.Fatalf("Create failed: %v", err)
	}
	log.Printf("✅ Created memo %s (%q)", groceries.ID, groceries.Title)

	var tripPlan memo
	if err := c.do("POST", "/memos", memoForm{
		Title:    "Trip Plan",
		Content:  "book flights and hotel",
		Category: "idea",
		Tags:     []string{"travel", "budget"},
	}, &tripPlan); err != nil {
		log.Fatalf("Create failed: %v", err)
	}
	log.Printf("✅ Created memo %s (%q)", tripPlan.ID, tripPlan.Title)

	// 2. Список с поиском: производное представление фильтруется на сервере
	// без дополнительного обращения к хранилищу
	var filtered listResponse
	if err := c.do("GET", "/memos?q=trip", nil, &filtered); err != nil {
		log.Fatalf("List failed: %v", err)
	}
	log.Printf("🔍 Search %q matched %d memo(s)", filtered.SearchQuery, len(filtered.Memos))

	// Сбрасываем поисковый фильтр
	if err := c.do("GET", "/memos?q=", nil, &filtered); err != nil {
		log.Fatalf("List failed: %v", err)
	}

	// 3. Обновляем заметку
	var updated memo
	if err := c.do("PUT", "/memos/"+groceries.ID, memoForm{
		Title:    "Groceries (final)",
		Content:  groceries.Content,
		Category: groceries.Category,
		Tags:     groceries.Tags,
	}, &updated); err != nil {
		log.Fatalf("Update failed: %v", err)
	}
	log.Printf("✏️  Updated memo %s: title=%q updatedAt=%s", updated.ID, updated.Title, updated.UpdatedAt.Format(time.RFC3339))

	// 4. Статистика
	var st stats
	if err := c.do("GET", "/memos/stats", nil, &st); err != nil {
		log.Fatalf("Stats failed: %v", err)
	}
	log.Printf("📊 Stats: total=%d filtered=%d byCategory=%v", st.Total, st.Filtered, st.ByCategory)

	// 5. Удаляем одну заметку и очищаем остальное
	if err := c.do("DELETE", "/memos/"+tripPlan.ID, nil, nil); err != nil {
		log.Fatalf("Delete failed: %v", err)
	}
	log.Printf("🗑  Deleted memo %s", tripPlan.ID)

	if err := c.do("DELETE", "/memos", nil, nil); err != nil {
		log.Fatalf("Clear failed: %v", err)
	}
	log.Println("🗑  Cleared all memos")

	log.Println("Done")
}
