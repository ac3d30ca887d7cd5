package middleware

import (
	"log"
	"net/http"
	"time"
)

// statusWriter обертка для ResponseWriter, запоминающая статус ответа
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Logging логирует все HTTP запросы с временем выполнения и статусом ответа
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		log.Printf("[HTTP] %s %s from %s - %d - %v",
			r.Method, r.URL.Path, r.RemoteAddr, sw.status, time.Since(start))
	})
}
