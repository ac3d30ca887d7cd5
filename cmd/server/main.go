package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"memo-service/internal/config"
	"memo-service/internal/server"
)

const defaultConfigFile = "config.yml"

func main() {
	// Путь к конфигу можно переопределить через переменную окружения
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = defaultConfigFile
	}

	// Загружаем конфигурацию из файла
	appConfig, err := config.Load(configFile)
	if err != nil {
		log.Fatalf("Error initializing config: %v", err)
	}

	log.Println("Starting Memo Service...")

	// Создаем и инициализируем сервер (Repository → Service → Handler)
	srv, err := server.NewServer(appConfig)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := srv.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	// Канал для graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Запуск сервера в горутине
	errChan := srv.Start()

	// Ожидание сигнала или ошибки
	select {
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v. Starting graceful shutdown...", sig)
	}

	if err := srv.Shutdown(); err != nil {
		log.Printf("Shutdown finished with error: %v", err)
	}

	log.Println("Memo Service stopped")
}
