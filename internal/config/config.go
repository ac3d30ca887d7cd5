package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envVarRE ищет подстановки вида ${VAR:-default}
var envVarRE = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults расширяет переменные окружения с поддержкой
// дефолтных значений в формате ${VAR:-default}
func expandEnvWithDefaults(s string) string {
	return envVarRE.ReplaceAllStringFunc(s, func(match string) string {
		matches := envVarRE.FindStringSubmatch(match)
		if len(matches) < 2 {
			return match
		}

		if value := os.Getenv(matches[1]); value != "" {
			return value
		}

		// Переменная не установлена - используем значение по умолчанию
		if len(matches) > 2 {
			return matches[2]
		}
		return ""
	})
}

// Load читает конфигурационный файл и возвращает экземпляр конфигурации.
// Значения вида ${VAR:-default} заменяются переменными окружения
func Load(configFile string) (*Config, error) {
	v := viper.New()
	ext := strings.TrimLeft(filepath.Ext(configFile), ".")

	v.SetConfigFile(configFile)
	v.SetConfigType(ext)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig: %w", err)
	}

	for _, k := range v.AllKeys() {
		value := v.GetString(k)
		if value == "" {
			continue
		}
		expanded := expandEnvWithDefaults(value)

		// После подстановки пытаемся восстановить тип значения:
		// boolean и целые числа не должны остаться строками
		if expanded == "true" || expanded == "false" {
			boolValue, _ := strconv.ParseBool(expanded)
			v.Set(k, boolValue)
		} else if intValue, err := strconv.Atoi(expanded); err == nil {
			v.Set(k, intValue)
		} else {
			v.Set(k, expanded)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("v.Unmarshal: %w", err)
	}

	return cfg, nil
}
