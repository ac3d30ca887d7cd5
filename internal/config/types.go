package config

// Поддерживаемые драйверы хранилища
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

// ConfigLogger настройки логирования
type ConfigLogger struct {
	Level string `mapstructure:"level"`
}

// ConfigServer настройки HTTP сервера
type ConfigServer struct {
	Port                    int `mapstructure:"port"`
	ReadTimeout             int `mapstructure:"read_timeout"`
	WriteTimeout            int `mapstructure:"write_timeout"`
	IdleTimeout             int `mapstructure:"idle_timeout"`
	ReadHeaderTimeout       int `mapstructure:"read_header_timeout"`
	GracefulShutdownTimeout int `mapstructure:"graceful_shutdown_timeout"`
}

// ConfigHTTP настройки HTTP middleware (CORS, rate limiting)
type ConfigHTTP struct {
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	CORSMaxAge         int    `mapstructure:"cors_max_age"`
	RateLimitRPS       int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
}

// ConfigStore настройки хранилища заметок
type ConfigStore struct {
	Driver string `mapstructure:"driver"` // postgres | sqlite | memory
	DSN    string `mapstructure:"dsn"`    // строка подключения PostgreSQL
	Path   string `mapstructure:"path"`   // путь к файлу базы SQLite
}

// Config основная структура конфигурации
type Config struct {
	Logger *ConfigLogger `mapstructure:"logger"`
	Server *ConfigServer `mapstructure:"server"`
	HTTP   *ConfigHTTP   `mapstructure:"http"`
	Store  *ConfigStore  `mapstructure:"store"`
}
