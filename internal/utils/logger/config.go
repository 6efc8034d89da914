// internal/utils/logger/config.go
package logger

type Config struct {
	LogFile     string
	MaxSize     int  // мегабайты
	MaxAge      int  // дни
	MaxBackups  int  // количество файлов
	Compress    bool // сжимать ротированные файлы
	Development bool
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "bot.log",
		MaxSize:     50,   // 50 MB
		MaxAge:      14,   // 14 дней
		MaxBackups:  5,    // 5 файлов
		Compress:    true, // сжимать старые логи
		Development: false,
	}
}
