package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Feed    FeedConfig    `yaml:"feed"`
	Engine  EngineConfig  `yaml:"engine"`
	Games   []GameConfig  `yaml:"games"`
	Betting BettingConfig `yaml:"betting"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// FeedConfig contiene la conexión al feed de ligas virtuales.
type FeedConfig struct {
	URL               string  `yaml:"url"`
	Profile           string  `yaml:"profile"` // MOBILE | DESKTOP
	OddSettingID      int     `yaml:"odd_setting_id"`
	UnitID            int     `yaml:"unit_id"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// GameConfig describe una competición a sincronizar.
type GameConfig struct {
	ID         int      `yaml:"id"`
	Name       string   `yaml:"name"`
	MaxRounds  int      `yaml:"max_rounds"` // 38, o 34 en ligas cortas
	Strategies []string `yaml:"strategies"`
}

// EngineConfig controla los tiempos y límites del ciclo de sincronización.
type EngineConfig struct {
	FixturesRetrySeconds  int  `yaml:"fixtures_retry_seconds"`
	ResultsRetrySeconds   int  `yaml:"results_retry_seconds"`
	MaxResultRetries      int  `yaml:"max_result_retries"`
	MaxBackfillIterations int  `yaml:"max_backfill_iterations"`
	FutureResults         bool `yaml:"future_results"`
	PrefetchSeconds       int  `yaml:"prefetch_seconds"`
	EventTimeEnabled      bool `yaml:"event_time_enabled"`
	EventTimeSeconds      int  `yaml:"event_time_seconds"`
}

// BettingConfig contiene los parámetros compartidos de las estrategias.
type BettingConfig struct {
	Stake    float64 `yaml:"stake"`
	MinOdd   float64 `yaml:"min_odd"`
	FormSpan int     `yaml:"form_span"` // jornadas de forma que piden las estrategias
}

// StorageConfig controla dónde se persisten tickets y ligas.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// FixturesRetryDelay devuelve la separación entre reintentos de fixtures.
func (c *Config) FixturesRetryDelay() time.Duration {
	return time.Duration(c.Engine.FixturesRetrySeconds) * time.Second
}

// ResultsRetryDelay devuelve la separación entre reintentos de resultados.
func (c *Config) ResultsRetryDelay() time.Duration {
	return time.Duration(c.Engine.ResultsRetrySeconds) * time.Second
}

// PrefetchDelay devuelve la separación entre peticiones del prefetch.
func (c *Config) PrefetchDelay() time.Duration {
	return time.Duration(c.Engine.PrefetchSeconds) * time.Second
}

// EventTimeInterval devuelve el desplazamiento del evento del día para feeds
// bajo demanda.
func (c *Config) EventTimeInterval() time.Duration {
	return time.Duration(c.Engine.EventTimeSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FEED_URL"); v != "" {
		cfg.Feed.URL = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Feed.Profile == "" {
		cfg.Feed.Profile = "MOBILE"
	}
	if cfg.Feed.RequestsPerSecond <= 0 {
		cfg.Feed.RequestsPerSecond = 5
	}
	if cfg.Feed.Burst <= 0 {
		cfg.Feed.Burst = 10
	}
	if cfg.Engine.FixturesRetrySeconds <= 0 {
		cfg.Engine.FixturesRetrySeconds = 2
	}
	if cfg.Engine.ResultsRetrySeconds <= 0 {
		cfg.Engine.ResultsRetrySeconds = 3
	}
	if cfg.Engine.MaxResultRetries <= 0 {
		cfg.Engine.MaxResultRetries = 3
	}
	if cfg.Engine.MaxBackfillIterations <= 0 {
		cfg.Engine.MaxBackfillIterations = 5
	}
	if cfg.Engine.PrefetchSeconds <= 0 {
		cfg.Engine.PrefetchSeconds = 2
	}
	if cfg.Betting.Stake <= 0 {
		cfg.Betting.Stake = 1
	}
	if cfg.Betting.MinOdd <= 0 {
		cfg.Betting.MinOdd = 1.02
	}
	if cfg.Betting.FormSpan <= 0 {
		cfg.Betting.FormSpan = 3
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "vbet.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	for i := range cfg.Games {
		if cfg.Games[i].MaxRounds <= 0 {
			cfg.Games[i].MaxRounds = 38
		}
		if len(cfg.Games[i].Strategies) == 0 {
			cfg.Games[i].Strategies = []string{"underdog"}
		}
	}
}
