package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// validate кеширует разбор тегов структур, безопасен для конкурентного использования
var validate = validator.New()

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Log        LogConfig
	Worker     WorkerConfig
	Estimation EstimationConfig
	Pricing    PricingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	AllowOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	EstimateCacheTTL time.Duration
	SessionTTL       time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
	BatchSize     int `validate:"gte=1,lte=100"`
	Concurrency   int `validate:"gte=1"`
	MaxRetries    int
	// ClaimIdle - через сколько неподтверждённое сообщение забирается повторно
	ClaimIdle time.Duration
}

// EstimationConfig - параметры оценки площади по viewport и генерации полигонов.
// Пороги и множители подобраны эмпирически: это параметры настройки, а не инварианты.
type EstimationConfig struct {
	StreetAddressRatio float64 `validate:"gt=0,lte=1"`
	AreaLevelRatio     float64 `validate:"gt=0,lte=1"`

	MinLawnSqFt      float64 `validate:"gt=0"`
	MaxLawnSqFt      float64 `validate:"gtfield=MinLawnSqFt"`
	RoundingStepSqFt float64 `validate:"gt=0"`

	FallbackRadiusMeters float64 `validate:"gt=0"`
	FallbackLawnRatio    float64 `validate:"gt=0,lte=1"`

	LargeViewportThresholdSqFt float64 `validate:"gt=0"`
	LargeViewportRatioFactor   float64 `validate:"gt=0,lte=1"`
	SmallViewportThresholdSqFt float64 `validate:"gt=0,ltfield=LargeViewportThresholdSqFt"`
	SmallViewportMultiplier    float64 `validate:"gte=1"`
	SmallViewportRatioCeiling  float64 `validate:"gt=0,lte=1"`

	FrontYardRatio        float64 `validate:"gt=0,lt=1"`
	BackYardRatio         float64 `validate:"gt=0,lt=1"`
	FrontAspectRatio      float64 `validate:"gt=0"`
	BackAspectRatio       float64 `validate:"gt=0"`
	CommercialAspectRatio float64 `validate:"gt=0"`
	HouseDepthMeters      float64 `validate:"gte=0"`
}

type PricingConfig struct {
	DefaultFlatRatePerSqFt float64 `validate:"gt=0"`
	DefaultUseTiered       bool
}

// DefaultEstimationConfig возвращает значения по умолчанию для оценки
func DefaultEstimationConfig() EstimationConfig {
	return EstimationConfig{
		StreetAddressRatio:         0.35,
		AreaLevelRatio:             0.15,
		MinLawnSqFt:                1000,
		MaxLawnSqFt:                50000,
		RoundingStepSqFt:           100,
		FallbackRadiusMeters:       30,
		FallbackLawnRatio:          0.40,
		LargeViewportThresholdSqFt: 1_000_000,
		LargeViewportRatioFactor:   0.2,
		SmallViewportThresholdSqFt: 10_000,
		SmallViewportMultiplier:    1.5,
		SmallViewportRatioCeiling:  0.8,
		FrontYardRatio:             0.30,
		BackYardRatio:              0.70,
		FrontAspectRatio:           2.0,
		BackAspectRatio:            1.5,
		CommercialAspectRatio:      2.5,
		HouseDepthMeters:           12,
	}
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("API_HOST"),
			Port:         v.GetInt("API_PORT"),
			Env:          v.GetString("API_ENV"),
			AllowOrigins: v.GetString("API_ALLOW_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			EstimateCacheTTL: time.Duration(v.GetInt("ESTIMATE_CACHE_TTL")) * time.Second,
			SessionTTL:       time.Duration(v.GetInt("SESSION_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:       v.GetBool("WORKER_ENABLED"),
			ConsumerGroup: v.GetString("WORKER_CONSUMER_GROUP"),
			BatchSize:     v.GetInt("WORKER_BATCH_SIZE"),
			Concurrency:   v.GetInt("WORKER_CONCURRENCY"),
			MaxRetries:    v.GetInt("WORKER_MAX_RETRIES"),
			ClaimIdle:     time.Duration(v.GetInt("WORKER_CLAIM_IDLE")) * time.Second,
		},
		Estimation: EstimationConfig{
			StreetAddressRatio:         v.GetFloat64("ESTIMATE_STREET_ADDRESS_RATIO"),
			AreaLevelRatio:             v.GetFloat64("ESTIMATE_AREA_LEVEL_RATIO"),
			MinLawnSqFt:                v.GetFloat64("ESTIMATE_MIN_LAWN_SQFT"),
			MaxLawnSqFt:                v.GetFloat64("ESTIMATE_MAX_LAWN_SQFT"),
			RoundingStepSqFt:           v.GetFloat64("ESTIMATE_ROUNDING_STEP_SQFT"),
			FallbackRadiusMeters:       v.GetFloat64("ESTIMATE_FALLBACK_RADIUS_METERS"),
			FallbackLawnRatio:          v.GetFloat64("ESTIMATE_FALLBACK_LAWN_RATIO"),
			LargeViewportThresholdSqFt: v.GetFloat64("ESTIMATE_LARGE_VIEWPORT_SQFT"),
			LargeViewportRatioFactor:   v.GetFloat64("ESTIMATE_LARGE_VIEWPORT_FACTOR"),
			SmallViewportThresholdSqFt: v.GetFloat64("ESTIMATE_SMALL_VIEWPORT_SQFT"),
			SmallViewportMultiplier:    v.GetFloat64("ESTIMATE_SMALL_VIEWPORT_MULTIPLIER"),
			SmallViewportRatioCeiling:  v.GetFloat64("ESTIMATE_SMALL_VIEWPORT_CEILING"),
			FrontYardRatio:             v.GetFloat64("ESTIMATE_FRONT_YARD_RATIO"),
			BackYardRatio:              v.GetFloat64("ESTIMATE_BACK_YARD_RATIO"),
			FrontAspectRatio:           v.GetFloat64("ESTIMATE_FRONT_ASPECT_RATIO"),
			BackAspectRatio:            v.GetFloat64("ESTIMATE_BACK_ASPECT_RATIO"),
			CommercialAspectRatio:      v.GetFloat64("ESTIMATE_COMMERCIAL_ASPECT_RATIO"),
			HouseDepthMeters:           v.GetFloat64("ESTIMATE_HOUSE_DEPTH_METERS"),
		},
		Pricing: PricingConfig{
			DefaultFlatRatePerSqFt: v.GetFloat64("PRICING_DEFAULT_FLAT_RATE"),
			DefaultUseTiered:       v.GetBool("PRICING_DEFAULT_USE_TIERED"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults - значения по умолчанию, если не заданы в .env или окружении
func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("API_ALLOW_ORIGINS", "http://localhost:3000")

	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("ESTIMATE_CACHE_TTL", 3600)
	v.SetDefault("SESSION_TTL", 86400)

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("WORKER_CONSUMER_GROUP", "quote-estimation-workers")
	v.SetDefault("WORKER_BATCH_SIZE", 20)
	v.SetDefault("WORKER_CONCURRENCY", 4)
	v.SetDefault("WORKER_MAX_RETRIES", 3)
	v.SetDefault("WORKER_CLAIM_IDLE", 30)

	def := DefaultEstimationConfig()
	v.SetDefault("ESTIMATE_STREET_ADDRESS_RATIO", def.StreetAddressRatio)
	v.SetDefault("ESTIMATE_AREA_LEVEL_RATIO", def.AreaLevelRatio)
	v.SetDefault("ESTIMATE_MIN_LAWN_SQFT", def.MinLawnSqFt)
	v.SetDefault("ESTIMATE_MAX_LAWN_SQFT", def.MaxLawnSqFt)
	v.SetDefault("ESTIMATE_ROUNDING_STEP_SQFT", def.RoundingStepSqFt)
	v.SetDefault("ESTIMATE_FALLBACK_RADIUS_METERS", def.FallbackRadiusMeters)
	v.SetDefault("ESTIMATE_FALLBACK_LAWN_RATIO", def.FallbackLawnRatio)
	v.SetDefault("ESTIMATE_LARGE_VIEWPORT_SQFT", def.LargeViewportThresholdSqFt)
	v.SetDefault("ESTIMATE_LARGE_VIEWPORT_FACTOR", def.LargeViewportRatioFactor)
	v.SetDefault("ESTIMATE_SMALL_VIEWPORT_SQFT", def.SmallViewportThresholdSqFt)
	v.SetDefault("ESTIMATE_SMALL_VIEWPORT_MULTIPLIER", def.SmallViewportMultiplier)
	v.SetDefault("ESTIMATE_SMALL_VIEWPORT_CEILING", def.SmallViewportRatioCeiling)
	v.SetDefault("ESTIMATE_FRONT_YARD_RATIO", def.FrontYardRatio)
	v.SetDefault("ESTIMATE_BACK_YARD_RATIO", def.BackYardRatio)
	v.SetDefault("ESTIMATE_FRONT_ASPECT_RATIO", def.FrontAspectRatio)
	v.SetDefault("ESTIMATE_BACK_ASPECT_RATIO", def.BackAspectRatio)
	v.SetDefault("ESTIMATE_COMMERCIAL_ASPECT_RATIO", def.CommercialAspectRatio)
	v.SetDefault("ESTIMATE_HOUSE_DEPTH_METERS", def.HouseDepthMeters)

	v.SetDefault("PRICING_DEFAULT_FLAT_RATE", 0.01)
	v.SetDefault("PRICING_DEFAULT_USE_TIERED", true)
}

// Validate проверяет числовые параметры конфигурации и возвращает все проблемы сразу
func (c *Config) Validate() error {
	var err error
	if verr := validate.Struct(c); verr != nil {
		err = multierr.Append(err, fmt.Errorf("invalid config: %w", verr))
	}
	// теги вложенного EstimationConfig уже проверены выше, остаётся только сумма долей
	return multierr.Append(err, c.Estimation.validateYardRatios())
}

// Validate проверяет параметры оценки отдельно от остального конфига
func (e EstimationConfig) Validate() error {
	var err error
	if verr := validate.Struct(e); verr != nil {
		err = multierr.Append(err, fmt.Errorf("invalid estimation config: %w", verr))
	}
	return multierr.Append(err, e.validateYardRatios())
}

func (e EstimationConfig) validateYardRatios() error {
	if sum := e.FrontYardRatio + e.BackYardRatio; sum > 1.0001 {
		return fmt.Errorf("invalid estimation config: front and back yard ratios sum to %.2f", sum)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DSN - строка подключения в формате key=value для драйвера pgx
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.DBName,
		d.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
