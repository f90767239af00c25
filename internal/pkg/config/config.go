package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	JWT         JWTConfig
	Queue       QueueConfig
	Reservation ReservationConfig
	Events      EventsConfig
	Points      PointsConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Seoul"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type RedisConfig struct {
	Addr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password    string        `envconfig:"REDIS_PASSWORD" default:""`
	DB          int           `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix   string        `envconfig:"REDIS_KEY_PREFIX" default:"concert"`
	PingTimeout time.Duration `envconfig:"REDIS_PING_TIMEOUT" default:"3s"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,X-Queue-Token"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Seoul"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// QueueConfig tunes the admission queue. Backend selects the token store ("redis" or "memory").
type QueueConfig struct {
	Backend          string        `envconfig:"QUEUE_BACKEND" default:"redis"`
	ActiveCap        int           `envconfig:"QUEUE_ACTIVE_CAP" default:"30"`
	ActiveWindow     time.Duration `envconfig:"QUEUE_ACTIVE_WINDOW" default:"5m"`
	ExpiryGrace      time.Duration `envconfig:"QUEUE_EXPIRY_GRACE" default:"5m"`
	ExpiredRetention time.Duration `envconfig:"QUEUE_EXPIRED_RETENTION" default:"1h"`
	SweepInterval    time.Duration `envconfig:"QUEUE_SWEEP_INTERVAL" default:"5s"`
}

type ReservationConfig struct {
	UnpaidWindow      time.Duration `envconfig:"RESERVATION_UNPAID_WINDOW" default:"5m"`
	ExpireBatchSize   int           `envconfig:"RESERVATION_EXPIRE_BATCH_SIZE" default:"10"`
	SweepInterval     time.Duration `envconfig:"RESERVATION_SWEEP_INTERVAL" default:"10s"`
	RowLockTimeout    time.Duration `envconfig:"RESERVATION_ROW_LOCK_TIMEOUT" default:"3s"`
	LockBackend       string        `envconfig:"RESERVATION_LOCK_BACKEND" default:"redis"`
	LockWait          time.Duration `envconfig:"RESERVATION_LOCK_WAIT" default:"3s"`
	LockTTL           time.Duration `envconfig:"RESERVATION_LOCK_TTL" default:"10s"`
	LockRetryInterval time.Duration `envconfig:"RESERVATION_LOCK_RETRY_INTERVAL" default:"50ms"`
}

// EventsConfig selects how PaymentRecover events travel ("redis" stream or in-process "memory").
type EventsConfig struct {
	Transport     string        `envconfig:"EVENTS_TRANSPORT" default:"redis"`
	RecoverStream string        `envconfig:"EVENTS_RECOVER_STREAM" default:"payment.recover"`
	ConsumerGroup string        `envconfig:"EVENTS_CONSUMER_GROUP" default:"reservation-recovery"`
	ConsumerName  string        `envconfig:"EVENTS_CONSUMER_NAME" default:""`
	BlockTimeout  time.Duration `envconfig:"EVENTS_BLOCK_TIMEOUT" default:"2s"`
	BatchSize     int64         `envconfig:"EVENTS_BATCH_SIZE" default:"16"`
}

// PointsConfig selects the point ledger ("postgres" or "tigerbeetle").
type PointsConfig struct {
	Ledger             string   `envconfig:"POINTS_LEDGER" default:"postgres"`
	TigerBeetleCluster uint32   `envconfig:"TIGERBEETLE_CLUSTER_ID" default:"0"`
	TigerBeetleAddrs   []string `envconfig:"TIGERBEETLE_ADDRESSES" default:"3000"`
	TigerBeetleLedger  uint32   `envconfig:"TIGERBEETLE_LEDGER" default:"1"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Seoul",
			MaxConns: 50,
		},
		Redis: RedisConfig{
			Addr:        "localhost:16379",
			KeyPrefix:   "concert-test",
			PingTimeout: 3 * time.Second,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Seoul",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Queue: QueueConfig{
			Backend:          "memory",
			ActiveCap:        30,
			ActiveWindow:     5 * time.Minute,
			ExpiryGrace:      5 * time.Minute,
			ExpiredRetention: time.Hour,
			SweepInterval:    time.Hour, // driven manually in tests
		},
		Reservation: ReservationConfig{
			UnpaidWindow:      5 * time.Minute,
			ExpireBatchSize:   10,
			SweepInterval:     time.Hour,
			RowLockTimeout:    3 * time.Second,
			LockBackend:       "memory",
			LockWait:          3 * time.Second,
			LockTTL:           10 * time.Second,
			LockRetryInterval: 20 * time.Millisecond,
		},
		Events: EventsConfig{
			Transport:     "memory",
			RecoverStream: "payment.recover",
			ConsumerGroup: "reservation-recovery",
			BlockTimeout:  200 * time.Millisecond,
			BatchSize:     16,
		},
		Points: PointsConfig{
			Ledger: "postgres",
		},
	}
}
