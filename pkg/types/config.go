package types

type Config struct {
	Environment        string   `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort         uint     `envconfig:"SERVER_PORT" default:"3000"`
	ReadTimeoutSec     uint     `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec    uint     `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`
	ShutdownTimeoutSec uint     `envconfig:"SHUTDOWN_TIMEOUT_SEC" default:"10"`
	AllowedOrigins     []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// Record store
	StoreDriver     string `envconfig:"STORE_DRIVER" default:"file"`
	DataFile        string `envconfig:"DATA_FILE" default:"data.json"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DocumentID      string `envconfig:"DOCUMENT_ID" default:"main"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3Key           string `envconfig:"S3_KEY" default:"rescuelink/data.json"`
	StoreMaxRetries int    `envconfig:"STORE_MAX_RETRIES" default:"3"`

	// Whole-document lock
	LockDriver   string `envconfig:"LOCK_DRIVER" default:"local"`
	RedisAddr    string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisLockKey string `envconfig:"REDIS_LOCK_KEY" default:"rescuelink:document:lock"`
	LockTTLSec   uint   `envconfig:"LOCK_TTL_SEC" default:"10"`

	// false restores the legacy behaviour where any transition overwrites fields
	StrictTransitions bool `envconfig:"STRICT_TRANSITIONS" default:"true"`

	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"json"`
	LogFile       string `envconfig:"LOG_FILE"`
	LogMaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	LogMaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`
	LogMaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"28"`

	// Client synchronizer
	APIBaseURL             string `envconfig:"API_BASE_URL" default:"http://localhost:3000"`
	ClientTimeoutSec       uint   `envconfig:"CLIENT_TIMEOUT_SEC" default:"10"`
	RefreshIntervalSec     uint   `envconfig:"REFRESH_INTERVAL_SEC" default:"30"`
	ReconcileAfterMutation bool   `envconfig:"RECONCILE_AFTER_MUTATION" default:"true"`
}

const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
	StoreDriverS3       = "s3"

	LockDriverLocal = "local"
	LockDriverRedis = "redis"
)
