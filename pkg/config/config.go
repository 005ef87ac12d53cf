package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Cart          CartConfig
	Checkout      CheckoutConfig
	Studio        StudioConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PUNTADA_APP_ENV" required:"true"`
	Port         string `envconfig:"PUNTADA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PUNTADA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PUNTADA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PUNTADA_DB_DSN"`
	Driver string `envconfig:"PUNTADA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PUNTADA_DB_HOST"`
	Port     int    `envconfig:"PUNTADA_DB_PORT" default:"5432"`
	User     string `envconfig:"PUNTADA_DB_USER"`
	Password string `envconfig:"PUNTADA_DB_PASSWORD"`
	Name     string `envconfig:"PUNTADA_DB_NAME"`
	SSLMode  string `envconfig:"PUNTADA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PUNTADA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PUNTADA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PUNTADA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PUNTADA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PUNTADA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PUNTADA_REDIS_ADDR"`
	Password     string        `envconfig:"PUNTADA_REDIS_PASSWORD"`
	DB           int           `envconfig:"PUNTADA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PUNTADA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PUNTADA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PUNTADA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PUNTADA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PUNTADA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PUNTADA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PUNTADA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PUNTADA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PUNTADA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PUNTADA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PUNTADA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PUNTADA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PUNTADA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PUNTADA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PUNTADA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PUNTADA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PUNTADA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PUNTADA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PUNTADA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PUNTADA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CartConfig struct {
	SnapshotTTL time.Duration `envconfig:"PUNTADA_CART_SNAPSHOT_TTL" default:"720h"`
}

type CheckoutConfig struct {
	SubmitTimeout      time.Duration `envconfig:"PUNTADA_CHECKOUT_SUBMIT_TIMEOUT" default:"20s"`
	SubmitGuardTTL     time.Duration `envconfig:"PUNTADA_CHECKOUT_SUBMIT_GUARD_TTL" default:"30s"`
	AuthWaitTimeout    time.Duration `envconfig:"PUNTADA_CHECKOUT_AUTH_WAIT_TIMEOUT" default:"90s"`
	ContactPhone       string        `envconfig:"PUNTADA_CHECKOUT_CONTACT_PHONE" default:""`
	ContactMessagePtrn string        `envconfig:"PUNTADA_CHECKOUT_CONTACT_TEMPLATE" default:"Hola! Envío el comprobante de pago del pedido %s por $%s."`
}

type StudioConfig struct {
	DraftTTL         time.Duration `envconfig:"PUNTADA_STUDIO_DRAFT_TTL" default:"168h"`
	MaxUploadBytes   int64         `envconfig:"PUNTADA_STUDIO_MAX_UPLOAD_BYTES" default:"5242880"`
	TextSurcharge    string        `envconfig:"PUNTADA_STUDIO_TEXT_SURCHARGE" default:"20"`
	ImageSurcharge   string        `envconfig:"PUNTADA_STUDIO_IMAGE_SURCHARGE" default:"35"`
	DefaultAreaPrice string        `envconfig:"PUNTADA_STUDIO_DEFAULT_AREA_PRICE" default:"15"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PUNTADA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PUNTADA_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	Transport          string `envconfig:"PUNTADA_EVENTING_TRANSPORT" default:"memory"`
	GCPProjectID       string `envconfig:"PUNTADA_GCP_PROJECT_ID"`
	OrdersTopic        string `envconfig:"PUNTADA_PUBSUB_ORDERS_TOPIC" default:"puntada-order-events"`
	OrdersSubscription string `envconfig:"PUNTADA_PUBSUB_ORDERS_SUBSCRIPTION"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range []string{EnvDBHost, EnvDBUser, EnvDBName} {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
