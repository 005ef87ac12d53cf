package config

// Environment variable names shared between Load and tests.
const (
	EnvPrefix = "PUNTADA"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EventingTransportMemory = "memory"
	EventingTransportPubSub = "pubsub"

	EnvAppEnv = "PUNTADA_APP_ENV"
	EnvPort   = "PUNTADA_APP_PORT"

	EnvDBDSN  = "PUNTADA_DB_DSN"
	EnvDBHost = "PUNTADA_DB_HOST"
	EnvDBUser = "PUNTADA_DB_USER"
	EnvDBName = "PUNTADA_DB_NAME"

	EnvRedisURL = "PUNTADA_REDIS_URL"

	EnvJWTSecret              = "PUNTADA_JWT_SECRET"
	EnvJWTIssuer              = "PUNTADA_JWT_ISSUER"
	EnvJWTExpMins             = "PUNTADA_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "PUNTADA_REFRESH_TOKEN_TTL_MINUTES"
)
