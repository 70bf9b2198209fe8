package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	DB      DBConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Company CompanyConfig
	Storage StorageConfig
	AI      AIConfig
	N8N     N8NConfig
	Redis   RedisConfig
	Jobs    JobsConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	Currency string // moneda usada en documentos impresos (VND por defecto)
	Timezone string
	LogLevel string
}

// Location devuelve la zona horaria configurada; si no es válida usa UTC.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool // aplica las migraciones embebidas al arrancar
	ForceIPv4   bool
	// StatementTimeout límite por sentencia; 0 = el del servidor.
	StatementTimeout time.Duration
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string con URL encoding para caracteres especiales en la contraseña.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins string // lista separada por comas; "*" permite todos
	BodyLimitMB int
	SwaggerFile string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CompanyConfig datos por defecto del emisor para documentos impresos
// cuando la empresa del token no tiene perfil completo.
type CompanyConfig struct {
	Name        string
	TaxCode     string
	Address     string
	Phone       string
	Email       string
	PDFFontFile string // TTF con diacríticos vietnamitas para facturas y estados de cuenta
}

// StorageConfig almacenamiento local de adjuntos (XML, PDF, imágenes).
type StorageConfig struct {
	AttachmentsDir string
	MaxUploadMB    int
}

// MaxUploadBytes tamaño máximo aceptado por archivo.
func (c StorageConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// AIConfig proveedor LLM usado para el OCR de facturas.
type AIConfig struct {
	Provider        string // anthropic | gemini
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string
}

// N8NConfig webhook de sincronización de facturas.
type N8NConfig struct {
	WebhookURL string
	Secret     string // se envía en la cabecera X-Webhook-Secret
	Timeout    time.Duration
	SyncCron   string // vacío = sin sincronización programada
}

// RedisConfig caché opcional para dashboard y reportes.
type RedisConfig struct {
	Addr     string // vacío = caché deshabilitada
	Password string
	DB       int
	TTL      time.Duration
}

// JobsConfig tareas programadas.
type JobsConfig struct {
	OverdueDebtsCron string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	// .env local: no sobreescribe variables ya exportadas
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "backoffice-api"),
			Currency: getString(v, "APP_CURRENCY", "VND"),
			Timezone: getString(v, "APP_TIMEZONE", "Asia/Ho_Chi_Minh"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "backoffice"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 20),
			MinConns:    getInt(v, "DB_MIN_CONNS", 2),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", true),
			ForceIPv4:   getBool(v, "DB_FORCE_IPV4", false),

			StatementTimeout: time.Duration(getInt(v, "DB_STATEMENT_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "backoffice-api"),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			CORSOrigins: getString(v, "HTTP_CORS_ORIGINS", "*"),
			BodyLimitMB: getInt(v, "HTTP_BODY_LIMIT_MB", 20),
			SwaggerFile: getString(v, "HTTP_SWAGGER_FILE", "./docs/swagger.json"),
		},
		Company: CompanyConfig{
			Name:        getString(v, "COMPANY_NAME", ""),
			TaxCode:     getString(v, "COMPANY_TAX_CODE", ""),
			Address:     getString(v, "COMPANY_ADDRESS", ""),
			Phone:       getString(v, "COMPANY_PHONE", ""),
			Email:       getString(v, "COMPANY_EMAIL", ""),
			PDFFontFile: getString(v, "PDF_FONT_FILE", ""),
		},
		Storage: StorageConfig{
			AttachmentsDir: getString(v, "ATTACHMENTS_DIR", "./data/attachments"),
			MaxUploadMB:    getInt(v, "ATTACHMENTS_MAX_MB", 10),
		},
		AI: AIConfig{
			Provider:        getString(v, "AI_PROVIDER", "anthropic"),
			AnthropicAPIKey: getString(v, "ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getString(v, "ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),
			GeminiAPIKey:    getString(v, "GEMINI_API_KEY", ""),
			GeminiModel:     getString(v, "GEMINI_MODEL", "gemini-1.5-flash"),
		},
		N8N: N8NConfig{
			WebhookURL: getString(v, "N8N_WEBHOOK_URL", ""),
			Secret:     getString(v, "N8N_WEBHOOK_SECRET", ""),
			Timeout:    time.Duration(getInt(v, "N8N_TIMEOUT_SECONDS", 60)) * time.Second,
			SyncCron:   getString(v, "N8N_SYNC_CRON", ""),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
			TTL:      time.Duration(getInt(v, "REDIS_TTL_SECONDS", 300)) * time.Second,
		},
		Jobs: JobsConfig{
			OverdueDebtsCron: getString(v, "JOBS_OVERDUE_DEBTS_CRON", "0 1 * * *"),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET es obligatorio")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	switch v.Get(key).(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return n
	default:
		return v.GetInt(key)
	}
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if !v.IsSet(key) {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return def
	}
	return b
}
