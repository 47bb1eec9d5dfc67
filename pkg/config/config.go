package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Entornos reconocidos en APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	Mongo    MongoConfig
	HTTP     HTTPConfig
	Security SecurityConfig
	Log      LogConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// IsDevelopment activa logs de peticiones y el detalle completo de errores en las respuestas.
func (c AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// MongoConfig configuración de MongoDB.
// URI puede contener el marcador <PASSWORD>, que se reemplaza por Password (ej. cadenas de Atlas).
type MongoConfig struct {
	URI            string
	Password       string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

// ConnectionString devuelve la URI con la contraseña ya sustituida.
func (c MongoConfig) ConnectionString() string {
	if c.Password == "" {
		return c.URI
	}
	return strings.ReplaceAll(c.URI, "<PASSWORD>", c.Password)
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SecurityConfig límites del pipeline de peticiones.
type SecurityConfig struct {
	RateLimitMax    int           // peticiones por IP en la ventana
	RateLimitWindow time.Duration // ventana deslizante
	BodyLimitKB     int           // tamaño máximo del cuerpo JSON
}

// BodyLimitBytes tamaño máximo del cuerpo en bytes.
func (c SecurityConfig) BodyLimitBytes() int {
	return c.BodyLimitKB * 1024
}

// LogConfig configuración del logger.
type LogConfig struct {
	Level string // trace, debug, info, warn, error
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, MONGO_URI, HTTP_PORT, RATE_LIMIT_MAX, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	env := getString(v, "APP_ENV", EnvDevelopment)
	defaultLevel := "info"
	if env == EnvDevelopment {
		defaultLevel = "debug"
	}

	cfg := &Config{
		App: AppConfig{
			Env:  env,
			Name: getString(v, "APP_NAME", "tours-api"),
		},
		Mongo: MongoConfig{
			URI:            getString(v, "MONGO_URI", "mongodb://localhost:27017"),
			Password:       getString(v, "MONGO_PASSWORD", ""),
			Database:       getString(v, "MONGO_DATABASE", "natours"),
			MaxPoolSize:    uint64(getInt(v, "MONGO_MAX_POOL_SIZE", 25)),
			ConnectTimeout: time.Duration(getInt(v, "MONGO_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 3000),
		},
		Security: SecurityConfig{
			RateLimitMax:    getInt(v, "RATE_LIMIT_MAX", 100),
			RateLimitWindow: time.Duration(getInt(v, "RATE_LIMIT_WINDOW_MINUTES", 60)) * time.Minute,
			BodyLimitKB:     getInt(v, "BODY_LIMIT_KB", 10),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", defaultLevel),
		},
	}

	if cfg.Mongo.Database == "" {
		return nil, fmt.Errorf("config: MONGO_DATABASE vacío")
	}
	if cfg.Security.RateLimitMax <= 0 || cfg.Security.BodyLimitKB <= 0 {
		return nil, fmt.Errorf("config: RATE_LIMIT_MAX y BODY_LIMIT_KB deben ser positivos")
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
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
