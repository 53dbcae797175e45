package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	// Per-request protections.
	RequestTimeoutSec int
	MaxBodyMB         int
	RPS               float64
	Burst             int
	MaxInFlight       int64
	AuthRPS           float64
	AuthBurst         int
}

type App struct {
	Name        string
	Env         string
	FrontendURL string
	CORSOrigins []string
	HTTP        HTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret   string
	Issuer   string
	TTLHours int
}

func (j JWT) TTL() time.Duration { return time.Duration(j.TTLHours) * time.Hour }

type Cookie struct {
	Name   string
	Domain string
	Secure bool
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Mail struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m Mail) Enabled() bool { return m.Host != "" }

type Storage struct {
	Driver        string // local | cloudinary
	CloudName     string
	APIKey        string
	APISecret     string
	Folder        string
	LocalDir      string
	PublicBaseURL string
}

type Google struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type OAuth struct {
	Google Google
}

type Sweep struct {
	Enabled  bool
	Cron     string
	TimeZone string
}

type Leave struct {
	DefaultTotal float64
}

type Seed struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	Cookie  Cookie
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Mail    Mail
	Storage Storage
	OAuth   OAuth
	Sweep   Sweep
	Leave   Leave
	Seed    Seed
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "campus-leave")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.frontendURL", "http://localhost:5173")
	v.SetDefault("app.corsOrigins", []string{"http://localhost:5173"})
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 10)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.requestTimeoutSec", 10)
	v.SetDefault("app.http.maxBodyMB", 6)
	v.SetDefault("app.http.rps", 200)
	v.SetDefault("app.http.burst", 400)
	v.SetDefault("app.http.maxInFlight", 512)
	v.SetDefault("app.http.authRPS", 1)
	v.SetDefault("app.http.authBurst", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.filename", "./logs/app.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 30)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "campus-leave")
	v.SetDefault("jwt.ttlHours", 24)
	v.SetDefault("cookie.name", "token")
	v.SetDefault("cookie.secure", false)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:campus-leave.db?_pragma=foreign_keys(1)")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "no-reply@campus-leave.local")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.folder", "profile_images")
	v.SetDefault("storage.localDir", "./uploads")
	v.SetDefault("storage.publicBaseURL", "http://localhost:8080")
	v.SetDefault("storage.cloudName", "")
	v.SetDefault("storage.apiKey", "")
	v.SetDefault("storage.apiSecret", "")

	v.SetDefault("oauth.google.clientID", "")
	v.SetDefault("oauth.google.clientSecret", "")
	v.SetDefault("oauth.google.redirectURL", "http://localhost:8080/auth/google/callback")

	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.cron", "0 0 7 * * *")
	v.SetDefault("sweep.timeZone", "Asia/Kolkata")

	v.SetDefault("leave.defaultTotal", 30)

	v.SetDefault("seed.adminEmail", "")
	v.SetDefault("seed.adminPassword", "")
	v.SetDefault("seed.adminName", "Administrator")
}

// Load reads path (or CONFIG_PATH, or ./configs/config.local.yaml). A missing
// file is fine; defaults and APP_* variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 16 {
		return errors.New("config: jwt.secret must be at least 16 characters")
	}
	if c.App.HTTP.Port <= 0 || c.App.HTTP.Port > 65535 {
		return fmt.Errorf("config: invalid app.http.port %d", c.App.HTTP.Port)
	}
	if c.JWT.TTLHours <= 0 {
		return errors.New("config: jwt.ttlHours must be positive")
	}
	switch c.Storage.Driver {
	case "local":
	case "cloudinary":
		if c.Storage.CloudName == "" || c.Storage.APIKey == "" || c.Storage.APISecret == "" {
			return errors.New("config: cloudinary storage needs cloudName, apiKey and apiSecret")
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if _, err := time.LoadLocation(c.Sweep.TimeZone); err != nil {
		return fmt.Errorf("config: sweep.timeZone: %w", err)
	}
	return nil
}
