package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *Config

type (
	ServerConfig struct {
		Host                   string
		Port                   int
		SessionExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		URL string
	}

	RedisConfig struct {
		Addr     string
		Password string
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		Build    string

		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		// external credentials; empty means the console/std fallbacks are used
		SendgridAPIKey string
		RollbarToken   string

		// AuthCallTimeout bounds every blocking call to the session and
		// profile stores; expiry is surfaced as a network failure.
		AuthCallTimeout time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
	}
)

func init() {
	Conf = loadConfig()
}

func loadConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Darasa")
	v.SetDefault("secretKey", "x2dm#1+8$hr)b_wep&0=y5(k!qz@c7g^u4o*fj9l6a3svintc5")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("authCallTimeout", 10*time.Second)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.sessionExpirationDelta", 7*24*time.Hour)
	v.SetDefault("sendgridAPIKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridAPIKey:   v.GetString("sendgridAPIKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		AuthCallTimeout:  v.GetDuration("authCallTimeout"),
		Server: ServerConfig{
			Host:                   v.GetString("server.host"),
			Port:                   v.GetInt("server.port"),
			SessionExpirationDelta: v.GetDuration("server.sessionExpirationDelta"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
		},
	}
}
