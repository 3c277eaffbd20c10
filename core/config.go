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

// placeholders used when no backend is configured; requests against them fail and pages fall back to fixtures.
const (
	PlaceholderBackendURL     = "https://your-project.supabase.co"
	PlaceholderBackendAnonKey = "your-anon-key"
)

// storage drivers
const (
	DriverRemote   = "remote"
	DriverPostgres = "postgres"
	DriverInMem    = "inmem"
)

type Config struct {
	Env            string // DEV (local; default), TEST, QA, PROD
	Build          string
	Debug          bool
	TestMode       bool
	AppName        string
	SecretKey      string
	RollbarToken   string
	SendgridApiKey string
	FacultyEmail   string

	defaultFromEmail     string
	defaultFromEmailName string

	Server struct {
		Host             string
		Address          string
		DebugHost        string
		ShutdownTimeout  time.Duration
		SessionTTL       time.Duration
		SessionSweepSpec string
		CookieName       string
		DisableReqLogs   bool
	}

	Backend struct {
		Driver  string
		URL     string
		AnonKey string
		Timeout time.Duration
	}

	Database struct {
		Engine     string
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	SessionDB struct {
		Path string
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.defaultFromEmailName, Address: c.defaultFromEmail}
}

func (c *Config) FacultyAddress() mail.Address {
	return mail.Address{Name: "Faculty", Address: c.FacultyEmail}
}

// BackendConfigured tells whether the remote backend points somewhere real.
func (c *Config) BackendConfigured() bool {
	return c.Backend.URL != PlaceholderBackendURL && c.Backend.AnonKey != PlaceholderBackendAnonKey
}

func (c *Config) DatabaseAddress() string {
	return c.Database.Host + ":" + c.Database.Port
}

// NewConfig loads `config/.env.<env>` when present and reads settings from the environment.
func NewConfig() *Config {
	conf := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", env == "TEST")
	conf.SetDefault("appName", "AssignFlow")
	conf.SetDefault("secretKey", "y4k&1-pz5$o(w=2mq0u!v9x)fe#b8tcr+_hn6sgd3jiaal7")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("defaultFromEmailName", "AssignFlow")
	conf.SetDefault("facultyEmail", "faculty@localhost")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.sessionTTL", 24*time.Hour)
	conf.SetDefault("server.sessionSweepSpec", "@every 10m")
	conf.SetDefault("server.cookieName", "assignflow_session")
	conf.SetDefault("server.disableReqLogs", false)
	conf.SetDefault("backend.driver", DriverRemote)
	conf.SetDefault("backend.url", PlaceholderBackendURL)
	conf.SetDefault("backend.anonKey", PlaceholderBackendAnonKey)
	conf.SetDefault("backend.timeout", 10*time.Second)
	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "assignflow")
	conf.SetDefault("database.user", "postgres")
	conf.SetDefault("database.disableTLS", true)
	conf.SetDefault("sessionDB.path", "sessions.db")

	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	// the backend client also honours the unprefixed names of the web build; the prefixed name comes first
	_ = conf.BindEnv("backend.url", env+"_BACKEND_URL", "SUPABASE_URL", "REACT_APP_SUPABASE_URL", "VITE_SUPABASE_URL")
	_ = conf.BindEnv("backend.anonKey", env+"_BACKEND_ANONKEY", "SUPABASE_ANON_KEY", "REACT_APP_SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY")

	c := &Config{
		Env:                  env,
		Build:                conf.GetString("build"),
		Debug:                conf.GetBool("debug"),
		TestMode:             conf.GetBool("testMode"),
		AppName:              conf.GetString("appName"),
		SecretKey:            conf.GetString("secretKey"),
		RollbarToken:         conf.GetString("rollbarToken"),
		SendgridApiKey:       conf.GetString("sendgridApiKey"),
		FacultyEmail:         conf.GetString("facultyEmail"),
		defaultFromEmail:     conf.GetString("defaultFromEmail"),
		defaultFromEmailName: conf.GetString("defaultFromEmailName"),
	}

	c.Server.Host = conf.GetString("server.host")
	c.Server.Address = conf.GetString("server.address")
	c.Server.DebugHost = conf.GetString("server.debugHost")
	c.Server.ShutdownTimeout = conf.GetDuration("server.shutdownTimeout")
	c.Server.SessionTTL = conf.GetDuration("server.sessionTTL")
	c.Server.SessionSweepSpec = conf.GetString("server.sessionSweepSpec")
	c.Server.CookieName = conf.GetString("server.cookieName")
	c.Server.DisableReqLogs = conf.GetBool("server.disableReqLogs")

	c.Backend.Driver = conf.GetString("backend.driver")
	c.Backend.URL = strings.TrimRight(conf.GetString("backend.url"), "/")
	c.Backend.AnonKey = conf.GetString("backend.anonKey")
	c.Backend.Timeout = conf.GetDuration("backend.timeout")

	c.Database.Engine = conf.GetString("database.engine")
	c.Database.Host = conf.GetString("database.host")
	c.Database.Port = conf.GetString("database.port")
	c.Database.Name = conf.GetString("database.name")
	c.Database.User = conf.GetString("database.user")
	c.Database.Password = conf.GetString("database.password")
	c.Database.DisableTLS = conf.GetBool("database.disableTLS")

	c.SessionDB.Path = conf.GetString("sessionDB.path")

	return c
}
