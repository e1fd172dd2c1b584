package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		SecretKey    string
		RollbarToken string
		WorkDir      string

		// AcademicYear is assigned to a department's first submission.
		AcademicYear string
		PolicyFile   string
		SeedFile     string

		Server  ServerConfig
		Scoring ScoringConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	ScoringConfig struct {
		ComplianceWeight float64
		StatusWeight     float64
		CoverageWeight   float64
	}
)

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Staff Gap")
	conf.SetDefault("build", "develop")
	conf.SetDefault("secretKey", "k3v!x9#qz2-gap$+57=dz&uoxh2(h!x)#*c2(#yg4h^$ceg")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("academicYear", "2024-2025")
	conf.SetDefault("policyFile", "")
	conf.SetDefault("seedFile", "")
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.address", ":8000")
	conf.SetDefault("server.debugHost", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("scoring.complianceWeight", 0.7)
	conf.SetDefault("scoring.statusWeight", 0.3)
	conf.SetDefault("scoring.coverageWeight", 0.5)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        conf.GetString("build"),
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		SecretKey:    conf.GetString("secretKey"),
		RollbarToken: conf.GetString("rollbarToken"),
		WorkDir:      wd,
		AcademicYear: conf.GetString("academicYear"),
		PolicyFile:   conf.GetString("policyFile"),
		SeedFile:     conf.GetString("seedFile"),
		Server: ServerConfig{
			Host:                      conf.GetString("server.host"),
			Address:                   conf.GetString("server.address"),
			DebugHost:                 conf.GetString("server.debugHost"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Scoring: ScoringConfig{
			ComplianceWeight: conf.GetFloat64("scoring.complianceWeight"),
			StatusWeight:     conf.GetFloat64("scoring.statusWeight"),
			CoverageWeight:   conf.GetFloat64("scoring.coverageWeight"),
		},
	}
}

// NewTestConfig returns the configuration used by tests: no env lookups, no files.
func NewTestConfig() *Config {
	return &Config{
		Env:          "TEST",
		Build:        "test",
		TestMode:     true,
		AppName:      "Staff Gap",
		SecretKey:    "test-secret",
		AcademicYear: "2024-2025",
		Server: ServerConfig{
			Address:                   ":0",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: time.Hour,
		},
		Scoring: ScoringConfig{ComplianceWeight: 0.7, StatusWeight: 0.3, CoverageWeight: 0.5},
	}
}
