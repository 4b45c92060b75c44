package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the resolved application configuration. It is populated once at
// startup from defaults, an optional .env file and environment variables.
var Conf *Config

type Config struct {
	Debug    bool
	TestMode bool
	AppName  string
	WorkDir  string

	// flat-file store
	DataDir      string
	AuditLogPath string

	// fixed admin account; AdminPasswordHash (bcrypt) takes precedence over
	// AdminPassword when set
	AdminName         string
	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string

	// grading policy
	StrictGradeSubjects         bool
	PurgeGradesOnSubjectRemoval bool
}

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	wd := Getwd()

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "SchoolSys")
	v.SetDefault("dataDir", filepath.Join(wd, "storage", "data"))
	v.SetDefault("auditLogPath", filepath.Join(wd, "storage", "logs", "audit_log.txt"))
	v.SetDefault("adminName", "Administrator")
	v.SetDefault("adminEmail", "admin@gmail.com")
	v.SetDefault("adminPassword", "Pass123")
	v.SetDefault("adminPasswordHash", "")
	v.SetDefault("strictGradeSubjects", true)
	v.SetDefault("purgeGradesOnSubjectRemoval", false)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		Debug:                       v.GetBool("debug"),
		TestMode:                    v.GetBool("testMode"),
		AppName:                     v.GetString("appName"),
		WorkDir:                     wd,
		DataDir:                     v.GetString("dataDir"),
		AuditLogPath:                v.GetString("auditLogPath"),
		AdminName:                   v.GetString("adminName"),
		AdminEmail:                  strings.ToLower(v.GetString("adminEmail")),
		AdminPassword:               v.GetString("adminPassword"),
		AdminPasswordHash:           v.GetString("adminPasswordHash"),
		StrictGradeSubjects:         v.GetBool("strictGradeSubjects"),
		PurgeGradesOnSubjectRemoval: v.GetBool("purgeGradesOnSubjectRemoval"),
	}
}
