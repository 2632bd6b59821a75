package config

import (
	"os"

	"github.com/gotify/configor"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr   string `default:"" env:"APP_HOST"`
		Port         int    `default:"8080"  env:"APP_PORT"`
		SwaggerPath  string `default:"./docs/swagger.json" env:"APP_SWAGGER_PATH"`
		BodyLimitMB  int    `default:"50" env:"APP_BODY_LIMIT_MB"`
		ErrNotifyURL string `default:"" env:"APP_ERR_NOTIFY_URL"`
		LogLevel     string `default:"info" env:"APP_LOG_LEVEL"`
	}
	Database struct {
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"task-approval" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	Auth struct {
		JWTSecret      string `default:"change-me" env:"AUTH_JWT_SECRET"`
		JWTExpireInSec int    `default:"86400" env:"AUTH_JWT_EXPIRE_IN_SEC"`
	}
	Admin struct {
		Email string `default:"" env:"ADMIN_EMAIL"`
		Name  string `default:"Administrator" env:"ADMIN_NAME"`
	}
	Workflow struct {
		TaskLockWaitMs        int `default:"3000" env:"WORKFLOW_TASK_LOCK_WAIT_MS"`
		TaskLockTTLSec        int `default:"30" env:"WORKFLOW_TASK_LOCK_TTL_SEC"` // never extended, must exceed the longest transition
		OverdueCheckIntervalS int `default:"300" env:"WORKFLOW_OVERDUE_CHECK_INTERVAL_SEC"`
		OverdueFirstDelayS    int `default:"30" env:"WORKFLOW_OVERDUE_FIRST_DELAY_SEC"`
	}
	Redis struct {
		Host     string `default:"" env:"REDIS_HOST"`
		Port     string `default:"6379" env:"REDIS_PORT"`
		Password string `default:"" env:"REDIS_PASSWORD"`
		DB       int    `default:"0" env:"REDIS_DB"`
	}
	S3 struct {
		Endpoint        string `default:"" env:"S3_ENDPOINT"`
		AccessKeyID     string `default:"" env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `default:"" env:"S3_SECRET_ACCESS_KEY"`
		BucketName      string `default:"task-attachments" env:"S3_BUCKET_NAME"`
		UseSSL          *bool  `default:"false" env:"S3_USE_SSL"`
	}
	Smtp struct {
		User       string `default:"" env:"SMTP_USER"`
		Password   string `default:"" env:"SMTP_PASSWORD"`
		Host       string `default:"" env:"SMTP_HOST"`
		Port       string `default:"" env:"SMTP_PORT"`
		TLSEnabled *bool  `default:"true" env:"SMTP_TLS_ENABLED"`
		From       string `default:"" env:"SMTP_FROM"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("unable to read .env file")
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}

// InitDefault loads defaults only, used by tests.
func InitDefault() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	if err := configor.New(&configor.Config{}).Load(conf); err != nil {
		panic(err)
	}
	Conf = conf
}
