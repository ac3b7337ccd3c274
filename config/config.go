package config

import (
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"bidhub"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// DB
	DBDriver string `envconfig:"DB_DRIVER" default:"mysql"`
	DBArgs   string `envconfig:"DB_ARGS" required:"true"`

	// Redis relay, disabled when RedisAddr is empty
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// OSS
	OSSEndpoint  string `envconfig:"OSS_ENDPOINT"`
	OSSAccessKey string `envconfig:"OSS_ACCESS_KEY"`
	OSSSecretKey string `envconfig:"OSS_SECRET_KEY"`
	OSSBucket    string `envconfig:"OSS_BUCKET" default:"bidhub"`

	TracingEnabled bool `envconfig:"TRACING_ENABLED" default:"false"`

	RoomCreateRate float64 `envconfig:"ROOM_CREATE_RATE" default:"5"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
