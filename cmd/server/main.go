package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/watchparty/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	corsAllowedOrigins = configVar[[]string]{
		envKey:       "SERVER_CORS_ALLOWED_ORIGINS",
		flagKey:      "cors-allowed-origins",
		defaultValue: []string{"*"},
		usage:        "Comma separated origins allowed by CORS",
	}
	deliveryBuffer = configVar[int]{
		envKey:       "SERVER_DELIVERY_BUFFER",
		flagKey:      "delivery-buffer",
		defaultValue: 2,
		usage:        "Events buffered per live connection",
	}
	deliveryTimeout = configVar[time.Duration]{
		envKey:       "SERVER_DELIVERY_TIMEOUT",
		flagKey:      "delivery-timeout",
		defaultValue: 5 * time.Second,
		usage:        "Maximum time to wait on a slow connection during broadcast",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "",
		usage:        "Redis host for stats, empty keeps stats in memory",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

// splitList flattens comma separated entries; env values reach viper as one string.
func splitList(values []string) []string {
	list := make([]string, 0, len(values))
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
	}

	return list
}

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.StringSlice(corsAllowedOrigins.flagKey, corsAllowedOrigins.defaultValue, corsAllowedOrigins.usage)
	pflag.Int(deliveryBuffer.flagKey, deliveryBuffer.defaultValue, deliveryBuffer.usage)
	pflag.Duration(deliveryTimeout.flagKey, deliveryTimeout.defaultValue, deliveryTimeout.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(port)
	bind(host)
	bind(logLevel)
	bind(corsAllowedOrigins)
	bind(deliveryBuffer)
	bind(deliveryTimeout)
	bind(redisPort)
	bind(redisHost)
	bind(redisPassword)

	config := &app.AppConfig{
		Host:               viper.GetString(host.flagKey),
		Port:               viper.GetInt(port.flagKey),
		LogLevel:           viper.GetString(logLevel.flagKey),
		CORSAllowedOrigins: splitList(viper.GetStringSlice(corsAllowedOrigins.flagKey)),
		DeliveryBuffer:     viper.GetInt(deliveryBuffer.flagKey),
		DeliveryTimeout:    viper.GetDuration(deliveryTimeout.flagKey),
		RedisHost:          viper.GetString(redisHost.flagKey),
		RedisPort:          viper.GetInt(redisPort.flagKey),
		RedisPassword:      viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
