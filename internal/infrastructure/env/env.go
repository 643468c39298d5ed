package env

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"desktop-agent/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

// Prefix namespaces every variable the agent reads.
const Prefix = "DESKTOP_AGENT_"

type EnvService struct {
	prefix string
}

// LoadDotenv layers .env and then .env.$APP_ENV over the process
// environment. Missing files are not an error.
func LoadDotenv(dir string) string {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	if err := godotenv.Load(dir + ".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env: %v", err)
	}
	envFile := fmt.Sprintf("%s.env.%s", dir, appEnv)
	if err := godotenv.Overload(envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load %s: %v", envFile, err)
	}
	return appEnv
}

func NewEnvService(prefix string) *EnvService {
	return &EnvService{prefix: prefix}
}

func (e *EnvService) Get(key string) string {
	return os.Getenv(e.prefix + key)
}

func (e *EnvService) MustGet(key string) string {
	val := e.Get(key)
	if val == "" {
		log.Fatalf("ENV %s%s is missing", e.prefix, key)
	}
	return val
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	if val := e.Get(key); val != "" {
		return val
	}
	return defaultValue
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetFloat(key string, defaultValue float64) float64 {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// GetDuration accepts Go durations ("1.5s") and bare numbers of seconds.
func (e *EnvService) GetDuration(key string, defaultValue time.Duration) time.Duration {
	val := e.Get(key)
	if val == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}
