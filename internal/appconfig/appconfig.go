// Package appconfig loads per-process runtime configuration from the
// environment, in the style of services/mape/internal/config and
// services/aggregator/internal/props (getEnv/getEnvInt helpers, a
// DefaultConfig baseline, env vars as the single process-configuration
// surface — there is no HTTP config endpoint in this platform).
package appconfig

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings shared by every MAPE-K process binary. Not every
// field is consulted by every binary (e.g. only the simulator reads
// SimStepS), but loading them centrally keeps cmd/*/main.go uniform.
// StartupOverrideS, UseHostTime, AutoControlOnIdle, BreakerMaxFailures and
// BreakerResetS are loaded but not read by any binary: simulator zones take
// startup lockout, host time and auto-control from the resolved
// model.ZoneConfig, and breakers are built with their own defaults.
type Config struct {
	BrokerURL      string
	ClientIDPrefix string
	BrokerUser     string
	BrokerPass     string

	TopologyPath string
	LogDir       string
	HTTPBind     string

	SensorIntervalS   float64
	SimStepS          float64
	StatusIntervalS   float64
	StartupOverrideS  float64
	UseHostTime       bool
	AutoControlOnIdle bool

	PlannerMode string // "status" or "starvation"

	KnowledgeWindow    time.Duration
	KnowledgeDurable   bool
	KnowledgeLogPath   string
	BreakerMaxFailures int
	BreakerResetS      float64
}

// Default returns the hard-coded fallback configuration, overridden field by
// field by FromEnv.
func Default() Config {
	return Config{
		BrokerURL:      "tcp://localhost:1883",
		ClientIDPrefix: "poultrymapek",
		TopologyPath:   "./configs/topology.json",
		LogDir:         "./logs",
		HTTPBind:       ":8080",

		SensorIntervalS:   5.0,
		SimStepS:          1.0,
		StatusIntervalS:   5.0,
		StartupOverrideS:  60.0,
		UseHostTime:       true,
		AutoControlOnIdle: true,

		PlannerMode: "status",

		KnowledgeWindow:    10 * time.Minute,
		KnowledgeDurable:   false,
		KnowledgeLogPath:   "./data/knowledge.log",
		BreakerMaxFailures: 5,
		BreakerResetS:      10.0,
	}
}

// FromEnv loads Config starting from Default and overriding each field the
// corresponding env var sets.
func FromEnv() Config {
	c := Default()
	c.BrokerURL = getEnv("MQTT_BROKER_URL", c.BrokerURL)
	c.ClientIDPrefix = getEnv("MQTT_CLIENT_ID_PREFIX", c.ClientIDPrefix)
	c.BrokerUser = getEnv("MQTT_USERNAME", c.BrokerUser)
	c.BrokerPass = getEnv("MQTT_PASSWORD", c.BrokerPass)

	c.TopologyPath = getEnv("TOPOLOGY_PATH", c.TopologyPath)
	c.LogDir = getEnv("LOG_DIR", c.LogDir)
	c.HTTPBind = getEnv("HTTP_BIND", c.HTTPBind)

	c.SensorIntervalS = getEnvFloat("SENSOR_INTERVAL_S", c.SensorIntervalS)
	c.SimStepS = getEnvFloat("SIM_STEP_S", c.SimStepS)
	c.StatusIntervalS = getEnvFloat("STATUS_INTERVAL_S", c.StatusIntervalS)
	c.StartupOverrideS = getEnvFloat("STARTUP_OVERRIDE_S", c.StartupOverrideS)
	c.UseHostTime = getEnvBool("USE_HOST_TIME", c.UseHostTime)
	c.AutoControlOnIdle = getEnvBool("AUTO_CONTROL", c.AutoControlOnIdle)

	c.PlannerMode = getEnv("PLANNER_MODE", c.PlannerMode)

	c.KnowledgeWindow = time.Duration(getEnvFloat("KNOWLEDGE_WINDOW_S", c.KnowledgeWindow.Seconds())) * time.Second
	c.KnowledgeDurable = getEnvBool("KNOWLEDGE_DURABLE", c.KnowledgeDurable)
	c.KnowledgeLogPath = getEnv("KNOWLEDGE_LOG_PATH", c.KnowledgeLogPath)
	c.BreakerMaxFailures = getEnvInt("BREAKER_MAX_FAILURES", c.BreakerMaxFailures)
	c.BreakerResetS = getEnvFloat("BREAKER_RESET_S", c.BreakerResetS)

	return c
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}
