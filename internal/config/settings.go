package config

import (
	"log"
	"strconv"
	"time"
)

// Settings holds every runtime tunable, loaded once at startup and passed by
// value to the components that need it.
type Settings struct {
	HTTPAddr string

	// Staleness window before a live position stops being surfaced as current.
	StaleWindow time.Duration
	// How long a vehicle may sit in "arrived" before the sweep forces "stopped".
	ArrivalTimeout time.Duration
	// Position recency that counts a vehicle as active for the unscanned sweep.
	ActiveWindow time.Duration

	ArrivalSweepEvery   time.Duration
	UnscannedSweepEvery time.Duration
	IndexRebuildEvery   time.Duration

	// Unscanned counts above this escalate the alert to HIGH.
	UnscannedHighThreshold int

	// Fallback coordinates when a vehicle has no home school on record.
	FallbackLat float64
	FallbackLng float64

	// Hour (local) after which a scan counts toward the evening half.
	EveningCutoverHour int
	Timezone           *time.Location

	FCMEndpoint  string
	FCMServerKey string

	RedisURL string
}

// LoadSettings reads the environment (defaults baked in) into a Settings.
func LoadSettings() Settings {
	tzName := getEnv("APP_TIMEZONE", "Africa/Abidjan")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Printf("unknown timezone %q, falling back to UTC", tzName)
		loc = time.UTC
	}

	return Settings{
		HTTPAddr: getEnv("HTTP_ADDR", "0.0.0.0:8080"),

		StaleWindow:    getEnvDuration("STALE_WINDOW", 120*time.Second),
		ArrivalTimeout: getEnvDuration("ARRIVAL_TIMEOUT", 15*time.Minute),
		ActiveWindow:   getEnvDuration("ACTIVE_WINDOW", 30*time.Minute),

		ArrivalSweepEvery:   getEnvDuration("ARRIVAL_SWEEP_EVERY", time.Minute),
		UnscannedSweepEvery: getEnvDuration("UNSCANNED_SWEEP_EVERY", 5*time.Minute),
		IndexRebuildEvery:   getEnvDuration("INDEX_REBUILD_EVERY", 24*time.Hour),

		UnscannedHighThreshold: getEnvInt("UNSCANNED_HIGH_THRESHOLD", 3),

		FallbackLat: getEnvFloat("FALLBACK_LAT", 5.3364),
		FallbackLng: getEnvFloat("FALLBACK_LNG", -4.0267),

		EveningCutoverHour: getEnvInt("EVENING_CUTOVER_HOUR", 14),
		Timezone:           loc,

		FCMEndpoint:  getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
		FCMServerKey: getEnv("FCM_SERVER_KEY", ""),

		RedisURL: getEnv("REDIS_URL", ""),
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid duration for %s: %q, using default", key, raw)
		return defaultValue
	}
	return d
}

func getEnvInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("invalid integer for %s: %q, using default", key, raw)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("invalid float for %s: %q, using default", key, raw)
		return defaultValue
	}
	return f
}
