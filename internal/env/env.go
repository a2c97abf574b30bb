package env

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads .env.local when APP_ENV is "local". Real environment variables
// always win over the file.
func Load() {
	if AppEnv() != "local" {
		return
	}
	if err := godotenv.Load(".env.local"); err != nil {
		log.Printf("env: .env.local not loaded (%v); using process environment", err)
	}
}

// AppEnv is APP_ENV, defaulting to "development". The process environment
// is left untouched.
func AppEnv() string {
	return Get("APP_ENV", "development")
}

func Must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func Get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func GetInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func GetBool(k string, def bool) bool {
	return ParseBool(os.Getenv(k), def)
}

func GetDuration(k string, def time.Duration) time.Duration {
	return ParseDuration(os.Getenv(k), def)
}

func List(k string) []string {
	return SplitList(os.Getenv(k))
}

// SplitList splits on commas, semicolons and whitespace separators, dropping blanks.
func SplitList(v string) []string {
	if v == "" {
		return nil
	}
	fields := strings.FieldsFunc(v, func(r rune) bool {
		switch r {
		case ',', ';', '\n', '\r', '\t':
			return true
		default:
			return false
		}
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ParseDuration accepts Go duration strings or a bare number of seconds.
func ParseDuration(v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	dur, err := time.ParseDuration(v)
	if err == nil {
		return dur
	}
	if i, err2 := strconv.Atoi(v); err2 == nil {
		return time.Duration(i) * time.Second
	}
	return def
}

func ParseBool(v string, def bool) bool {
	if v == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
