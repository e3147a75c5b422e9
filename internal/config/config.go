package config

import (
	"encoding/json"
	"flag"
	"os"
	"strings"
)

type Config struct {
	Port        string `json:"port"`
	DBURL       string `json:"dbUrl"`
	AutoMigrate bool   `json:"autoMigrate"`
	SeedDir     string `json:"seedDir"` // empty = no seeding
}

func def() Config {
	return Config{
		Port:        "8080",
		DBURL:       "",
		AutoMigrate: false,
		SeedDir:     "",
	}
}

func loadJSON(path string) (Config, error) {
	c := def()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "1" || v == "true" || v == "yes" {
			return true
		}
		if v == "0" || v == "false" || v == "no" {
			return false
		}
	}
	return fallback
}

func parseBool(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v == "1" || v == "true" || v == "yes"
}

// fromFileAndEnv layers the JSON file (if present) under ENV overrides.
func fromFileAndEnv(jsonPath string) Config {
	cfg := def()
	if st, err := os.Stat(jsonPath); err == nil && !st.IsDir() {
		if c2, err := loadJSON(jsonPath); err == nil {
			cfg = c2
		}
	}
	cfg.Port = getenv("SKYLARK_PORT", cfg.Port)
	cfg.DBURL = getenv("SKYLARK_DB_URL", cfg.DBURL)
	cfg.AutoMigrate = getenvBool("SKYLARK_AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.SeedDir = getenv("SKYLARK_SEED_DIR", cfg.SeedDir)
	return cfg
}

// LoadWithPath reads the JSON config at the given path, then applies ENV
// and flag overrides, in that order. Flags register on the global set;
// call once per process.
func LoadWithPath(jsonPath string) Config {
	configPath := flag.String("config", jsonPath, "Path to config JSON")
	port := flag.String("port", "", "HTTP port")
	db := flag.String("db", "", "Postgres URL")
	auto := flag.String("auto-migrate", "", "Install tables at startup (true/false)")
	seed := flag.String("seed", "", "Path to YAML seed directory (empty = no seeding)")

	flag.Parse()

	cfg := fromFileAndEnv(*configPath)

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = strings.TrimSpace(*port)
		case "db":
			cfg.DBURL = strings.TrimSpace(*db)
		case "auto-migrate":
			cfg.AutoMigrate = parseBool(*auto)
		case "seed":
			cfg.SeedDir = strings.TrimSpace(*seed)
		}
	})

	return cfg
}
