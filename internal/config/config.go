package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath       string
	RawReportDir string
	OutputDir    string

	StrictParse bool

	StoreBaseURL      string
	StoreUserAgent    string
	ImageTimeoutMs    int
	ImageRateLimitRPS int
	ImageRetry        int

	CatalogFolderName string
	CatalogWorkers    int
	GiacenzaMin       int
	PercVenditaMin    float64
	SortBy            string
	SortDesc          bool

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	MailLabel        string
	MailIntervalSec  int
	MailFetchMax     int
	MailProcessBatch int
	MailAutoExport   bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:       getEnv("DB_PATH", filepath.Join(cwd, "data", "barca.db")),
		RawReportDir: getEnv("REPORT_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:    getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		StrictParse: getEnvBool("PARSE_STRICT", true),

		StoreBaseURL: getEnv("STORE_BASE_URL", "https://www.barcastores.com"),
		StoreUserAgent: getEnv("STORE_USER_AGENT",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		ImageTimeoutMs:    getEnvInt("IMAGE_TIMEOUT_MS", 20000),
		ImageRateLimitRPS: getEnvInt("IMAGE_RATE_LIMIT_RPS", 10),
		ImageRetry:        getEnvInt("IMAGE_RETRY", 2),

		CatalogFolderName: getEnv("CATALOG_FOLDER", "BARCA"),
		CatalogWorkers:    getEnvInt("CATALOG_WORKERS", 4),
		GiacenzaMin:       getEnvInt("FILTER_GIACENZA_MIN", 80),
		PercVenditaMin:    getEnvFloat("FILTER_PERC_MIN", 64.0),
		SortBy:            getEnv("CATALOG_SORT_BY", "perc_venduto_calc"),
		SortDesc:          getEnvBool("CATALOG_SORT_DESC", true),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		MailLabel:        getEnv("MAIL_LABEL", "INBOX"),
		MailIntervalSec:  getEnvInt("MAIL_INTERVAL_SEC", 60),
		MailFetchMax:     getEnvInt("MAIL_FETCH_MAX", 20),
		MailProcessBatch: getEnvInt("MAIL_PROCESS_BATCH", 20),
		MailAutoExport:   getEnvBool("MAIL_AUTO_EXPORT", true),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
