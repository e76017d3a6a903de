package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/locvowork/sheetexport/pkg/sheetexport"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	// server config
	APP_PORT string
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
	// export defaults
	EXPORT_ENCODING                    string
	EXPORT_SHEET_NAME                  string
	EXPORT_FONT                        string
	EXPORT_BLANKS_FOR_NONE             bool
	EXPORT_AUTO_ADJUST_WIDTH           bool
	EXPORT_MIN_CELL_WIDTH              int
	EXCEL_MAXIMUM_ALLOWED_COLUMN_WIDTH int
	EXPORT_HORZ                        string
	EXPORT_VERT                        string
	TIME_ZONE                          string
	// batch jobs
	JOB_WORKERS int
	// database config; DB_HOST empty disables the sql source
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// elasticsearch / datastore; empty values leave the source disabled
	ES_URL               string
	DATASTORE_PROJECT_ID string
}

// LoadEnvConfig reads .env files (when present) and the process environment
// into DefaultEnvConfig.
func LoadEnvConfig(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		APP_PORT:                           getEnvString("APP_PORT", "8080"),
		LOG_FILE_PATH:                      getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:                          getEnvString("LOG_LEVEL", "info"),
		EXPORT_ENCODING:                    getEnvString("EXPORT_ENCODING", sheetexport.DefaultEncoding),
		EXPORT_SHEET_NAME:                  getEnvString("EXPORT_SHEET_NAME", sheetexport.DefaultSheetName),
		EXPORT_FONT:                        getEnvString("EXPORT_FONT", ""),
		EXPORT_BLANKS_FOR_NONE:             getEnvBool("EXPORT_BLANKS_FOR_NONE", true),
		EXPORT_AUTO_ADJUST_WIDTH:           getEnvBool("EXPORT_AUTO_ADJUST_WIDTH", false),
		EXPORT_MIN_CELL_WIDTH:              getEnvInt("EXPORT_MIN_CELL_WIDTH", 0),
		EXCEL_MAXIMUM_ALLOWED_COLUMN_WIDTH: getEnvInt("EXCEL_MAXIMUM_ALLOWED_COLUMN_WIDTH", sheetexport.DefaultMaxColumnWidth),
		EXPORT_HORZ:                        getEnvString("EXPORT_HORZ", string(sheetexport.HorzGeneral)),
		EXPORT_VERT:                        getEnvString("EXPORT_VERT", string(sheetexport.VertBottom)),
		TIME_ZONE:                          getEnvString("TIME_ZONE", "UTC"),
		JOB_WORKERS:                        getEnvInt("JOB_WORKERS", 4),
		DB_HOST:                            getEnvString("DB_HOST", ""),
		DB_PORT:                            getEnvInt("DB_PORT", 5432),
		DB_USER:                            getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:                        getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:                            getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:                        getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME:               getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:                  getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:                  getEnvInt("DB_MAX_OPEN_CONNS", 100),
		ES_URL:                             getEnvString("ES_URL", ""),
		DATASTORE_PROJECT_ID:               getEnvString("DATASTORE_PROJECT_ID", ""),
	}
	return nil
}

// ExportOptions converts the export defaults into exporter options.
func (c *envConfig) ExportOptions() ([]sheetexport.Option, error) {
	horz, err := sheetexport.ParseHorizontal(c.EXPORT_HORZ)
	if err != nil {
		return nil, err
	}
	vert, err := sheetexport.ParseVertical(c.EXPORT_VERT)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(c.TIME_ZONE)
	if err != nil {
		return nil, err
	}

	return []sheetexport.Option{
		sheetexport.WithEncoding(c.EXPORT_ENCODING),
		sheetexport.WithSheetName(c.EXPORT_SHEET_NAME),
		sheetexport.WithFont(c.EXPORT_FONT),
		sheetexport.WithBlanksForNone(c.EXPORT_BLANKS_FOR_NONE),
		sheetexport.WithAutoAdjustWidth(c.EXPORT_AUTO_ADJUST_WIDTH),
		sheetexport.WithMinCellWidth(c.EXPORT_MIN_CELL_WIDTH),
		sheetexport.WithMaxColumnWidth(c.EXCEL_MAXIMUM_ALLOWED_COLUMN_WIDTH),
		sheetexport.WithAlignment(horz, vert),
		sheetexport.WithLocation(loc),
	}, nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
