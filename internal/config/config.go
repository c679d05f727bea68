// =============================================================================
// Budget Analyzer - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Settings come from three
// layers, later layers winning:
//
//   1. Built-in defaults (setDefaults below).
//   2. An optional YAML file (config.yaml by default).
//   3. Environment variables prefixed with PRESUPUESTO_, with dots in the key
//      replaced by underscores. Example: PRESUPUESTO_TABLES_PAGE_SIZE=50.
//
// CONFIGURATION FILE EXAMPLE:
//
//   sheets:
//     budget: Presupuesto_General
//     materials_catalog: Catálogo_Materiales
//   columns:
//     cost_keywords: [COSTO, PRECIO, TOTAL, IMPORTE]
//     checklist: [TIPO, Und.]
//   tables:
//     page_size: 25
//     top_n: 10
//   log_level: info
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/ginjaninja78/presupuesto-analyzer/internal/sheet"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "PRESUPUESTO"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	Sheets  SheetsConfig  `mapstructure:"sheets" yaml:"sheets"`
	Columns ColumnsConfig `mapstructure:"columns" yaml:"columns"`
	Tables  TablesConfig  `mapstructure:"tables" yaml:"tables"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	CSV     CSVSettings   `mapstructure:"csv" yaml:"csv"`

	// DefaultTitle is shown when the workbook has no project title.
	// Default: "Presupuesto General del Proyecto"
	DefaultTitle string `mapstructure:"default_title" yaml:"default_title"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// ReportDir is where the analyze command writes report files.
	// Default: "./reports"
	ReportDir string `mapstructure:"report_dir" yaml:"report_dir"`
}

// SheetsConfig names the worksheets of a budget workbook.
//
// CUSTOMIZATION: Workbooks exported with other sheet names can be read by
// overriding these values; the names are matched exactly.
type SheetsConfig struct {
	Budget              string `mapstructure:"budget" yaml:"budget"`
	MaterialsCatalog    string `mapstructure:"materials_catalog" yaml:"materials_catalog"`
	MaterialsAssignment string `mapstructure:"materials_assignment" yaml:"materials_assignment"`
	LaborCatalog        string `mapstructure:"labor_catalog" yaml:"labor_catalog"`
	LaborAssignment     string `mapstructure:"labor_assignment" yaml:"labor_assignment"`

	// Title is the sheet holding the project title, and TitleCell its cell.
	// Default: "Hoja1", "B1"
	Title     string `mapstructure:"title" yaml:"title"`
	TitleCell string `mapstructure:"title_cell" yaml:"title_cell"`
}

// ColumnsConfig holds the header keywords of the heuristic columns and the
// columns filtered by checklist.
type ColumnsConfig struct {
	CostKeywords []string `mapstructure:"cost_keywords" yaml:"cost_keywords"`
	TypeKeywords []string `mapstructure:"type_keywords" yaml:"type_keywords"`

	// Checklist lists the headers (exact match) offered as checklist filters.
	// Default: ["TIPO", "Und."]
	Checklist []string `mapstructure:"checklist" yaml:"checklist"`
}

// TablesConfig holds table and chart sizes.
type TablesConfig struct {
	// PageSize is the number of rows per table page.
	// Default: 25
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// TopN is the number of resources in the summary charts.
	// Default: 10
	TopN int `mapstructure:"top_n" yaml:"top_n"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `mapstructure:"addr" yaml:"addr"`

	// MaxUploadMB bounds the size of an uploaded workbook.
	// Default: 32
	MaxUploadMB int64 `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// MaxSessions bounds the number of sessions kept in memory. The oldest
	// session is dropped first.
	// Default: 64
	MaxSessions int `mapstructure:"max_sessions" yaml:"max_sessions"`
}

// CSVSettings contains settings for reading a workbook exported as CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Common values: "," (comma), ";" (semicolon), "\t" (tab)
	// Default: ","
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// Encoding is the character encoding of the files.
	// Supported: "UTF-8", "Windows-1252", "ISO-8859-1"
	// Default: "UTF-8"
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: The path to a YAML configuration file. An empty path, or a
//     path that does not exist, leaves the defaults and environment in charge.
//
// RETURNS:
//   - The configuration.
//   - An error if the file cannot be parsed or the result is invalid.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults registers every key, which also makes it visible to
// AutomaticEnv during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("sheets.budget", "Presupuesto_General")
	v.SetDefault("sheets.materials_catalog", "Catálogo_Materiales")
	v.SetDefault("sheets.materials_assignment", "Asignación_Materiales")
	v.SetDefault("sheets.labor_catalog", "Catálogo_ManoObra")
	v.SetDefault("sheets.labor_assignment", "Asignación_ManoObra")
	v.SetDefault("sheets.title", "Hoja1")
	v.SetDefault("sheets.title_cell", "B1")

	rules := sheet.DefaultColumnRules()
	v.SetDefault("columns.cost_keywords", rules.CostKeywords)
	v.SetDefault("columns.type_keywords", rules.TypeKeywords)
	v.SetDefault("columns.checklist", []string{"TIPO", "Und."})

	v.SetDefault("tables.page_size", 25)
	v.SetDefault("tables.top_n", 10)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.max_sessions", 64)

	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.encoding", "UTF-8")

	v.SetDefault("default_title", "Presupuesto General del Proyecto")
	v.SetDefault("log_level", "info")
	v.SetDefault("report_dir", "./reports")
}

// Validate checks the configuration for values the analyzer cannot work with.
func (c *Config) Validate() error {
	var problems []string

	for key, name := range map[string]string{
		"sheets.budget":               c.Sheets.Budget,
		"sheets.materials_catalog":    c.Sheets.MaterialsCatalog,
		"sheets.materials_assignment": c.Sheets.MaterialsAssignment,
	} {
		if strings.TrimSpace(name) == "" {
			problems = append(problems, key+" must not be empty")
		}
	}
	if c.Tables.PageSize <= 0 {
		problems = append(problems, fmt.Sprintf("tables.page_size must be positive, got %d", c.Tables.PageSize))
	}
	if c.Tables.TopN <= 0 {
		problems = append(problems, fmt.Sprintf("tables.top_n must be positive, got %d", c.Tables.TopN))
	}
	if len(c.Columns.CostKeywords) == 0 {
		problems = append(problems, "columns.cost_keywords must not be empty")
	}
	if utf8.RuneCountInString(c.CSV.Delimiter) != 1 {
		problems = append(problems, fmt.Sprintf("csv.delimiter must be a single character, got %q", c.CSV.Delimiter))
	}
	switch strings.ToUpper(c.CSV.Encoding) {
	case "UTF-8", "UTF8", "WINDOWS-1252", "CP1252", "ISO-8859-1", "LATIN1":
	default:
		problems = append(problems, fmt.Sprintf("csv.encoding must be UTF-8, Windows-1252 or ISO-8859-1, got %q", c.CSV.Encoding))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level must be debug, info, warn or error, got %q", c.LogLevel))
	}

	if len(problems) == 0 {
		return nil
	}
	// Map iteration above is unordered.
	sort.Strings(problems)
	return errors.New(strings.Join(problems, "; "))
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// ColumnRules returns the header keywords as sheet column rules.
func (c *Config) ColumnRules() sheet.ColumnRules {
	return sheet.ColumnRules{
		CostKeywords: append([]string(nil), c.Columns.CostKeywords...),
		TypeKeywords: append([]string(nil), c.Columns.TypeKeywords...),
	}
}

// RequiredSheets returns the sheets an import cannot do without.
func (c *Config) RequiredSheets() []string {
	return []string{c.Sheets.Budget, c.Sheets.MaterialsCatalog, c.Sheets.MaterialsAssignment}
}

// OptionalSheets returns the sheets that degrade to empty tables when absent.
func (c *Config) OptionalSheets() []string {
	return []string{c.Sheets.LaborCatalog, c.Sheets.LaborAssignment}
}

// DelimiterRune returns the CSV delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.CSV.Delimiter)
	return r
}
