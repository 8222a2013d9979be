// Package config collects the service settings from defaults, an optional JSON file,
// the environment (including a .env file) and command line flags, in increasing priority.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" validate:"loglevel"`
	Env                 string        `env:"NODE_ENV"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" validate:"min=1ms"`
	MigrationsDir       string        `env:"MIGRATIONS_DIR"`
	ConfigFile          string        `env:"CONFIG"`

	// SecretKey signs the bearer tokens. The service refuses to start without it.
	SecretKey           string        `env:"SECRET_KEY" validate:"required"`
	TokenTTL            time.Duration `env:"TOKEN_TTL" validate:"min=1s"`
	RequireBearerPrefix bool
	BcryptCost          int           `env:"BCRYPT_COST" validate:"min=4,max=31"`

	ShareHashLength      int `env:"SHARE_HASH_LENGTH" validate:"min=4,max=64"`
	ShareHashMaxAttempts int `env:"SHARE_HASH_MAX_ATTEMPTS" validate:"min=1"`

	TrustedSubnet      string   `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// envSwitches holds the boolean keys, where an explicit false must override the JSON file.
type envSwitches struct {
	RequireBearerPrefix *bool `env:"REQUIRE_BEARER_PREFIX"`
}

// jsonConfig mirrors Config for the JSON file, with durations spelled as strings ("10s").
type jsonConfig struct {
	RunAddr              string   `json:"server_address"`
	LogLevel             string   `json:"log_level"`
	Env                  string   `json:"env"`
	DBFileName           string   `json:"file_storage_path"`
	DatabaseDSN          string   `json:"database_dsn"`
	DBConnectionTimeout  string   `json:"db_connection_timeout"`
	MigrationsDir        string   `json:"migrations_dir"`
	SecretKey            string   `json:"secret_key"`
	TokenTTL             string   `json:"token_ttl"`
	RequireBearerPrefix  *bool    `json:"require_bearer_prefix"`
	BcryptCost           int      `json:"bcrypt_cost"`
	ShareHashLength      int      `json:"share_hash_length"`
	ShareHashMaxAttempts int      `json:"share_hash_max_attempts"`
	TrustedSubnet        string   `json:"trusted_subnet"`
	CORSAllowedOrigins   []string `json:"cors_allowed_origins"`
}

var defaultConfig = Config{
	RunAddr:              ":3000",
	LogLevel:             "info",
	Env:                  "development",
	DBFileName:           "",
	DatabaseDSN:          "",
	DBConnectionTimeout:  10 * time.Second,
	MigrationsDir:        "cmd/brainly/migrations",
	TokenTTL:             time.Hour,
	RequireBearerPrefix:  false,
	BcryptCost:           10,
	ShareHashLength:      10,
	ShareHashMaxAttempts: 10,
	CORSAllowedOrigins: []string{
		"http://localhost:5173",
		"http://localhost:3000",
	},
}

var allowedLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"fatal": true,
}

// InitOption tunes how New gathers the configuration.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing skips command line parsing, which tests rely on.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs replaces os.Args[1:] as the flag source.
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// New builds the configuration. Priority: flags > environment > JSON file > defaults.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	var fromFlags Config
	setFlags := map[string]bool{}
	if !options.disableFlagsParsing {
		var err error
		setFlags, err = parseFlags(&fromFlags, options.args)
		if err != nil {
			return nil, err
		}
	}

	var fromEnv Config
	if err := env.Parse(&fromEnv); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `env.Parse()` calling: %w", err)
	}
	var switches envSwitches
	if err := env.Parse(&switches); err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `env.Parse()` calling: %w", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	configFile := fromEnv.ConfigFile
	if setFlags["c"] {
		configFile = fromFlags.ConfigFile
	}
	if configFile != "" {
		if err := values.applyJSONFile(configFile); err != nil {
			return nil, err
		}
	}

	values.applyEnv(&fromEnv, &switches)
	values.applyFlags(&fromFlags, setFlags)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
	values.CORSAllowedOrigins = append([]string(nil), defaults.CORSAllowedOrigins...)
}

func parseFlags(values *Config, args []string) (map[string]bool, error) {
	flags := flag.NewFlagSet("brainly", flag.ContinueOnError)
	flags.StringVar(&values.RunAddr, "a", "", "address and port to run server")
	flags.StringVar(&values.LogLevel, "l", "", "logger level")
	flags.StringVar(&values.DBFileName, "f", "", "JSON file name with database")
	flags.StringVar(&values.DatabaseDSN, "d", "", "A string with the database connection details")
	flags.StringVar(&values.SecretKey, "k", "", "secret key used to sign bearer tokens")
	flags.StringVar(&values.TrustedSubnet, "t", "", "trusted subnet in CIDR notation for internal endpoints")
	flags.StringVar(&values.ConfigFile, "c", "", "JSON configuration file")
	flags.BoolVar(&values.RequireBearerPrefix, "bearer", false, "require the `Bearer ` prefix in the Authorization header")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	return set, nil
}

func (c *Config) applyJSONFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/applyJSONFile(): error while `os.ReadFile()` calling: %w", err)
	}

	var fromJSON jsonConfig
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		return fmt.Errorf("in internal/config/config.go/applyJSONFile(): error while `json.Unmarshal()` calling: %w", err)
	}

	overrideString(&c.RunAddr, fromJSON.RunAddr)
	overrideString(&c.LogLevel, fromJSON.LogLevel)
	overrideString(&c.Env, fromJSON.Env)
	overrideString(&c.DBFileName, fromJSON.DBFileName)
	overrideString(&c.DatabaseDSN, fromJSON.DatabaseDSN)
	overrideString(&c.MigrationsDir, fromJSON.MigrationsDir)
	overrideString(&c.SecretKey, fromJSON.SecretKey)
	overrideString(&c.TrustedSubnet, fromJSON.TrustedSubnet)
	overrideInt(&c.BcryptCost, fromJSON.BcryptCost)
	overrideInt(&c.ShareHashLength, fromJSON.ShareHashLength)
	overrideInt(&c.ShareHashMaxAttempts, fromJSON.ShareHashMaxAttempts)

	if fromJSON.RequireBearerPrefix != nil {
		c.RequireBearerPrefix = *fromJSON.RequireBearerPrefix
	}
	if len(fromJSON.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = fromJSON.CORSAllowedOrigins
	}

	if err := overrideDuration(&c.DBConnectionTimeout, fromJSON.DBConnectionTimeout); err != nil {
		return err
	}

	return overrideDuration(&c.TokenTTL, fromJSON.TokenTTL)
}

func (c *Config) applyEnv(fromEnv *Config, switches *envSwitches) {
	overrideString(&c.RunAddr, fromEnv.RunAddr)
	overrideString(&c.LogLevel, fromEnv.LogLevel)
	overrideString(&c.Env, fromEnv.Env)
	overrideString(&c.DBFileName, fromEnv.DBFileName)
	overrideString(&c.DatabaseDSN, fromEnv.DatabaseDSN)
	overrideString(&c.MigrationsDir, fromEnv.MigrationsDir)
	overrideString(&c.SecretKey, fromEnv.SecretKey)
	overrideString(&c.TrustedSubnet, fromEnv.TrustedSubnet)
	overrideInt(&c.BcryptCost, fromEnv.BcryptCost)
	overrideInt(&c.ShareHashLength, fromEnv.ShareHashLength)
	overrideInt(&c.ShareHashMaxAttempts, fromEnv.ShareHashMaxAttempts)

	if fromEnv.DBConnectionTimeout != 0 {
		c.DBConnectionTimeout = fromEnv.DBConnectionTimeout
	}
	if fromEnv.TokenTTL != 0 {
		c.TokenTTL = fromEnv.TokenTTL
	}
	if switches.RequireBearerPrefix != nil {
		c.RequireBearerPrefix = *switches.RequireBearerPrefix
	}
	if len(fromEnv.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = fromEnv.CORSAllowedOrigins
	}
}

func (c *Config) applyFlags(fromFlags *Config, set map[string]bool) {
	if set["a"] {
		c.RunAddr = fromFlags.RunAddr
	}
	if set["l"] {
		c.LogLevel = fromFlags.LogLevel
	}
	if set["f"] {
		c.DBFileName = fromFlags.DBFileName
	}
	if set["d"] {
		c.DatabaseDSN = fromFlags.DatabaseDSN
	}
	if set["k"] {
		c.SecretKey = fromFlags.SecretKey
	}
	if set["t"] {
		c.TrustedSubnet = fromFlags.TrustedSubnet
	}
	if set["bearer"] {
		c.RequireBearerPrefix = fromFlags.RequireBearerPrefix
	}
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	return allowedLogLevels[strings.ToLower(fieldLevel.Field().String())]
}

func overrideString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func overrideInt(target *int, value int) {
	if value != 0 {
		*target = value
	}
}

func overrideDuration(target *time.Duration, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("in internal/config/config.go/overrideDuration(): error while `time.ParseDuration()` calling: %w", err)
	}
	*target = d

	return nil
}
