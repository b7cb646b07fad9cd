// Package settings loads process wide configuration from .env, environment variables and an optional
// config file.
package settings

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/blinky-z/Board/service/postStore"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// keys to access settings. Each key is bound to the env variables listed in envBindings
const (
	storeDriverKey   string = "store_driver"
	storeURLKey      string = "store_url"
	storeKeyKey      string = "store_key"
	storeTableKey    string = "store_table"
	storeDSNKey      string = "store_dsn"
	storeDatabaseKey string = "store_database"
	storeTimeoutKey  string = "store_timeout"
	serverPortKey    string = "server_port"
	switchDelayKey   string = "switch_delay"
	sessionTTLKey    string = "session_ttl"
	siteTitleKey     string = "site_title"
)

var envBindings = map[string][]string{
	storeDriverKey:   {"STORE_DRIVER"},
	storeURLKey:      {"STORE_URL", "SUPABASE_URL"},
	storeKeyKey:      {"STORE_KEY", "SUPABASE_ANON_KEY"},
	storeTableKey:    {"STORE_TABLE"},
	storeDSNKey:      {"STORE_DSN"},
	storeDatabaseKey: {"STORE_DATABASE"},
	storeTimeoutKey:  {"STORE_TIMEOUT"},
	serverPortKey:    {"SERVER_PORT"},
	switchDelayKey:   {"SWITCH_DELAY"},
	sessionTTLKey:    {"SESSION_TTL"},
	siteTitleKey:     {"SITE_TITLE"},
}

var defaults = map[string]interface{}{
	storeDriverKey:   postStore.DriverREST,
	storeTableKey:    postStore.DefaultTable,
	storeDatabaseKey: postStore.DefaultMongoDatabase,
	storeTimeoutKey:  "0s",
	serverPortKey:    "8080",
	switchDelayKey:   "1s",
	sessionTTLKey:    "30m",
	siteTitleKey:     "Writing",
}

var (
	// ErrMissingSetting - required setting is empty
	ErrMissingSetting = errors.New("settings: missing required setting")
	// ErrSecretKey - configured key grants more than public access
	ErrSecretKey = errors.New("settings: store key must be a public key, got service_role key")
)

// Settings - process wide configuration
type Settings struct {
	Store StoreSettings
	// ServerPort - port of the web server
	ServerPort string
	// SwitchDelay - delay between a successful submit and the switch to Read
	SwitchDelay time.Duration
	// SessionTTL - idle time after which a web session is dropped
	SessionTTL time.Duration
	// SiteTitle - title shown in the page header
	SiteTitle string
}

// StoreSettings - where posts are kept
type StoreSettings struct {
	Driver   string
	URL      string
	Key      string
	Table    string
	DSN      string
	Database string
	// Timeout - bound of every rest store call. Zero means no bound
	Timeout time.Duration
}

// StoreConfig - converts settings into postStore config
func (s StoreSettings) StoreConfig() postStore.Config {
	return postStore.Config{
		Driver:   s.Driver,
		URL:      s.URL,
		Key:      s.Key,
		DSN:      s.DSN,
		Database: s.Database,
		Table:    s.Table,
		Timeout:  s.Timeout,
	}
}

// Load - reads .env (if present), binds env variables and reads configPath if it is not empty.
// Values from env variables take precedence over the config file
func Load(configPath string, logInfo *log.Logger) (*Settings, error) {
	if err := godotenv.Load(); err != nil {
		logInfo.Print(".env file not found, using environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, envNames := range envBindings {
		input := append([]string{key}, envNames...)
		if err := v.BindEnv(input...); err != nil {
			return nil, fmt.Errorf("settings: binding %s: %w", key, err)
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("settings: reading config file %s: %w", configPath, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Settings, error) {
	storeTimeout, err := cast.ToDurationE(v.Get(storeTimeoutKey))
	if err != nil {
		return nil, fmt.Errorf("settings: invalid %s: %w", storeTimeoutKey, err)
	}
	switchDelay, err := cast.ToDurationE(v.Get(switchDelayKey))
	if err != nil {
		return nil, fmt.Errorf("settings: invalid %s: %w", switchDelayKey, err)
	}
	sessionTTL, err := cast.ToDurationE(v.Get(sessionTTLKey))
	if err != nil {
		return nil, fmt.Errorf("settings: invalid %s: %w", sessionTTLKey, err)
	}

	s := &Settings{
		Store: StoreSettings{
			Driver:   v.GetString(storeDriverKey),
			URL:      v.GetString(storeURLKey),
			Key:      v.GetString(storeKeyKey),
			Table:    v.GetString(storeTableKey),
			DSN:      v.GetString(storeDSNKey),
			Database: v.GetString(storeDatabaseKey),
			Timeout:  storeTimeout,
		},
		ServerPort:  v.GetString(serverPortKey),
		SwitchDelay: switchDelay,
		SessionTTL:  sessionTTL,
		SiteTitle:   v.GetString(siteTitleKey),
	}
	if err = s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate - checks that settings required by the chosen store driver are present
func (s *Settings) Validate() error {
	switch s.Store.Driver {
	case postStore.DriverREST:
		if s.Store.URL == "" {
			return fmt.Errorf("%w: %s", ErrMissingSetting, storeURLKey)
		}
		if s.Store.Key == "" {
			return fmt.Errorf("%w: %s", ErrMissingSetting, storeKeyKey)
		}
		if _, err := url.ParseRequestURI(s.Store.URL); err != nil {
			return fmt.Errorf("settings: invalid %s: %w", storeURLKey, err)
		}
		if err := checkPublicKey(s.Store.Key); err != nil {
			return err
		}
	case postStore.DriverPostgres, postStore.DriverSQLite, postStore.DriverMongo:
		if s.Store.DSN == "" {
			return fmt.Errorf("%w: %s", ErrMissingSetting, storeDSNKey)
		}
	case postStore.DriverMemory:
	default:
		return fmt.Errorf("%w: %q", postStore.ErrUnknownDriver, s.Store.Driver)
	}

	if s.ServerPort == "" {
		return fmt.Errorf("%w: %s", ErrMissingSetting, serverPortKey)
	}
	if s.SwitchDelay < 0 || s.SessionTTL <= 0 || s.Store.Timeout < 0 {
		return errors.New("settings: durations must not be negative and session_ttl must be positive")
	}
	return nil
}

// checkPublicKey - keys of hosted stores are often JWTs carrying a role claim.
// The page runs with the public key, so a service_role key is refused. Keys that are not JWTs are accepted
func checkPublicKey(key string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return nil
	}
	if role, _ := claims["role"].(string); role == "service_role" {
		return ErrSecretKey
	}
	return nil
}
