package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	Auth     AuthConfig     `mapstructure:"auth"`
	WhatsApp WhatsAppConfig `mapstructure:"whatsapp"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	// PublicBaseURL is the externally reachable address used to build public
	// object URLs. Falls back to Endpoint when empty.
	PublicBaseURL string `mapstructure:"public_base_url"`
	UseSSL        bool   `mapstructure:"use_ssl"`
}

// AuthConfig covers both the token-issuing side (register/login) and the
// anonymous-handle derivation namespace.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	JWTExpiration time.Duration `mapstructure:"jwt_expiration"`
	// AnonymousNamespace keys the one-way derivation of anonymous handles
	// from durable external identifiers (phone numbers). Changing it orphans
	// every anonymous user's history.
	AnonymousNamespace string `mapstructure:"anonymous_namespace"`
}

// WhatsAppConfig holds WhatsApp Cloud API credentials.
type WhatsAppConfig struct {
	VerifyToken   string `mapstructure:"verify_token"`
	AccessToken   string `mapstructure:"access_token"`
	PhoneNumberID string `mapstructure:"phone_number_id"`
	GraphBaseURL  string `mapstructure:"graph_base_url"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	// Set the path to look for the config file in
	viper.AddConfigPath(path)
	// Set the name of the config file (without extension)
	viper.SetConfigName("config")
	// Set the type of the config file
	viper.SetConfigType("yaml")

	// --- Environment Variable Handling ---
	viper.AutomaticEnv()
	// Use replacer for nested keys e.g., server.address -> SERVER_ADDRESS,
	// whatsapp.verify_token -> WHATSAPP_VERIFY_TOKEN
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// --- Set default values ---
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.max_upload_bytes", int64(100*1024*1024)) // 100MB, matches the transport-side media limit
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "detector_relay")
	viper.SetDefault("s3.endpoint", "")
	viper.SetDefault("s3.region", "")
	viper.SetDefault("s3.access_key_id", "")
	viper.SetDefault("s3.secret_access_key", "")
	viper.SetDefault("s3.public_base_url", "")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.jwt_expiration", "1h")
	viper.SetDefault("auth.anonymous_namespace", "detector-relay")
	viper.SetDefault("whatsapp.verify_token", "")
	viper.SetDefault("whatsapp.access_token", "")
	viper.SetDefault("whatsapp.phone_number_id", "")
	viper.SetDefault("whatsapp.graph_base_url", "https://graph.facebook.com/v17.0")

	// --- Read Config File ---
	err = viper.ReadInConfig()
	// If config file not found, continue (might rely solely on env vars).
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	// --- Unmarshal Config ---
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
