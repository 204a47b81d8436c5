package main

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sushihentaime/portfolio/internal/authservice"
	"github.com/sushihentaime/portfolio/internal/common"
	"github.com/sushihentaime/portfolio/internal/imagehost"
	"github.com/sushihentaime/portfolio/internal/mailservice"
)

type Config struct {
	Port        string        `mapstructure:"PORT"`
	Environment string        `mapstructure:"ENVIRONMENT"`
	Version     string        `mapstructure:"VERSION"`
	TLSCertFile string        `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string        `mapstructure:"TLS_KEY_FILE"`
	TrustProxy  bool          `mapstructure:"TRUST_PROXY"`
	CacheTTL    time.Duration `mapstructure:"CACHE_TTL"`

	DB        DBConfig        `mapstructure:",squash"`
	Auth      AuthConfig      `mapstructure:",squash"`
	ImageHost ImageHostConfig `mapstructure:",squash"`
	RabbitMQ  RabbitMQConfig  `mapstructure:",squash"`
	Mail      MailConfig      `mapstructure:",squash"`
}

type DBConfig struct {
	URL          string        `mapstructure:"DATABASE_URL"`
	Host         string        `mapstructure:"POSTGRES_HOST"`
	Port         string        `mapstructure:"POSTGRES_PORT"`
	User         string        `mapstructure:"POSTGRES_USER"`
	Password     string        `mapstructure:"POSTGRES_PASSWORD"`
	Name         string        `mapstructure:"POSTGRES_DB"`
	MaxOpenConns int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	MaxIdleTime  time.Duration `mapstructure:"DB_MAX_IDLE_TIME"`
}

type AuthConfig struct {
	// AdminPassword is hashed at startup; prefer AdminPasswordHash outside development.
	AdminPassword     string        `mapstructure:"ADMIN_PASSWORD"`
	AdminPasswordHash string        `mapstructure:"ADMIN_PASSWORD_HASH"`
	SessionSecret     string        `mapstructure:"SESSION_SECRET"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`
	LoginRateLimit    int           `mapstructure:"LOGIN_RATE_LIMIT"`
}

type ImageHostConfig struct {
	CloudName     string        `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	APIKey        string        `mapstructure:"CLOUDINARY_API_KEY"`
	APISecret     string        `mapstructure:"CLOUDINARY_API_SECRET"`
	Folder        string        `mapstructure:"CLOUDINARY_FOLDER"`
	BaseURL       string        `mapstructure:"CLOUDINARY_BASE_URL"`
	DeliveryHost  string        `mapstructure:"CLOUDINARY_DELIVERY_HOST"`
	Timeout       time.Duration `mapstructure:"IMAGE_HOST_TIMEOUT"`
	CredentialTTL time.Duration `mapstructure:"UPLOAD_CREDENTIAL_TTL"`
}

type RabbitMQConfig struct {
	Host     string `mapstructure:"RABBITMQ_HOST"`
	Port     string `mapstructure:"RABBITMQ_PORT"`
	User     string `mapstructure:"RABBITMQ_USER"`
	Password string `mapstructure:"RABBITMQ_PASSWORD"`
}

type MailConfig struct {
	Host      string `mapstructure:"MAIL_HOST"`
	Port      int    `mapstructure:"MAIL_PORT"`
	User      string `mapstructure:"MAIL_USER"`
	Password  string `mapstructure:"MAIL_PASSWORD"`
	Sender    string `mapstructure:"MAIL_SENDER"`
	Recipient string `mapstructure:"CONTACT_RECIPIENT"`
}

var configDefaults = map[string]any{
	"PORT":          "4000",
	"ENVIRONMENT":   "development",
	"VERSION":       "1.0.0",
	"TLS_CERT_FILE": "",
	"TLS_KEY_FILE":  "",
	"TRUST_PROXY":   false,
	"CACHE_TTL":     5 * time.Minute,

	"DATABASE_URL":      "",
	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "",
	"POSTGRES_PASSWORD": "",
	"POSTGRES_DB":       "",
	"DB_MAX_OPEN_CONNS": 25,
	"DB_MAX_IDLE_CONNS": 25,
	"DB_MAX_IDLE_TIME":  15 * time.Minute,

	"ADMIN_PASSWORD":      "",
	"ADMIN_PASSWORD_HASH": "",
	"SESSION_SECRET":      "",
	"SESSION_TTL":         authservice.DefaultSessionTTL,
	"LOGIN_RATE_LIMIT":    5,

	"CLOUDINARY_CLOUD_NAME":    "",
	"CLOUDINARY_API_KEY":       "",
	"CLOUDINARY_API_SECRET":    "",
	"CLOUDINARY_FOLDER":        imagehost.DefaultFolder,
	"CLOUDINARY_BASE_URL":      imagehost.DefaultBaseURL,
	"CLOUDINARY_DELIVERY_HOST": imagehost.DefaultDeliveryHost,
	"IMAGE_HOST_TIMEOUT":       imagehost.DefaultTimeout,
	"UPLOAD_CREDENTIAL_TTL":    imagehost.DefaultCredentialTTL,

	"RABBITMQ_HOST":     "localhost",
	"RABBITMQ_PORT":     "5672",
	"RABBITMQ_USER":     "guest",
	"RABBITMQ_PASSWORD": "guest",

	"MAIL_HOST":         "",
	"MAIL_PORT":         587,
	"MAIL_USER":         "",
	"MAIL_PASSWORD":     "",
	"MAIL_SENDER":       "",
	"CONTACT_RECIPIENT": "",
}

// loadConfig reads an env style file when it exists and lets environment
// variables override every key.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) isProduction() bool {
	return c.Environment == "production"
}

func (c *Config) addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// DatabaseURI prefers DATABASE_URL and falls back to the POSTGRES_* parts.
func (c *Config) DatabaseURI() string {
	if c.DB.URL != "" {
		return c.DB.URL
	}
	if c.DB.User == "" || c.DB.Name == "" {
		return ""
	}
	return common.PostgresURI(c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name)
}

func (c *Config) RabbitMQURI() string {
	return common.AMQPURI(c.RabbitMQ.Host, c.RabbitMQ.Port, c.RabbitMQ.User, c.RabbitMQ.Password)
}

// adminSecretHash returns the configured bcrypt hash, hashing a plain ADMIN_PASSWORD if that is all there is.
func (c *Config) adminSecretHash() ([]byte, error) {
	if c.Auth.AdminPasswordHash != "" {
		return []byte(c.Auth.AdminPasswordHash), nil
	}
	return authservice.HashSecret(c.Auth.AdminPassword)
}

func (c *Config) imageHostConfig() imagehost.Config {
	return imagehost.Config{
		CloudName:     c.ImageHost.CloudName,
		APIKey:        c.ImageHost.APIKey,
		APISecret:     c.ImageHost.APISecret,
		Folder:        c.ImageHost.Folder,
		BaseURL:       c.ImageHost.BaseURL,
		DeliveryHost:  c.ImageHost.DeliveryHost,
		Timeout:       c.ImageHost.Timeout,
		CredentialTTL: c.ImageHost.CredentialTTL,
	}
}

func (c *Config) mailConfig() mailservice.Config {
	return mailservice.Config{
		Host:      c.Mail.Host,
		Port:      c.Mail.Port,
		Username:  c.Mail.User,
		Password:  c.Mail.Password,
		Sender:    c.Mail.Sender,
		Recipient: c.Mail.Recipient,
	}
}

func (c *Config) mailEnabled() bool {
	return c.Mail.Host != ""
}

// validate reports every setting the server cannot start without.
func (c *Config) validate() error {
	var errs []error

	if c.DatabaseURI() == "" {
		errs = append(errs, errors.New("DATABASE_URL or POSTGRES_USER and POSTGRES_DB must be set"))
	}
	if c.Auth.AdminPassword == "" && c.Auth.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set"))
	}
	if len(c.Auth.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}
	if c.ImageHost.CloudName == "" || c.ImageHost.APIKey == "" || c.ImageHost.APISecret == "" {
		errs = append(errs, errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must be set"))
	}
	if c.isProduction() && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set in production"))
	}
	if c.mailEnabled() && (c.Mail.Sender == "" || c.Mail.Recipient == "") {
		errs = append(errs, errors.New("MAIL_SENDER and CONTACT_RECIPIENT must be set when MAIL_HOST is"))
	}

	return errors.Join(errs...)
}
