package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	// Empty method and header lists keep the middleware defaults.
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSMaxAge         time.Duration

	// Mail provider selection: brevo, sendgrid, ses or stub.
	MailProvider string

	// Brevo (transactional email API)
	BrevoAPIKey                 string
	BrevoBaseURL                string
	BrevoConfirmationTemplateID string

	// SendGrid Email Configuration
	SendGridAPIKey                 string
	SendGridConfirmationTemplateID string

	// SES Email Configuration
	SESConfirmationTemplate string

	// Sender identities and the owner mailbox
	MailSenderEmail    string
	MailSenderName     string
	MailFormSenderName string
	MailOwnerEmail     string
	MailOwnerName      string
	MailSendTimeout    time.Duration

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Contact endpoint rate limiting
	ContactRateLimit  int
	ContactRateWindow time.Duration

	CarouselInterval time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		CORSAllowedMethods: getEnvAsList("CORS_ALLOWED_METHODS"),
		CORSAllowedHeaders: getEnvAsList("CORS_ALLOWED_HEADERS"),
		CORSMaxAge:         getEnvAsDuration("CORS_MAX_AGE", 10*time.Minute),

		MailProvider: strings.ToLower(strings.TrimSpace(getEnv("MAIL_PROVIDER", "brevo"))),

		BrevoAPIKey:                 getEnv("BREVO_API_KEY", ""),
		BrevoBaseURL:                getEnv("BREVO_BASE_URL", "https://api.brevo.com"),
		BrevoConfirmationTemplateID: getEnv("BREVO_CONFIRMATION_TEMPLATE_ID", ""),

		SendGridAPIKey:                 getEnv("SENDGRID_API_KEY", ""),
		SendGridConfirmationTemplateID: getEnv("SENDGRID_CONFIRMATION_TEMPLATE_ID", ""),

		SESConfirmationTemplate: getEnv("SES_CONFIRMATION_TEMPLATE", ""),

		MailSenderEmail:    getEnv("MAIL_SENDER_EMAIL", "kenobul.tech@gmail.com"),
		MailSenderName:     getEnv("MAIL_SENDER_NAME", "Kenneth Obul"),
		MailFormSenderName: getEnv("MAIL_FORM_SENDER_NAME", "Portfolio Contact Form"),
		MailOwnerEmail:     getEnv("MAIL_OWNER_EMAIL", "kenobul.tech@gmail.com"),
		MailOwnerName:      getEnv("MAIL_OWNER_NAME", "Kenneth Obul"),
		MailSendTimeout:    getEnvAsDuration("MAIL_SEND_TIMEOUT", 10*time.Second),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		ContactRateLimit:  getEnvAsInt("CONTACT_RATE_LIMIT", 5),
		ContactRateWindow: getEnvAsDuration("CONTACT_RATE_WINDOW", time.Minute),

		CarouselInterval: getEnvAsDuration("CAROUSEL_INTERVAL", 5*time.Second),
	}
}

// ConfirmationTemplateID returns the template identifier configured for the
// active mail provider, or "" when the fallback acknowledgment should be sent.
func (c *Config) ConfirmationTemplateID() string {
	switch c.MailProvider {
	case "sendgrid":
		return c.SendGridConfirmationTemplateID
	case "ses":
		return c.SESConfirmationTemplate
	case "stub":
		return ""
	default:
		return c.BrevoConfirmationTemplateID
	}
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// LoadDotEnv loads variables from the given .env files (default ".env") without
// overriding values already present in the environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
