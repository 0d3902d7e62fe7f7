package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/shopspring/decimal"
)

// Config holds every environment-driven setting of the service.
type Config struct {
	Env  string
	Port string

	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	AdminAPIKey string

	PaystackSecretKey string
	PaystackBaseURL   string
	PaystackTimeout   time.Duration

	PublicBaseURL string
	UploadDir     string

	// Zero means no limit.
	CartMaxLineQuantity int
	WalletMaxFunding    decimal.Decimal

	SendGridAPIKey string
	MailFrom       string

	KafkaBrokers    string
	KafkaOrderTopic string

	CORSOrigins []string
}

// Load reads the environment. The Paystack secret falls back to Secret Manager
// when PAYSTACK_SECRET_NAME is set and PAYSTACK_SECRET_KEY is not.
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{
		Env:               getenvDefault("APP_ENV", "dev"),
		Port:              getenvDefault("PORT", "8080"),
		DatabaseURL:       databaseURL(),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminAPIKey:       os.Getenv("ADMIN_API_KEY"),
		PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:   strings.TrimRight(getenvDefault("PAYSTACK_BASE_URL", "https://api.paystack.co"), "/"),
		PublicBaseURL:     strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		UploadDir:         getenvDefault("UPLOAD_DIR", "uploads"),
		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		MailFrom:          getenvDefault("MAIL_FROM", "no-reply@localhost"),
		KafkaBrokers:      os.Getenv("KAFKA_BROKERS"),
		KafkaOrderTopic:   getenvDefault("KAFKA_ORDER_TOPIC", "storefront.orders"),
		CORSOrigins:       splitCSV(getenvDefault("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(getenvDefault("JWT_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("config: JWT_TTL: %w", err)
	}
	if cfg.PaystackTimeout, err = time.ParseDuration(getenvDefault("PAYSTACK_TIMEOUT", "15s")); err != nil {
		return nil, fmt.Errorf("config: PAYSTACK_TIMEOUT: %w", err)
	}
	if cfg.CartMaxLineQuantity, err = strconv.Atoi(getenvDefault("CART_MAX_LINE_QUANTITY", "0")); err != nil {
		return nil, fmt.Errorf("config: CART_MAX_LINE_QUANTITY: %w", err)
	}
	if cfg.WalletMaxFunding, err = decimal.NewFromString(getenvDefault("WALLET_MAX_FUNDING", "0")); err != nil {
		return nil, fmt.Errorf("config: WALLET_MAX_FUNDING: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is not set")
	}

	if cfg.PaystackSecretKey == "" {
		if name := os.Getenv("PAYSTACK_SECRET_NAME"); name != "" {
			secret, err := readSecret(ctx, os.Getenv("GCP_PROJECT_ID"), name, getenvDefault("PAYSTACK_SECRET_VERSION", "latest"))
			if err != nil {
				return nil, err
			}
			cfg.PaystackSecretKey = secret
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"), getenvDefault("DB_PORT", "5432"),
	)
}

func readSecret(ctx context.Context, projectID, secretID, version string) (string, error) {
	if strings.TrimSpace(projectID) == "" {
		return "", errors.New("config: GCP_PROJECT_ID is required to read PAYSTACK_SECRET_NAME")
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("config: secret manager client: %w", err)
	}
	defer client.Close()

	name := "projects/" + projectID + "/secrets/" + secretID + "/versions/" + version
	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("config: access secret %s: %w", name, err)
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("config: empty secret payload (%s)", name)
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
