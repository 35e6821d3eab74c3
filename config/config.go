package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	Debug       bool

	DefaultLocale string
	SessionTTL    time.Duration

	// base URL of the public site, used for previews and payment redirects
	SiteURL    string
	PreviewTTL time.Duration

	MailFrom      string
	MailRecipient string
	// further addresses the public e-mail endpoint may send to
	MailAllow    []string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	KlixURL       string
	KlixBrandID   string
	KlixSecretKey string
	Currency      string

	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	// "user:password" of an editor to create before serving
	CreateEditor string
}

// ParseFlags reads the command line. Defaults come from the environment,
// itself seeded from an optional .env file.
func ParseFlags() (Config, error) {
	_ = godotenv.Load()
	return Parse(os.Args[0], os.Args[1:])
}

func Parse(name string, args []string) (cfg Config, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	var host string
	fs.StringVar(&host, "host", env("HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", uint(envInt("PORT", 80)), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", env("DB_URL", "catering.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", env("TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", uint(envInt("TOKEN_TTL", 120)), "token TTL in seconds")
	fs.BoolVar(&cfg.Debug, "debug", env("DEBUG", "") != "", "log at DEBUG level")

	fs.StringVar(&cfg.DefaultLocale, "default-locale", env("DEFAULT_LOCALE", "lv"), "locale used when a form is missing in the requested one")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", envDuration("SESSION_TTL", 2*time.Hour), "idle time after which a form session is dropped")
	fs.StringVar(&cfg.SiteURL, "site-url", env("SITE_URL", "http://localhost:3000"), "public site base URL")
	fs.DurationVar(&cfg.PreviewTTL, "preview-ttl", envDuration("PREVIEW_TTL", time.Hour), "validity of draft preview links")

	fs.StringVar(&cfg.MailFrom, "mail-from", env("MAIL_FROM", ""), "sender address of notification e-mails")
	fs.StringVar(&cfg.MailRecipient, "mail-recipient", env("MAIL_RECIPIENT", ""), "default recipient of form submissions")
	var mailAllow string
	fs.StringVar(&mailAllow, "mail-allow", env("MAIL_ALLOW", ""), "comma separated extra recipients of the e-mail endpoint")
	fs.StringVar(&cfg.SMTPHost, "smtp-host", env("SMTP_HOST", ""), "SMTP host (empty: log e-mails instead of sending)")
	fs.IntVar(&cfg.SMTPPort, "smtp-port", envInt("SMTP_PORT", 587), "SMTP port")
	fs.StringVar(&cfg.SMTPUser, "smtp-user", env("SMTP_USER", ""), "SMTP user name")
	fs.StringVar(&cfg.SMTPPassword, "smtp-password", env("SMTP_PASSWORD", ""), "SMTP password")

	fs.StringVar(&cfg.KlixURL, "klix-url", env("KLIX_URL", "https://portal.klix.app"), "KLIX API base URL")
	fs.StringVar(&cfg.KlixBrandID, "klix-brand-id", env("KLIX_BRAND_ID", ""), "KLIX brand id")
	fs.StringVar(&cfg.KlixSecretKey, "klix-secret-key", env("KLIX_SECRET_KEY", ""), "KLIX API secret key")
	fs.StringVar(&cfg.Currency, "currency", env("CURRENCY", "EUR"), "checkout currency")

	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", env("S3_ENDPOINT", ""), "S3 compatible endpoint for attachments (empty: uploads disabled)")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", env("S3_BUCKET", ""), "attachment bucket")
	fs.StringVar(&cfg.S3AccessKey, "s3-access-key", env("S3_ACCESS_KEY", ""), "attachment bucket access key")
	fs.StringVar(&cfg.S3SecretKey, "s3-secret-key", env("S3_SECRET_KEY", ""), "attachment bucket secret key")
	fs.StringVar(&cfg.S3PublicURL, "s3-public-url", env("S3_PUBLIC_URL", ""), "public base URL of uploaded attachments")

	fs.StringVar(&cfg.CreateEditor, "create-editor", "", "create an editor account (user:password) and exit")

	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	for _, addr := range strings.Split(mailAllow, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			cfg.MailAllow = append(cfg.MailAllow, addr)
		}
	}

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

// AllowsRecipient reports whether the e-mail endpoint may send to addr.
func (cfg Config) AllowsRecipient(addr string) bool {
	if addr == "" {
		return false
	}
	if strings.EqualFold(addr, cfg.MailRecipient) {
		return true
	}
	for _, allowed := range cfg.MailAllow {
		if strings.EqualFold(addr, allowed) {
			return true
		}
	}
	return false
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(env(key, ""))
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(env(key, ""))
	if err != nil {
		return def
	}
	return d
}
