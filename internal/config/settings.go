package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
)

// Settings holds the runtime configuration resolved from the environment.
// Constants stay in config.go; anything an operator can change lives here.
type Settings struct {
	// Storage
	DatabasePath string

	// Feed server
	BindAddr string
	Port     string

	// Replies
	Language string

	// Chat platform credential, handed to the external client glue.
	BotToken string

	// Announcements. An empty URL disables the AMQP publisher.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Load resolves Settings from the process environment. When envFile is not
// empty it is loaded first (missing file is not an error, matching the usual
// .env convention for optional local overrides).
func Load(envFile string) *Settings {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	return &Settings{
		DatabasePath: getEnv(EnvDatabasePath, DefaultDatabasePath),
		BindAddr:     getEnv(EnvBindAddr, LocalhostBindAddr),
		Port:         getEnv(EnvServerPort, DefaultPort),
		Language:     getEnv(EnvLanguage, DefaultLanguage),
		BotToken:     os.Getenv(EnvBotToken),
		AMQPURL:      os.Getenv(EnvAMQPURL),
		AMQPExchange: getEnv(EnvAMQPExchange, DefaultAMQPExchange),
		AMQPQueue:    getEnv(EnvAMQPQueue, DefaultAMQPQueue),
	}
}

// Validate checks the settings for operator mistakes before anything is wired.
func (s *Settings) Validate() error {
	if s.DatabasePath == "" {
		return fmt.Errorf("%s", ErrDBPathEmpty)
	}

	if s.Port == "" {
		return fmt.Errorf("%s", ErrPortRequired)
	}
	port, err := strconv.Atoi(s.Port)
	if err != nil {
		return fmt.Errorf("%s: %q", ErrPortNumber, s.Port)
	}
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("%s: %d", ErrPortRange, port)
	}

	if s.AMQPURL != "" {
		u, err := url.Parse(s.AMQPURL)
		if err != nil {
			return fmt.Errorf("invalid AMQP URL: %w", err)
		}
		if u.Scheme != "amqp" && u.Scheme != "amqps" {
			return fmt.Errorf("%s: %q", ErrAMQPScheme, u.Scheme)
		}
	}

	if !languageSupported(s.Language) {
		s.Language = DefaultLanguage
	}

	return nil
}

// ResolveBotToken returns the chat platform token, preferring the environment
// and falling back to the OS keyring. The keyring path keeps the token out of
// shell history and .env files on desktop deployments.
func (s *Settings) ResolveBotToken() (string, error) {
	if s.BotToken != "" {
		return s.BotToken, nil
	}
	token, err := keyring.Get(KeyringService, KeyringTokenAccount)
	if err != nil || token == "" {
		return "", fmt.Errorf("%s: %w", ErrTokenMissing, err)
	}
	s.BotToken = token
	return token, nil
}

// Addr returns the listen address of the feed server.
func (s *Settings) Addr() string {
	return s.BindAddr + AddrSeparator + s.Port
}

// AnnouncementsEnabled reports whether the AMQP publisher should be started.
func (s *Settings) AnnouncementsEnabled() bool {
	return s.AMQPURL != ""
}

func languageSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
