package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Mailchimp MailchimpConfig
	Redis     RedisConfig
}

type MailchimpConfig struct {
	ApiKey         string
	ServerPrefix   string
	BaseUrl        string // optional, overrides the url derived from ServerPrefix
	TimeoutSeconds int
}

func (c MailchimpConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis address was configured. Redis is optional.
func (c RedisConfig) Enabled() bool {
	return len(c.Addr) > 0
}

// NewViper returns a viper instance that reads config.json from the usual locations (plus any
// extra paths) and lets OCHA_* environment variables override it. MAILCHIMP_API_KEY and
// SERVER_PREFIX are honoured as well.
func NewViper(extraConfigPaths ...string) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")

	// possible locations for config file
	v.AddConfigPath(".")
	v.AddConfigPath("./bin")
	v.AddConfigPath("./configs")
	for _, p := range extraConfigPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("OCHA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// BindEnv only fails when called without a key
	_ = v.BindEnv("Mailchimp.ApiKey", "OCHA_MAILCHIMP_APIKEY", "MAILCHIMP_API_KEY")
	_ = v.BindEnv("Mailchimp.ServerPrefix", "OCHA_MAILCHIMP_SERVERPREFIX", "SERVER_PREFIX")

	v.SetDefault("Mailchimp.TimeoutSeconds", 30)
	v.SetDefault("Redis.DB", 0)

	return v
}

// Load reads the configuration. A missing config file is fine; missing credentials are not.
func Load(v *viper.Viper) (*Config, error) {

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "unable to read the configuration file")
		}
	}

	cfg := &Config{
		Mailchimp: MailchimpConfig{
			ApiKey:         v.GetString("Mailchimp.ApiKey"),
			ServerPrefix:   v.GetString("Mailchimp.ServerPrefix"),
			BaseUrl:        v.GetString("Mailchimp.BaseUrl"),
			TimeoutSeconds: v.GetInt("Mailchimp.TimeoutSeconds"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("Redis.Addr"),
			Password: v.GetString("Redis.Password"),
			DB:       v.GetInt("Redis.DB"),
		},
	}

	if len(cfg.Mailchimp.ApiKey) == 0 {
		return nil, errors.New("mailchimp api key is missing - set MAILCHIMP_API_KEY or Mailchimp.ApiKey in config.json")
	}
	if len(cfg.Mailchimp.ServerPrefix) == 0 {
		return nil, errors.New("mailchimp server prefix is missing - set SERVER_PREFIX or Mailchimp.ServerPrefix in config.json")
	}
	if cfg.Mailchimp.TimeoutSeconds <= 0 {
		return nil, errors.Errorf("mailchimp timeout must be positive, got %v", cfg.Mailchimp.TimeoutSeconds)
	}

	return cfg, nil
}
