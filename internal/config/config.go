package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Verification policies for plug commands whose effect cannot be confirmed.
const (
	PolicyOptimistic = "optimistic" // unverifiable command counts as success
	PolicyStrict     = "strict"     // unverifiable command counts as failure
)

// CloudConfig holds TP-Link cloud connection settings.
type CloudConfig struct {
	Email       string        `mapstructure:"email"`
	Password    string        `mapstructure:"password"`
	DeviceAlias string        `mapstructure:"device_alias"` // empty = first smart plug found
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"` // per-request HTTP timeout
}

// ChargingConfig holds the hysteresis thresholds and loop timing.
type ChargingConfig struct {
	StartThreshold   int           `mapstructure:"start_threshold"` // charge on at or below, percent
	StopThreshold    int           `mapstructure:"stop_threshold"`  // charge off at or above, percent
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	SettleDelay      time.Duration `mapstructure:"settle_delay"` // wait before post-command verification
	UnverifiedPolicy string        `mapstructure:"unverified_policy"`
}

// Config is the immutable process configuration, constructed once at startup
// and passed by reference into the services.
type Config struct {
	Port     string         `mapstructure:"port"`
	LogLevel string         `mapstructure:"log_level"`
	Simulate bool           `mapstructure:"simulate"`
	Cloud    CloudConfig    `mapstructure:"cloud"`
	Charging ChargingConfig `mapstructure:"charging"`
}

const (
	defaultBaseURL = "https://wap.tplinkcloud.com"

	defaultStartThreshold = 40
	defaultStopThreshold  = 80
	defaultPollInterval   = 60 * time.Second
	defaultSettleDelay    = 3 * time.Second
	defaultCloudTimeout   = 15 * time.Second
)

var (
	errThresholdOrder   = errors.New("charging.start_threshold must be strictly below charging.stop_threshold")
	errPollInterval     = errors.New("charging.poll_interval must be greater than zero")
	errMissingCloudCred = errors.New("cloud.email and cloud.password are required (set TPLINK_EMAIL / TPLINK_PASSWORD)")
)

// Load reads configuration from the given file (or configs/config.yml when
// path is empty), applies defaults and environment overrides, and validates.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		v.SetConfigType("yml")
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine: env + defaults may suffice.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("cloud.base_url", defaultBaseURL)
	v.SetDefault("cloud.timeout", defaultCloudTimeout)
	v.SetDefault("charging.start_threshold", defaultStartThreshold)
	v.SetDefault("charging.stop_threshold", defaultStopThreshold)
	v.SetDefault("charging.poll_interval", defaultPollInterval)
	v.SetDefault("charging.settle_delay", defaultSettleDelay)
	v.SetDefault("charging.unverified_policy", PolicyOptimistic)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("CHARGECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Credentials keep their historical variable names.
	_ = v.BindEnv("cloud.email", "TPLINK_EMAIL")
	_ = v.BindEnv("cloud.password", "TPLINK_PASSWORD")
	_ = v.BindEnv("cloud.device_alias", "TPLINK_DEVICE_ALIAS")
}

// Validate checks the invariants the control loop relies on. A violation here
// is fatal at startup; the loop must never start with an ill-defined policy.
func (c *Config) Validate() error {
	ch := c.Charging
	if ch.StartThreshold < 0 || ch.StartThreshold > 100 || ch.StopThreshold < 0 || ch.StopThreshold > 100 {
		return fmt.Errorf("thresholds must be within 0..100, got start=%d stop=%d", ch.StartThreshold, ch.StopThreshold)
	}
	// start == stop would make the dead band empty and both boundary rules
	// fire on the same value; reject rather than pick a winner.
	if ch.StartThreshold >= ch.StopThreshold {
		return errThresholdOrder
	}
	if ch.PollInterval <= 0 {
		return errPollInterval
	}
	if ch.SettleDelay < 0 {
		return fmt.Errorf("charging.settle_delay must not be negative, got %s", ch.SettleDelay)
	}
	switch ch.UnverifiedPolicy {
	case PolicyOptimistic, PolicyStrict:
	default:
		return fmt.Errorf("charging.unverified_policy must be %q or %q, got %q", PolicyOptimistic, PolicyStrict, ch.UnverifiedPolicy)
	}
	if !c.Simulate && (c.Cloud.Email == "" || c.Cloud.Password == "") {
		return errMissingCloudCred
	}
	return nil
}
