// Package config loads the charge point client configuration, following a
// layered precedence: built-in defaults, application.yaml, an
// environment-specific application-<profile>.yaml, then environment
// variables (highest priority).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration of the charge point client.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Identity      IdentityConfig      `mapstructure:"identity"`
	CentralSystem CentralSystemConfig `mapstructure:"central_system"`
	OCPP          OCPPConfig          `mapstructure:"ocpp"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Log           LogConfig           `mapstructure:"log"`
	Monitoring    MonitoringConfig    `mapstructure:"monitoring"`
}

// AppConfig carries basic process identity.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Profile string `mapstructure:"profile"`
}

// IdentityConfig fills the BootNotification.req fields.
type IdentityConfig struct {
	ChargePointVendor       string `mapstructure:"charge_point_vendor"`
	ChargePointModel        string `mapstructure:"charge_point_model"`
	ChargePointSerialNumber string `mapstructure:"charge_point_serial_number"`
	ChargeBoxSerialNumber   string `mapstructure:"charge_box_serial_number"`
	FirmwareVersion         string `mapstructure:"firmware_version"`
	Iccid                   string `mapstructure:"iccid"`
	Imsi                    string `mapstructure:"imsi"`
	MeterType               string `mapstructure:"meter_type"`
	MeterSerialNumber       string `mapstructure:"meter_serial_number"`
}

// CentralSystemConfig describes how to reach and authenticate to the CS.
type CentralSystemConfig struct {
	ChargePointIdentifier string        `mapstructure:"charge_point_identifier"`
	Url                   string        `mapstructure:"url"`
	SecurityProfile       int           `mapstructure:"security_profile"`
	AuthorizationKey      string        `mapstructure:"authorization_key"`
	CaCertificatePath     string        `mapstructure:"ca_certificate_path"`
	ClientCertificatePath string        `mapstructure:"client_certificate_path"`
	ClientKeyPath         string        `mapstructure:"client_key_path"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
	CallTimeout           time.Duration `mapstructure:"call_timeout"`
	RetryInterval         time.Duration `mapstructure:"retry_interval"`
	ReconnectBackoffMin   time.Duration `mapstructure:"reconnect_backoff_min"`
	ReconnectBackoffMax   time.Duration `mapstructure:"reconnect_backoff_max"`
}

// OCPPConfig holds the OCPP 1.6 configuration keys the core relies on.
type OCPPConfig struct {
	NumberOfConnectors           int           `mapstructure:"number_of_connectors"`
	HeartbeatInterval            time.Duration `mapstructure:"heartbeat_interval"`
	MinStatusDuration            time.Duration `mapstructure:"min_status_duration"`
	MeterValueSampleInterval     time.Duration `mapstructure:"meter_value_sample_interval"`
	ClockAlignedDataInterval     time.Duration `mapstructure:"clock_aligned_data_interval"`
	MeterValuesSampledData       []string      `mapstructure:"meter_values_sampled_data"`
	MeterValuesAlignedData       []string      `mapstructure:"meter_values_aligned_data"`
	StopTxnSampledData           []string      `mapstructure:"stop_txn_sampled_data"`
	StopTxnAlignedData           []string      `mapstructure:"stop_txn_aligned_data"`
	StopTxnSampledDataMaxLength  int           `mapstructure:"stop_txn_sampled_data_max_length"`
	StopTxnAlignedDataMaxLength  int           `mapstructure:"stop_txn_aligned_data_max_length"`
	MaxChargingProfilesInstalled int           `mapstructure:"max_charging_profiles_installed"`
	AuthorizationCacheEnabled    bool          `mapstructure:"authorization_cache_enabled"`
	AuthorizationCacheMaxSize    int           `mapstructure:"authorization_cache_max_size"`
	LocalAuthListEnabled         bool          `mapstructure:"local_auth_list_enabled"`
	LocalAuthListMaxLength       int           `mapstructure:"local_auth_list_max_length"`
	LocalPreAuthorize            bool          `mapstructure:"local_pre_authorize"`
	LocalAuthorizeOffline        bool          `mapstructure:"local_authorize_offline"`
	StopTransactionOnInvalidId   bool          `mapstructure:"stop_transaction_on_invalid_id"`
	SecurityLogMaxEntries        int           `mapstructure:"security_log_max_entries"`
	OperatingVoltage             float64       `mapstructure:"operating_voltage"`
}

// StorageConfig points at the embedded relational store.
type StorageConfig struct {
	DatabasePath string        `mapstructure:"database_path"`
	BusyTimeout  time.Duration `mapstructure:"busy_timeout"`
}

// RedisConfig configures the optional distributed presence mirror.
type RedisConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	PresenceTTL time.Duration `mapstructure:"presence_ttl"`
}

// KafkaConfig configures the optional lifecycle/security event sink.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// LogConfig mirrors logger.Config in mapstructure form.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
	Async  bool   `mapstructure:"async"`
}

// MonitoringConfig exposes Prometheus and health endpoints.
type MonitoringConfig struct {
	MetricsAddr     string `mapstructure:"metrics_addr"`
	HealthCheckPort int    `mapstructure:"health_check_port"`
}

// Load reads configuration using the layered precedence described above.
func Load() (*Config, error) {
	setDefaults()

	profile := getProfile()
	fmt.Printf("Loading configuration for profile: %s\n", profile)

	if err := loadConfigFile("application"); err != nil {
		fmt.Printf("Warning: could not load default config file: %v\n", err)
	}

	if profile != "" {
		configName := fmt.Sprintf("application-%s", profile)
		if err := loadConfigFile(configName); err != nil {
			fmt.Printf("Warning: could not load profile config file %s: %v\n", configName, err)
		}
	}

	setupEnvironmentVariables()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.App.Profile = profile
	return &cfg, nil
}

func getProfile() string {
	if profile := os.Getenv("APP_PROFILE"); profile != "" {
		return profile
	}
	if profile := viper.GetString("app.profile"); profile != "" {
		return profile
	}
	return "local"
}

func loadConfigFile(configName string) error {
	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	return viper.MergeInConfig()
}

func setupEnvironmentVariables() {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.BindEnv("central_system.url", "CS_URL")
	viper.BindEnv("central_system.charge_point_identifier", "CP_IDENTIFIER")
	viper.BindEnv("central_system.authorization_key", "CS_AUTH_KEY")
	viper.BindEnv("log.level", "LOG_LEVEL")
	viper.BindEnv("monitoring.health_check_port", "MONITORING_HEALTH_CHECK_PORT")
	viper.BindEnv("app.profile", "APP_PROFILE")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		list := strings.Split(brokers, ",")
		for i, b := range list {
			list[i] = strings.TrimSpace(b)
		}
		viper.Set("kafka.brokers", list)
	}
}

func setDefaults() {
	viper.SetDefault("app.name", "chargepoint-client")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.profile", "local")

	viper.SetDefault("identity.charge_point_vendor", "GenericVendor")
	viper.SetDefault("identity.charge_point_model", "GenericModel")

	viper.SetDefault("central_system.charge_point_identifier", "CP001")
	viper.SetDefault("central_system.url", "ws://localhost:8080/ocpp")
	viper.SetDefault("central_system.security_profile", 0)
	viper.SetDefault("central_system.connection_timeout", "30s")
	viper.SetDefault("central_system.call_timeout", "30s")
	viper.SetDefault("central_system.retry_interval", "10s")
	viper.SetDefault("central_system.reconnect_backoff_min", "1s")
	viper.SetDefault("central_system.reconnect_backoff_max", "2m")

	viper.SetDefault("ocpp.number_of_connectors", 1)
	viper.SetDefault("ocpp.heartbeat_interval", "300s")
	viper.SetDefault("ocpp.min_status_duration", "0s")
	viper.SetDefault("ocpp.meter_value_sample_interval", "60s")
	viper.SetDefault("ocpp.clock_aligned_data_interval", "0s")
	viper.SetDefault("ocpp.meter_values_sampled_data", []string{"Energy.Active.Import.Register"})
	viper.SetDefault("ocpp.meter_values_aligned_data", []string{"Energy.Active.Import.Register"})
	viper.SetDefault("ocpp.stop_txn_sampled_data_max_length", 0)
	viper.SetDefault("ocpp.stop_txn_aligned_data_max_length", 0)
	viper.SetDefault("ocpp.max_charging_profiles_installed", 10)
	viper.SetDefault("ocpp.authorization_cache_enabled", true)
	viper.SetDefault("ocpp.authorization_cache_max_size", 1000)
	viper.SetDefault("ocpp.local_auth_list_enabled", true)
	viper.SetDefault("ocpp.local_auth_list_max_length", 1000)
	viper.SetDefault("ocpp.local_pre_authorize", false)
	viper.SetDefault("ocpp.local_authorize_offline", true)
	viper.SetDefault("ocpp.stop_transaction_on_invalid_id", true)
	viper.SetDefault("ocpp.security_log_max_entries", 500)
	viper.SetDefault("ocpp.operating_voltage", 230.0)

	viper.SetDefault("storage.database_path", "./data/chargepoint.db")
	viper.SetDefault("storage.busy_timeout", "5s")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.dial_timeout", "5s")
	viper.SetDefault("redis.presence_ttl", "2m")

	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topic", "chargepoint-events")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")

	viper.SetDefault("monitoring.metrics_addr", ":9090")
	viper.SetDefault("monitoring.health_check_port", 8081)
}

// GetMetricsAddr returns the Prometheus listen address.
func (c *Config) GetMetricsAddr() string { return c.Monitoring.MetricsAddr }

// GetHealthCheckAddr returns the health-check listen address.
func (c *Config) GetHealthCheckAddr() string {
	return fmt.Sprintf(":%d", c.Monitoring.HealthCheckPort)
}

// WebSocketURL returns the dial URL, forcing wss:// when the security
// profile requires TLS (profile >= 2).
func (c *Config) WebSocketURL() string {
	url := strings.TrimRight(c.CentralSystem.Url, "/") + "/" + c.CentralSystem.ChargePointIdentifier
	if c.CentralSystem.SecurityProfile >= 2 {
		url = strings.Replace(url, "ws://", "wss://", 1)
	}
	return url
}

// IsProduction reports whether the active profile is "prod".
func (c *Config) IsProduction() bool { return c.App.Profile == "prod" }
