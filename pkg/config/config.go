package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cuemby/hutch/pkg/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. HUTCH_DATA_DIR
const EnvPrefix = "HUTCH"

// DefaultDataDir holds the configuration database unless overridden
const DefaultDataDir = "/var/lib/hutch"

// Config holds all configuration for the hutch tools.
type Config struct {
	DataDir string          `mapstructure:"data_dir" validate:"required"`
	Logging LoggingConfig   `mapstructure:"logging"`
	Metrics MetricsConfig   `mapstructure:"metrics"`
	Cluster ClusterDefaults `mapstructure:"cluster"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// MetricsConfig holds metrics export configuration.
type MetricsConfig struct {
	// TextfilePath is where verify writes metrics; empty disables export
	TextfilePath string `mapstructure:"textfile_path" validate:"omitempty,filepath"`
}

// ClusterDefaults seed the cluster object created by "hutch init".
type ClusterDefaults struct {
	Name                 string   `mapstructure:"name" validate:"omitempty,hostname_rfc1123"`
	VolumeGroup          string   `mapstructure:"volume_group" validate:"required"`
	FileStorageDir       string   `mapstructure:"file_storage_dir" validate:"required"`
	EnabledHypervisors   []string `mapstructure:"enabled_hypervisors" validate:"min=1,dive,hypervisor"`
	EnabledDiskTemplates []string `mapstructure:"enabled_disk_templates" validate:"min=1,dive,disk_template"`
}

// Hypervisors returns the configured hypervisors as typed values.
func (c ClusterDefaults) Hypervisors() []types.HypervisorType {
	out := make([]types.HypervisorType, 0, len(c.EnabledHypervisors))
	for _, hv := range c.EnabledHypervisors {
		out = append(out, types.HypervisorType(hv))
	}
	return out
}

// DiskTemplates returns the configured disk templates as typed values.
func (c ClusterDefaults) DiskTemplates() []types.DiskTemplate {
	out := make([]types.DiskTemplate, 0, len(c.EnabledDiskTemplates))
	for _, dt := range c.EnabledDiskTemplates {
		out = append(out, types.DiskTemplate(dt))
	}
	return out
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("hutch")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/hutch")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DefaultDataDir)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.textfile_path", "")

	v.SetDefault("cluster.name", "")
	v.SetDefault("cluster.volume_group", types.DefaultVGName)
	v.SetDefault("cluster.file_storage_dir", types.DefaultFileStorageDir)
	v.SetDefault("cluster.enabled_hypervisors", []string{string(types.DefaultEnabledHypervisor)})
	v.SetDefault("cluster.enabled_disk_templates", templateNames(types.DefaultEnabledDiskTemplates))
}

func templateNames(dts []types.DiskTemplate) []string {
	out := make([]string, 0, len(dts))
	for _, dt := range dts {
		out = append(out, string(dt))
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "hypervisor", func(fl validator.FieldLevel) bool {
		return types.ValidHypervisor(types.HypervisorType(fl.Field().String()))
	})
	mustRegister(v, "disk_template", func(fl validator.FieldLevel) bool {
		return types.ValidDiskTemplate(types.DiskTemplate(fl.Field().String()))
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("config: register %q validation: %v", tag, err))
	}
}

// Validate checks struct constraints and reports every failing field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return types.NewConfigurationError("invalid configuration: %s", strings.Join(msgs, "; "))
}
