package sweeper_config

import (
	"time"

	"github.com/snapfeed/snapfeed/internal/obs"
	pginfra "github.com/snapfeed/snapfeed/internal/repository/postgres"
)

type SweepCfg struct {
	Tick          time.Duration `mapstructure:"tick"`
	SessionBatch  int           `mapstructure:"session_batch"`
	RetentionDays int           `mapstructure:"retention_days"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Config struct {
	DB       pginfra.Config `mapstructure:"db"`
	Sweep    SweepCfg       `mapstructure:"sweep"`
	Server   Server         `mapstructure:"server"`
	OTEL     OTEL           `mapstructure:"otel"`
	LogLevel string         `mapstructure:"log_level"`
}
