package config

import "time"

type EventsConfig struct {
	KafkaBrokers []string      `yaml:"kafka_brokers"`
	KafkaTopic   string        `yaml:"kafka_topic"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

func loadEventsConfig() *EventsConfig {
	return &EventsConfig{
		KafkaBrokers: getEnvAsSlice("KAFKA_BROKERS", nil),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "help-request-events"),
		WriteTimeout: getEnvAsDuration("KAFKA_WRITE_TIMEOUT", 2*time.Second),
	}
}
