package config

type SMSConfig struct {
	Provider           string        `yaml:"provider"` // none, twilio, sns
	DefaultCountryCode string        `yaml:"default_country_code"`
	Twilio             *TwilioConfig `yaml:"twilio"`
	AWS                *AWSSNSConfig `yaml:"aws"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type AWSSNSConfig struct {
	Region string `yaml:"region"`
}

func loadSMSConfig() *SMSConfig {
	return &SMSConfig{
		Provider:           getEnv("SMS_PROVIDER", "none"),
		DefaultCountryCode: getEnv("SMS_DEFAULT_COUNTRY_CODE", "91"),
		Twilio: &TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
		AWS: &AWSSNSConfig{
			Region: getEnv("AWS_REGION", "ap-south-1"),
		},
	}
}
