package sms

import (
	"context"

	"roadside-rescue/pkg/logger"
)

// LogProvider only logs. It is used when no SMS provider is configured.
type LogProvider struct {
	logger *logger.Logger
}

func NewLogProvider(log *logger.Logger) *LogProvider {
	return &LogProvider{logger: log}
}

func (l *LogProvider) SendSMS(_ context.Context, request *SMSRequest) (*SMSResponse, error) {
	l.logger.WithFields(map[string]interface{}{
		"to":      request.To,
		"message": request.Message,
	}).Debug("SMS not sent, no provider configured")
	return &SMSResponse{Status: "skipped"}, nil
}
