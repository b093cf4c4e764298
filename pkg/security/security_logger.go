package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventLoginSuccess         EventType = "login_success"
	EventLoginFailed          EventType = "login_failed"
	EventPasswordVerified     EventType = "password_verified"
	EventPasswordVerifyFailed EventType = "password_verify_failed"
	EventPasswordChange       EventType = "password_change"
	EventPasswordChangeFailed EventType = "password_change_failed"
	EventUserCreated          EventType = "user_created"
	EventUserCreateFailed     EventType = "user_create_failed"
	EventRateLimitTriggered   EventType = "rate_limit_triggered"
	EventUnauthorizedAccess   EventType = "unauthorized_access"
)

// eventLevels is derived from the event type, never from the caller
var eventLevels = map[EventType]zapcore.Level{
	EventLoginSuccess:         zapcore.InfoLevel,
	EventPasswordVerified:     zapcore.InfoLevel,
	EventPasswordChange:       zapcore.InfoLevel,
	EventUserCreated:          zapcore.InfoLevel,
	EventLoginFailed:          zapcore.WarnLevel,
	EventPasswordVerifyFailed: zapcore.WarnLevel,
	EventPasswordChangeFailed: zapcore.WarnLevel,
	EventUserCreateFailed:     zapcore.WarnLevel,
	EventRateLimitTriggered:   zapcore.WarnLevel,
	EventUnauthorizedAccess:   zapcore.WarnLevel,
}

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time
	Event        EventType
	SubjectType  string // "email", "ip", "shared"
	SubjectValue string // masked before logging
	IP           string
	RequestID    string
	Reason       string
}

// SecurityLogger provides structured logging for security events
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// NewSecurityLogger builds a production zap logger writing JSON to stdout.
func NewSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewSecurityLoggerWith(logger, serviceName, environment)
}

// NewSecurityLoggerWith wraps an existing zap logger (tests use zaptest/observer or zap.NewNop).
func NewSecurityLoggerWith(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// NopSecurityLogger discards every event.
func NopSecurityLogger() *SecurityLogger {
	return NewSecurityLoggerWith(zap.NewNop(), "", "")
}

// Log logs a security event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	level, ok := eventLevels[event.Event]
	if !ok {
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.String("service", sl.serviceName),
		zap.String("env", sl.environment),
		zap.String("event", string(event.Event)),
		zap.Time("event_time", event.Timestamp),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", maskValue(event.SubjectType, event.SubjectValue)))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

// LogCredentialEvent logs an auth outcome for email; an empty email means the shared secret.
func (sl *SecurityLogger) LogCredentialEvent(ctx context.Context, event EventType, email, reason string) {
	subjectType, subjectValue := "email", email
	if email == "" {
		subjectType, subjectValue = "shared", ""
	}
	sl.Log(ctx, SecurityEvent{
		Event:        event,
		SubjectType:  subjectType,
		SubjectValue: subjectValue,
		IP:           stringFromContext(ctx, ContextKeyClientIP),
		RequestID:    stringFromContext(ctx, ContextKeyRequestID),
		Reason:       reason,
	})
}

// LogRateLimitTriggered logs when rate limiting is triggered
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		RequestID:    requestID,
		Reason:       endpoint,
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

type contextKey string

// Request metadata the HTTP layer stores on the request context for security logs.
const (
	ContextKeyClientIP  contextKey = "security.client_ip"
	ContextKeyRequestID contextKey = "security.request_id"
)

// WithRequestMeta attaches client ip and request id to ctx.
func WithRequestMeta(ctx context.Context, ip, requestID string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, ip)
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// --- Helper Functions ---

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	atIndex := strings.IndexByte(email, '@')
	if len(email) < 3 || atIndex < 0 {
		return "***"
	}
	if atIndex <= 1 {
		return "***" + email[atIndex:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

// maskValue masks a value based on its type
func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "ip":
		return value
	default:
		return HashValue(value)
	}
}
