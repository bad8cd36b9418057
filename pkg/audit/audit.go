// Package audit records who changed which contact. Events go to a
// dedicated zap logger so they can be shipped separately from the
// application log.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/cases"
)

type EventType string

const (
	EventContactCreated     EventType = "contact_created"
	EventContactUpdated     EventType = "contact_updated"
	EventContactDeleted     EventType = "contact_deleted"
	EventDuplicateRejected  EventType = "duplicate_name_rejected"
	EventDataExport         EventType = "data_export"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
)

// Event is one audit record. Contact names and emails never appear in
// clear text; NameHash lets two records about the same name be matched.
type Event struct {
	Timestamp time.Time
	Event     EventType
	ContactID int64
	NameHash  string
	IP        string
	RequestID string
	Details   map[string]string
}

type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// New builds a JSON audit logger on stdout.
func New(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return &Logger{zapLogger: logger, serviceName: serviceName, environment: environment}
}

// NewWithCore is New over a caller supplied core.
func NewWithCore(core zapcore.Core, serviceName, environment string) *Logger {
	return &Logger{zapLogger: zap.New(core), serviceName: serviceName, environment: environment}
}

// Nop discards every event.
func Nop() *Logger {
	return &Logger{zapLogger: zap.NewNop()}
}

func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = RequestIDFrom(ctx)
	}

	level := zapcore.InfoLevel
	switch event.Event {
	case EventContactDeleted, EventDataExport, EventDuplicateRejected:
		level = zapcore.WarnLevel
	case EventRateLimitTriggered:
		level = zapcore.ErrorLevel
	}

	fields := []zap.Field{
		zap.String("service", l.serviceName),
		zap.String("env", l.environment),
		zap.String("event", string(event.Event)),
		zap.Time("occurred_at", event.Timestamp),
	}
	if event.ContactID != 0 {
		fields = append(fields, zap.Int64("contact_id", event.ContactID))
	}
	if event.NameHash != "" {
		fields = append(fields, zap.String("name_hash", event.NameHash))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String(k, v))
	}

	l.zapLogger.Log(level, string(event.Event), fields...)
}

func (l *Logger) ContactChanged(ctx context.Context, event EventType, id int64, name string) {
	l.Log(ctx, Event{Event: event, ContactID: id, NameHash: HashValue(name)})
}

func (l *Logger) DuplicateRejected(ctx context.Context, name string, conflictingID int64) {
	l.Log(ctx, Event{Event: EventDuplicateRejected, ContactID: conflictingID, NameHash: HashValue(name)})
}

func (l *Logger) RateLimitTriggered(ctx context.Context, ip, path string) {
	l.Log(ctx, Event{Event: EventRateLimitTriggered, IP: ip, Details: map[string]string{"path": path}})
}

// Sync flushes buffered events.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.zapLogger.Sync()
}

// HashValue is a short, stable fingerprint of value under case folding.
func HashValue(value string) string {
	sum := sha256.Sum256([]byte(cases.Fold().String(value)))
	return hex.EncodeToString(sum[:8])
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
