package publish

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type mqttLogger struct {
	logger *slog.Logger
	level  slog.Level
}

func newMqttLogger(logger *slog.Logger, level slog.Level) *mqttLogger {
	return &mqttLogger{logger: logger, level: level}
}

func (l *mqttLogger) Println(v ...any) {
	l.logger.Log(context.Background(), l.level, fmt.Sprint(v...))
}

func (l *mqttLogger) Printf(format string, v ...any) {
	l.logger.Log(context.Background(), l.level, fmt.Sprintf(format, v...))
}

var routeOnce sync.Once

// routeMqttLogs sends paho's package level loggers to slog. Paho only has
// globals for this, so it is done once per process.
func routeMqttLogs(logger *slog.Logger) {
	routeOnce.Do(func() {
		mqtt.CRITICAL = newMqttLogger(logger, slog.LevelError)
		mqtt.ERROR = newMqttLogger(logger, slog.LevelError)
		mqtt.WARN = newMqttLogger(logger, slog.LevelWarn)
	})
}
