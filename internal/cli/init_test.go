package cli

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"budgetbook/internal/config"
	applog "budgetbook/internal/log"
)

func TestSetupLoggerInstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"}, applog.ComponentWorker)

	if logger.Component() != applog.ComponentWorker {
		t.Errorf("Component() = %q", logger.Component())
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("default logger should have debug enabled")
	}
}

func TestNewCalculator(t *testing.T) {
	logger := applog.New(applog.Config{Level: slog.LevelError, Component: applog.ComponentApp})
	calc := NewCalculator(logger, &config.Config{CalendarTimezone: "UTC", CalendarLocale: "en-US"})

	cal := calc.Calendar()
	if cal.FirstWeekday != time.Sunday {
		t.Errorf("FirstWeekday = %v, want Sunday for en-US", cal.FirstWeekday)
	}
}

func TestInitAMQPDisabled(t *testing.T) {
	logger := applog.New(applog.Config{Level: slog.LevelError, Component: applog.ComponentApp})
	if client := InitAMQP(logger, &config.Config{}, false); client != nil {
		t.Errorf("InitAMQP() = %v, want nil without AMQP_URL", client)
	}
}
