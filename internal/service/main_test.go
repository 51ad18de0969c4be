package service

import (
	"log/slog"
	"os"
	"time"
)

// testNow is the fixed clock every service test runs under.
var testNow = time.Date(2026, time.March, 9, 9, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func strPtr(s string) *string {
	return &s
}
