package logger

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		level, env string
		want       slog.Level
	}{
		{"debug", "prod", slog.LevelDebug},
		{"INFO", "dev", slog.LevelInfo},
		{"warning", "dev", slog.LevelWarn},
		{"error", "dev", slog.LevelError},
		{"", "prod", slog.LevelInfo},
		{"bogus", "dev", slog.LevelDebug},
	}
	for _, c := range cases {
		if got := parseLevel(c.level, c.env); got != c.want {
			t.Errorf("parseLevel(%q,%q)=%v want %v", c.level, c.env, got, c.want)
		}
	}
}
