package sysutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetLogLevel(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetupLogger_JSONAndLevel(t *testing.T) {
	origLevel, origLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(origLevel)
		log.Logger = origLogger
	})

	var buf bytes.Buffer
	SetupLogger(&buf, "warn", false)
	log.Info().Msg("hidden")
	log.Warn().Str("recipe", "Pancakes").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"recipe":"Pancakes"`) || !strings.Contains(out, `"service":"recipe-book"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("FirstNonEmpty() = %q", got)
	}
	if got := FirstNonEmpty(" ", "\t"); got != "" {
		t.Fatalf("FirstNonEmpty(blanks) = %q", got)
	}
	if got := FirstNonEmpty("   ", "  v1.2  ", "dev"); got != "  v1.2  " {
		t.Fatalf("FirstNonEmpty = %q", got)
	}
}
