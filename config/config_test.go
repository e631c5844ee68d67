package config

import (
	"testing"
	"time"
)

func TestParseChatTarget(t *testing.T) {
	cases := []struct {
		in       string
		chatID   int64
		threadID int
		wantErr  bool
	}{
		{"-1001234567890", -1001234567890, 0, false},
		{"-1001234567890/4", -1001234567890, 4, false},
		{"1001234567890", -1001234567890, 0, false},
		{"-1001234567890/4  # managers topic", -1001234567890, 4, false},
		{"", 0, 0, false},
		{"-100/2/3", 0, 0, true},
		{"abc", 0, 0, true},
		{"-100/xyz", 0, 0, true},
	}
	for _, c := range cases {
		chatID, threadID, err := parseChatTarget(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseChatTarget(%q): expected error, got %d/%d", c.in, chatID, threadID)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseChatTarget(%q): %v", c.in, err)
			continue
		}
		if chatID != c.chatID || threadID != c.threadID {
			t.Errorf("parseChatTarget(%q) = %d/%d, want %d/%d", c.in, chatID, threadID, c.chatID, c.threadID)
		}
	}
}

func TestPostgresDSNFromParts(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "intake")
	t.Setenv("DB_USER", "bot")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_SSLMODE", "")

	got := postgresDSNFromParts()
	want := "host=localhost port=5432 dbname=intake sslmode=disable user=bot password=secret"
	if got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}

	t.Setenv("DB_HOST", "")
	if got := postgresDSNFromParts(); got != "" {
		t.Errorf("dsn without DB_HOST = %q, want empty", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL_FLAG", "yes")
	if !getEnvBool("TEST_BOOL_FLAG", false) {
		t.Error("yes should parse as true")
	}
	t.Setenv("TEST_BOOL_FLAG", "off")
	if getEnvBool("TEST_BOOL_FLAG", true) {
		t.Error("off should parse as false")
	}
	t.Setenv("TEST_BOOL_FLAG", "maybe")
	if !getEnvBool("TEST_BOOL_FLAG", true) {
		t.Error("unparseable value should fall back to default")
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION_SECONDS", "90")
	if got := getEnvDuration("TEST_DURATION_SECONDS", time.Minute); got != 90*time.Second {
		t.Errorf("duration = %v, want 90s", got)
	}
	t.Setenv("TEST_DURATION_SECONDS", "")
	if got := getEnvDuration("TEST_DURATION_SECONDS", time.Minute); got != time.Minute {
		t.Errorf("duration = %v, want default 1m", got)
	}
	t.Setenv("TEST_DURATION_SECONDS", "-5")
	if got := getEnvDuration("TEST_DURATION_SECONDS", time.Minute); got != time.Minute {
		t.Errorf("negative seconds should fall back to default, got %v", got)
	}
}
