package app

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNonZeroDuration(t *testing.T) {
	t.Parallel()

	if got := nonZeroDuration(0, 5*time.Second); got != 5*time.Second {
		t.Fatalf("nonZeroDuration(0)=%v want 5s", got)
	}
	if got := nonZeroDuration(-time.Second, 5*time.Second); got != 5*time.Second {
		t.Fatalf("nonZeroDuration(-1s)=%v want 5s", got)
	}
	if got := nonZeroDuration(2*time.Second, 5*time.Second); got != 2*time.Second {
		t.Fatalf("nonZeroDuration(2s)=%v want 2s", got)
	}
}

func TestNonZeroInt(t *testing.T) {
	t.Parallel()

	if got := nonZeroInt(0, 1<<20); got != 1<<20 {
		t.Fatalf("nonZeroInt(0)=%d want %d", got, 1<<20)
	}
	if got := nonZeroInt(4096, 1<<20); got != 4096 {
		t.Fatalf("nonZeroInt(4096)=%d want 4096", got)
	}
}

func TestMigrateURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "postgres://u:p@localhost:5432/bastion", want: "pgx5://u:p@localhost:5432/bastion"},
		{in: "postgresql://localhost/bastion", want: "pgx5://localhost/bastion"},
		{in: "pgx5://localhost/bastion", want: "pgx5://localhost/bastion"},
	}

	for _, tc := range cases {
		if got := migrateURL(tc.in); got != tc.want {
			t.Fatalf("migrateURL(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestNew_RequiresDatabaseURL(t *testing.T) {
	cfg := Config{HTTPAddr: "127.0.0.1:0"}

	if _, err := New(cfg, testLogger()); err == nil {
		t.Fatalf("expected error when BASTION_DATABASE_URL is empty")
	}
}
