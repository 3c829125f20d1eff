package db

import (
	"testing"

	"github.com/smallbiznis/polarops/internal/config"
)

func TestDialectSelectsDriver(t *testing.T) {
	cases := map[string]string{
		"postgres": "postgres",
		"mysql":    "mysql",
		"sqlite":   "sqlite",
	}
	for dbType, want := range cases {
		dialector, err := Dialect(config.Config{DBType: dbType, DBName: "polarops"})
		if err != nil {
			t.Fatalf("dialect %s: %v", dbType, err)
		}
		if got := dialector.Name(); got != want {
			t.Fatalf("dialect %s: expected %s, got %s", dbType, want, got)
		}
	}
}

func TestDialectRejectsUnknown(t *testing.T) {
	if _, err := Dialect(config.Config{DBType: "oracle"}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
