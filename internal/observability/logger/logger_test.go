package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	obscontext "github.com/smallbiznis/polarops/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestWithContextAddsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-7")
	ctx = obscontext.WithOrgID(ctx, "99")
	WithContext(ctx, base).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-7" {
		t.Fatalf("expected request_id req-7, got %v", fields["request_id"])
	}
	if fields["org_id"] != "99" {
		t.Fatalf("expected org_id 99, got %v", fields["org_id"])
	}
	if _, ok := fields["trace_id"]; !ok {
		t.Fatalf("expected trace_id field")
	}
}

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT * FROM equipment":                 "SELECT",
		"  insert into temperature_readings (id)": "INSERT",
		"WITH x AS (SELECT 1) UPDATE equipment":   "SELECT",
		"":                                        "UNKNOWN",
		"PRAGMA foreign_keys = ON":                "UNKNOWN",
	}
	for sql, want := range cases {
		if got := operationFromSQL(sql); got != want {
			t.Fatalf("operationFromSQL(%q) = %q, want %q", sql, got, want)
		}
	}
}

func TestGormLoggerReportsSlowAndFailedStatements(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gl := NewGormLogger(zap.New(core), DefaultGormLoggerConfig())
	ctx := obscontext.WithRequestID(context.Background(), "req-9")
	stmt := func() (string, int64) { return " SELECT * FROM temperature_readings WHERE equipment_id = ? ", 3 }

	gl.Trace(ctx, time.Now(), stmt, nil)
	gl.Trace(ctx, time.Now(), stmt, gormlogger.ErrRecordNotFound)
	if n := logs.Len(); n != 0 {
		t.Fatalf("expected fast and not-found statements to be quiet, got %d entries", n)
	}

	gl.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	gl.Trace(ctx, time.Now(), stmt, errors.New("disk full"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	slow, failed := entries[0], entries[1]
	if slow.Level != zap.WarnLevel || slow.LoggerName != DBLoggerName || slow.Message != "db.query" {
		t.Fatalf("unexpected slow entry %+v", slow.Entry)
	}
	fields := slow.ContextMap()
	if fields["operation"] != "SELECT" || fields["slow"] != true || fields["request_id"] != "req-9" {
		t.Fatalf("unexpected slow fields %v", fields)
	}
	if fields["sql"] != "SELECT * FROM temperature_readings WHERE equipment_id = ?" {
		t.Fatalf("expected trimmed sql, got %v", fields["sql"])
	}
	if failed.Level != zap.ErrorLevel || failed.ContextMap()["error"] != "disk full" {
		t.Fatalf("unexpected failed entry %+v %v", failed.Entry, failed.ContextMap())
	}
}

func TestGormLoggerSilentAndParamsFilter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	gl := NewGormLogger(zap.New(core), DefaultGormLoggerConfig()).LogMode(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "DELETE FROM equipment", 1 }, errors.New("boom"))
	gl.Error(context.Background(), "failed %s", "migration")
	if logs.Len() != 0 {
		t.Fatalf("silent logger wrote %d entries", logs.Len())
	}

	sql, params := NewGormLogger(nil, DefaultGormLoggerConfig()).ParamsFilter(context.Background(), "SELECT ?", "secret")
	if sql != "SELECT ?" || params != nil {
		t.Fatalf("expected params dropped, got %q %v", sql, params)
	}
}
