package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockAIChecker struct {
	err error
}

func (m *mockAIChecker) HealthCheck(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockAIChecker{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Fatalf("expected healthy, got %s", report.Status)
	}
	if report.Checks["database"] != CheckOK || report.Checks["ai"] != CheckOK {
		t.Fatalf("unexpected checks: %v", report.Checks)
	}
}

func TestCheck_DatabaseDown(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("connection refused")}, nil)

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Fatalf("expected degraded, got %s", report.Status)
	}
	if report.Checks["database"] != CheckError {
		t.Fatalf("unexpected checks: %v", report.Checks)
	}
}

func TestCheck_NilAICheckerSkipped(t *testing.T) {
	svc := New(&mockPinger{}, nil)

	report := svc.Check(context.Background())
	if _, ok := report.Checks["ai"]; ok {
		t.Fatal("expected no ai check when checker is nil")
	}
}
