package authorize

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newSeeded(t *testing.T) IAuthorization {
	t.Helper()
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	a, err := NewAuthorization(e)
	if err != nil {
		t.Fatalf("NewAuthorization() error = %v", err)
	}
	if err := SeedDefaultPolicies(context.Background(), a); err != nil {
		t.Fatalf("SeedDefaultPolicies() error = %v", err)
	}
	return a
}

func TestDefaultPolicies(t *testing.T) {
	auth := newSeeded(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		role   Role
		object Resource
		action Action
		want   bool
	}{
		{"manager assigns appointments", RoleManager, ResourceAppointment, ActionUpdate, true},
		{"manager records payment", RoleManager, ResourcePayment, ActionUpdate, true},
		{"manager deletes mechanic", RoleManager, ResourceMechanic, ActionDelete, true},
		{"manager lists customers", RoleManager, ResourceCustomer, ActionList, true},
		{"manager cannot edit customers", RoleManager, ResourceCustomer, ActionUpdate, false},
		{"manager reads time report", RoleManager, ResourceTimeEntry, ActionList, true},
		{"manager cannot clock in", RoleManager, ResourceTimeEntry, ActionExecute, false},
		{"mechanic edits availability", RoleMechanic, ResourceAvailability, ActionCreate, true},
		{"mechanic replaces schedule", RoleMechanic, ResourceSchedule, ActionUpdate, true},
		{"mechanic clocks in", RoleMechanic, ResourceTimeEntry, ActionExecute, true},
		{"mechanic completes job", RoleMechanic, ResourceAppointment, ActionExecute, true},
		{"mechanic cannot assign", RoleMechanic, ResourceAppointment, ActionUpdate, false},
		{"mechanic cannot touch payments", RoleMechanic, ResourcePayment, ActionRead, false},
		{"mechanic cannot manage staff", RoleMechanic, ResourceMechanic, ActionCreate, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.Enforce(ctx, tt.role, tt.object, tt.action)
			if err != nil {
				t.Fatalf("Enforce() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.role, tt.object, tt.action, got, tt.want)
			}
		})
	}
}

func TestEnforceRejectsUnknownArgs(t *testing.T) {
	auth := newSeeded(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		role   Role
		object Resource
		action Action
	}{
		{"unknown role", Role("role:customer"), ResourceAppointment, ActionRead},
		{"unknown resource", RoleManager, Resource("clinic"), ActionRead},
		{"unknown action", RoleManager, ResourceAppointment, Action("fly")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.Enforce(ctx, tt.role, tt.object, tt.action); !errors.Is(err, ErrInvalidArgs) {
				t.Errorf("Enforce() error = %v, want ErrInvalidArgs", err)
			}
		})
	}
}

func TestMustEnforce(t *testing.T) {
	auth := newSeeded(t)
	if err := auth.MustEnforce(context.Background(), RoleMechanic, ResourceMechanic, ActionDelete); !errors.Is(err, ErrForbidden) {
		t.Errorf("MustEnforce() error = %v, want ErrForbidden", err)
	}
	if err := auth.MustEnforce(context.Background(), RoleManager, ResourceMechanic, ActionDelete); err != nil {
		t.Errorf("MustEnforce() error = %v, want nil", err)
	}
}

func TestAuditedAuthorizationLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	auth := NewAuditedAuthorization(newSeeded(t), logger)

	if _, err := auth.Enforce(context.Background(), RoleMechanic, ResourcePayment, ActionRead); err != nil {
		t.Fatalf("Enforce() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "allowed=false") {
		t.Errorf("denial not audited at warn: %q", out)
	}
}

func TestRoleFor(t *testing.T) {
	if r, ok := RoleFor("manager"); !ok || r != RoleManager {
		t.Errorf("RoleFor(manager) = %q, %v", r, ok)
	}
	if _, ok := RoleFor("customer"); ok {
		t.Error("RoleFor(customer) should not resolve")
	}
}
