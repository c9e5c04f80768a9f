package authorize

import (
	"context"
	"fmt"
	"log/slog"
)

// DefaultPolicies is the complete RBAC policy set.
var DefaultPolicies = []PermissionPolicy{
	// Managers run the shop.
	{RoleManager, ResourceAppointment, WildcardAction, EffectAllow},
	{RoleManager, ResourcePayment, WildcardAction, EffectAllow},
	{RoleManager, ResourceMechanic, WildcardAction, EffectAllow},
	{RoleManager, ResourceCustomer, ActionRead, EffectAllow},
	{RoleManager, ResourceCustomer, ActionList, EffectAllow},
	{RoleManager, ResourceSchedule, ActionRead, EffectAllow},
	{RoleManager, ResourceTimeEntry, ActionList, EffectAllow},
	// Clocking in is a technician's own act.
	{RoleManager, ResourceTimeEntry, ActionExecute, EffectDeny},

	// Mechanics own their availability, time and jobs.
	{RoleMechanic, ResourceAvailability, WildcardAction, EffectAllow},
	{RoleMechanic, ResourceSchedule, WildcardAction, EffectAllow},
	{RoleMechanic, ResourceTimeEntry, ActionExecute, EffectAllow},
	{RoleMechanic, ResourceTimeEntry, ActionRead, EffectAllow},
	{RoleMechanic, ResourceAppointment, ActionList, EffectAllow},
	{RoleMechanic, ResourceAppointment, ActionExecute, EffectAllow},
	{RoleMechanic, ResourcePayment, WildcardAction, EffectDeny},
}

func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	for _, p := range DefaultPolicies {
		if _, err := auth.AddPermission(ctx, p); err != nil {
			return fmt.Errorf("add policy %s %s %s: %w", p.Subject, p.Object, p.Action, err)
		}
	}
	slog.InfoContext(ctx, "seeded default RBAC policies", "count", len(DefaultPolicies))
	return nil
}
