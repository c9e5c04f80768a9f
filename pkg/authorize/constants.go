package authorize

type Action string
type Resource string
type Role string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionList    Action = "list"
	ActionExecute Action = "execute" // lifecycle moves: start, complete, check in

	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {}, ActionExecute: {},
}

const (
	WildcardResource Resource = "*"

	ResourceAppointment  Resource = "appointment"
	ResourcePayment      Resource = "payment"
	ResourceMechanic     Resource = "mechanic"
	ResourceSchedule     Resource = "schedule"
	ResourceAvailability Resource = "availability"
	ResourceTimeEntry    Resource = "time_entry"
	ResourceCustomer     Resource = "customer"
)

var KnownResources = map[Resource]struct{}{
	ResourceAppointment: {}, ResourcePayment: {}, ResourceMechanic: {}, ResourceSchedule: {},
	ResourceAvailability: {}, ResourceTimeEntry: {}, ResourceCustomer: {},
}

// Roles are the policy subjects. A caller's role comes from their access
// token; customers never reach an authorized route.
const (
	RoleManager  Role = "role:manager"
	RoleMechanic Role = "role:mechanic"
)

var KnownRoles = map[Role]struct{}{
	RoleManager:  {},
	RoleMechanic: {},
}

// RoleFor maps a token role claim ("manager", "mechanic") to its policy subject.
func RoleFor(claim string) (Role, bool) {
	r := Role("role:" + claim)
	_, ok := KnownRoles[r]
	return r, ok
}

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// PermissionPolicy is one p row: p, role, resource, action, eft.
type PermissionPolicy struct {
	Subject Role
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
