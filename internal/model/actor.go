package model

import "github.com/google/uuid"

type Role string

const (
	RoleManager  Role = "manager"
	RoleMechanic Role = "mechanic"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleManager || r == RoleMechanic || r == RoleCustomer
}

// Actor is the caller on whose behalf a service operation runs. Customers are
// anonymous and carry a zero ID.
type Actor struct {
	Role Role
	ID   uuid.UUID
}

func CustomerActor() Actor { return Actor{Role: RoleCustomer} }

func ManagerActor(id uuid.UUID) Actor { return Actor{Role: RoleManager, ID: id} }

func MechanicActor(id uuid.UUID) Actor { return Actor{Role: RoleMechanic, ID: id} }

func (a Actor) IsManager() bool { return a.Role == RoleManager }

func (a Actor) IsMechanic(id uuid.UUID) bool { return a.Role == RoleMechanic && a.ID == id }
