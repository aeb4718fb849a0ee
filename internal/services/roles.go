package services

import "github.com/greencycle/ecollect/internal/models"

// Role is the resolved authority level of an account. Every account
// maps to exactly one role.
type Role string

const (
	RoleStaff         Role = "staff"
	RoleCompanyMember Role = "company_member"
	RoleCustomer      Role = "customer"
)

// ResolveRole derives the role for a user. Staff wins over company
// membership; an absent profile means customer.
func ResolveRole(user *models.User) Role {
	if user == nil {
		return RoleCustomer
	}
	if user.IsStaff {
		return RoleStaff
	}
	if user.Profile != nil && user.Profile.IsCompany {
		return RoleCompanyMember
	}
	return RoleCustomer
}

// Actor identifies the authenticated account performing an operation.
// Services take it explicitly rather than reading ambient request
// state.
type Actor struct {
	UserID    string
	Username  string
	Email     string
	Role      Role
	CompanyID *string
}

// ActorFromUser builds an Actor snapshot from a loaded user record.
func ActorFromUser(user *models.User) Actor {
	actor := Actor{Role: RoleCustomer}
	if user == nil {
		return actor
	}
	actor.UserID = user.ID
	actor.Username = user.Username
	actor.Email = user.Email
	actor.Role = ResolveRole(user)
	if user.Profile != nil && user.Profile.CompanyID != nil {
		id := *user.Profile.CompanyID
		actor.CompanyID = &id
	}
	return actor
}

// IsStaff reports whether the actor holds the staff role.
func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff
}

// CanManagePickups reports whether the actor may drive pickup requests
// through their lifecycle.
func (a Actor) CanManagePickups() bool {
	return a.Role == RoleStaff || a.Role == RoleCompanyMember
}
