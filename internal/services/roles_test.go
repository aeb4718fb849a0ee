package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greencycle/ecollect/internal/models"
)

func TestResolveRole(t *testing.T) {
	companyID := "company-1"

	cases := []struct {
		name string
		user *models.User
		want Role
	}{
		{"nil user", nil, RoleCustomer},
		{"staff", &models.User{IsStaff: true}, RoleStaff},
		{
			"staff wins over company membership",
			&models.User{IsStaff: true, Profile: &models.UserProfile{IsCompany: true, CompanyID: &companyID}},
			RoleStaff,
		},
		{
			"company member",
			&models.User{Profile: &models.UserProfile{IsCompany: true, CompanyID: &companyID}},
			RoleCompanyMember,
		},
		{
			"company flag without company link still counts",
			&models.User{Profile: &models.UserProfile{IsCompany: true}},
			RoleCompanyMember,
		},
		{"profile without company flag", &models.User{Profile: &models.UserProfile{}}, RoleCustomer},
		{"no profile", &models.User{}, RoleCustomer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveRole(tc.user))
		})
	}
}

func TestActorFromUser(t *testing.T) {
	companyID := "company-1"
	user := &models.User{
		Username: "acme-rep",
		Email:    "rep@acme.example",
		Profile:  &models.UserProfile{IsCompany: true, CompanyID: &companyID},
	}
	user.ID = "user-1"

	actor := ActorFromUser(user)
	assert.Equal(t, "user-1", actor.UserID)
	assert.Equal(t, "acme-rep", actor.Username)
	assert.Equal(t, RoleCompanyMember, actor.Role)
	assert.NotNil(t, actor.CompanyID)
	assert.Equal(t, companyID, *actor.CompanyID)

	// The snapshot must not alias profile state.
	*actor.CompanyID = "mutated"
	assert.Equal(t, "company-1", *user.Profile.CompanyID)
}

func TestActorPermissions(t *testing.T) {
	assert.True(t, Actor{Role: RoleStaff}.CanManagePickups())
	assert.True(t, Actor{Role: RoleCompanyMember}.CanManagePickups())
	assert.False(t, Actor{Role: RoleCustomer}.CanManagePickups())

	assert.True(t, Actor{Role: RoleStaff}.IsStaff())
	assert.False(t, Actor{Role: RoleCompanyMember}.IsStaff())
}
