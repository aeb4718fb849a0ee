package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/database/testutil"
	"github.com/greencycle/ecollect/internal/models"
	apperrors "github.com/greencycle/ecollect/pkg/errors"
)

// seedStatsScenario creates three reporters with mixed item and pickup
// states.
func seedStatsScenario(t *testing.T, db *gorm.DB) (alice, bob, carol models.User) {
	t.Helper()

	alice = models.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	bob = models.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	carol = models.User{Username: "carol", Email: "carol@example.com", Password: "x"}
	for _, u := range []*models.User{&alice, &bob, &carol} {
		require.NoError(t, db.Create(u).Error)
	}

	category := models.Category{Name: "Laptops & Computers"}
	require.NoError(t, db.Create(&category).Error)

	type seed struct {
		owner     *models.User
		name      string
		collected bool
		status    string
		category  bool
	}
	seeds := []seed{
		{&alice, "Laptop", true, models.PickupCompleted, true},
		{&alice, "Phone", false, models.PickupPending, false},
		{&bob, "Monitor", false, models.PickupScheduled, true},
		{&carol, "Printer", false, models.PickupCancelled, false},
	}
	for _, sd := range seeds {
		item := models.Item{
			UserID:    sd.owner.ID,
			Name:      sd.name,
			Condition: models.ConditionWorking,
			Quantity:  1,
			Collected: sd.collected,
		}
		if sd.category {
			item.CategoryID = &category.ID
		}
		require.NoError(t, db.Create(&item).Error)
		require.NoError(t, db.Create(&models.PickupRequest{ItemID: item.ID, Status: sd.status}).Error)
	}
	return alice, bob, carol
}

func TestStatsServiceGlobal(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	seedStatsScenario(t, db)

	svc, err := NewStatsService(db)
	require.NoError(t, err)

	stats, err := svc.Global(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 4, stats.TotalItems)
	assert.EqualValues(t, 1, stats.CollectedItems)
	assert.EqualValues(t, 2, stats.PendingPickups) // pending + scheduled
	assert.EqualValues(t, 1, stats.CompletedPickups)
	assert.EqualValues(t, 3, stats.TotalUsers)
	assert.EqualValues(t, 1, stats.TotalCategories)
}

func TestStatsServiceForUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	alice, _, _ := seedStatsScenario(t, db)

	svc, err := NewStatsService(db)
	require.NoError(t, err)

	stats, err := svc.ForUser(context.Background(), alice.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalItems)
	assert.EqualValues(t, 1, stats.CollectedItems)
	assert.EqualValues(t, 1, stats.PendingPickups)
	assert.EqualValues(t, 1, stats.CompletedPickups)
}

func TestStatsServiceByCategory(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	seedStatsScenario(t, db)

	svc, err := NewStatsService(db)
	require.NoError(t, err)

	counts, err := svc.ByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, "Laptops & Computers", counts[0].Name)
	assert.EqualValues(t, 2, counts[0].Count)
}

func TestStatsServiceDashboard(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	seedStatsScenario(t, db)

	staffUser := models.User{Username: "staff", Email: "staff@example.com", Password: "x", IsStaff: true}
	require.NoError(t, db.Create(&staffUser).Error)
	require.NoError(t, db.Create(&models.Notification{UserID: &staffUser.ID, Type: models.NotificationSystem, Title: "t"}).Error)

	company := models.Company{Name: "Acme Recycling", IsActive: true}
	require.NoError(t, db.Create(&company).Error)

	rep := models.User{Username: "rep", Email: "rep@acme.example", Password: "x"}
	require.NoError(t, db.Create(&rep).Error)
	require.NoError(t, db.Create(&models.UserProfile{UserID: rep.ID, IsCompany: true, CompanyID: &company.ID}).Error)

	svc, err := NewStatsService(db)
	require.NoError(t, err)

	ctx := context.Background()
	dashboard, err := svc.Dashboard(ctx, Actor{UserID: staffUser.ID, Role: RoleStaff})
	require.NoError(t, err)

	assert.Len(t, dashboard.PendingPickups, 1)
	assert.EqualValues(t, 1, dashboard.UnreadNotifications)
	assert.EqualValues(t, 1, dashboard.TotalCompanies)
	require.Len(t, dashboard.CompanyMembers, 1)
	assert.Equal(t, "rep", dashboard.CompanyMembers[0].Username)

	_, err = svc.Dashboard(ctx, Actor{Role: RoleCompanyMember})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestStatsServiceExportUserItems(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	alice, _, _ := seedStatsScenario(t, db)

	svc, err := NewStatsService(db)
	require.NoError(t, err)

	rows, err := svc.ExportUserItems(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Laptop", rows[0].Name)
	assert.Equal(t, "Laptops & Computers", rows[0].Category)
	assert.Equal(t, models.PickupCompleted, rows[0].PickupStatus)
	assert.True(t, rows[0].Collected)

	assert.Equal(t, "Phone", rows[1].Name)
	assert.Empty(t, rows[1].Category)
	assert.Equal(t, models.PickupPending, rows[1].PickupStatus)
}
