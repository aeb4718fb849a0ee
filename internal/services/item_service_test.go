package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greencycle/ecollect/internal/database/testutil"
	"github.com/greencycle/ecollect/internal/models"
	apperrors "github.com/greencycle/ecollect/pkg/errors"
)

type recordingDispatcher struct {
	items     []*models.Item
	reporters []*models.User
	err       error
}

func (d *recordingDispatcher) DispatchPickupCreated(_ context.Context, item *models.Item, reporter *models.User) error {
	d.items = append(d.items, item)
	d.reporters = append(d.reporters, reporter)
	return d.err
}

func TestItemServiceReport(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	customer := models.User{Username: "carol", Email: "carol@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&customer).Error)

	var category models.Category
	require.NoError(t, db.First(&category, "name = ?", "Smartphones").Error)

	dispatcher := &recordingDispatcher{}
	svc, err := NewItemService(db, dispatcher)
	require.NoError(t, err)

	actor := ActorFromUser(&customer)
	item, err := svc.Report(context.Background(), actor, ReportItemInput{
		Name:          "Old iPhone",
		Description:   "Cracked screen",
		CategoryID:    category.ID,
		Condition:     models.ConditionBroken,
		Quantity:      2,
		PickupAddress: "12 Green St",
		Images:        "uploads/iphone-front.jpg\nuploads/iphone-back.jpg",
	})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	assert.Equal(t, 2, item.Quantity)
	require.NotNil(t, item.CategoryID)

	var stored models.Item
	require.NoError(t, db.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, "uploads/iphone-front.jpg\nuploads/iphone-back.jpg", stored.Images)

	// The pending pickup request is created in the same transaction.
	var pickup models.PickupRequest
	require.NoError(t, db.First(&pickup, "item_id = ?", item.ID).Error)
	assert.Equal(t, models.PickupPending, pickup.Status)

	// Coordinators are alerted exactly once.
	require.Len(t, dispatcher.items, 1)
	assert.Equal(t, item.ID, dispatcher.items[0].ID)
	assert.Equal(t, customer.Username, dispatcher.reporters[0].Username)
}

func TestItemServiceReportDefaultsQuantity(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	customer := models.User{Username: "carol", Email: "carol@example.com", Password: "x"}
	require.NoError(t, db.Create(&customer).Error)

	svc, err := NewItemService(db, nil)
	require.NoError(t, err)

	item, err := svc.Report(context.Background(), ActorFromUser(&customer), ReportItemInput{
		Name:      "Keyboard",
		Condition: models.ConditionWorking,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
}

func TestItemServiceReportRejectsPrivilegedActors(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewItemService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	for _, role := range []Role{RoleStaff, RoleCompanyMember} {
		_, err := svc.Report(ctx, Actor{UserID: "u-1", Role: role}, ReportItemInput{
			Name:      "Monitor",
			Condition: models.ConditionWorking,
		})
		require.ErrorIs(t, err, apperrors.ErrForbidden)
	}

	var count int64
	require.NoError(t, db.Model(&models.Item{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestItemServiceReportValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	customer := models.User{Username: "carol", Email: "carol@example.com", Password: "x"}
	require.NoError(t, db.Create(&customer).Error)

	svc, err := NewItemService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	actor := ActorFromUser(&customer)

	_, err = svc.Report(ctx, actor, ReportItemInput{Condition: models.ConditionWorking})
	require.Error(t, err)

	_, err = svc.Report(ctx, actor, ReportItemInput{Name: "TV", Condition: "mint"})
	require.Error(t, err)

	_, err = svc.Report(ctx, actor, ReportItemInput{Name: "TV", Condition: models.ConditionWorking, Quantity: -1})
	require.Error(t, err)

	_, err = svc.Report(ctx, actor, ReportItemInput{Name: "TV", Condition: models.ConditionWorking, CategoryID: "missing"})
	require.Error(t, err)
}

func TestItemServiceReportSurvivesDispatchFailure(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	customer := models.User{Username: "carol", Email: "carol@example.com", Password: "x"}
	require.NoError(t, db.Create(&customer).Error)

	dispatcher := &recordingDispatcher{err: context.DeadlineExceeded}
	svc, err := NewItemService(db, dispatcher)
	require.NoError(t, err)

	item, err := svc.Report(context.Background(), ActorFromUser(&customer), ReportItemInput{
		Name:      "Tablet",
		Condition: models.ConditionPartial,
	})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
}

func TestItemServiceGetEnforcesOwnership(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	owner := models.User{Username: "carol", Email: "carol@example.com", Password: "x"}
	stranger := models.User{Username: "mallory", Email: "mallory@example.com", Password: "x"}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&stranger).Error)

	item := models.Item{UserID: owner.ID, Name: "Printer", Condition: models.ConditionWorking, Quantity: 1}
	require.NoError(t, db.Create(&item).Error)

	svc, err := NewItemService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()

	got, err := svc.Get(ctx, ActorFromUser(&owner), item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	_, err = svc.Get(ctx, ActorFromUser(&stranger), item.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	// Staff can see everything.
	_, err = svc.Get(ctx, Actor{UserID: "staff-1", Role: RoleStaff}, item.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, ActorFromUser(&owner), "missing")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestItemServiceListAll(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	owner := models.User{Username: "carol", Email: "carol@example.com", Password: "x"}
	require.NoError(t, db.Create(&owner).Error)

	collected := true
	items := []models.Item{
		{UserID: owner.ID, Name: "Broken TV", Condition: models.ConditionBroken, Quantity: 1},
		{UserID: owner.ID, Name: "Working Radio", Condition: models.ConditionWorking, Quantity: 1, Collected: true},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}

	svc, err := NewItemService(db, nil)
	require.NoError(t, err)

	ctx := context.Background()
	staff := Actor{UserID: "staff-1", Role: RoleStaff}

	all, total, err := svc.ListAll(ctx, staff, ListItemsInput{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	filtered, total, err := svc.ListAll(ctx, staff, ListItemsInput{Collected: &collected})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Working Radio", filtered[0].Name)

	searched, _, err := svc.ListAll(ctx, staff, ListItemsInput{Search: "tv"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "Broken TV", searched[0].Name)

	_, _, err = svc.ListAll(ctx, Actor{UserID: "u-1", Role: RoleCustomer}, ListItemsInput{})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestItemServiceListCategories(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	svc, err := NewItemService(db, nil)
	require.NoError(t, err)

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(categories), 10)
}
