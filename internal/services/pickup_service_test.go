package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/database/testutil"
	"github.com/greencycle/ecollect/internal/models"
	apperrors "github.com/greencycle/ecollect/pkg/errors"
)

type pickupFixture struct {
	db       *gorm.DB
	svc      *PickupService
	customer models.User
	staff    models.User
	item     models.Item
	pickup   models.PickupRequest
}

func newPickupFixture(t *testing.T) *pickupFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	f := &pickupFixture{
		db:       db,
		customer: models.User{Username: "carol", Email: "carol@example.com", Password: "x"},
		staff:    models.User{Username: "staff", Email: "staff@example.com", Password: "x", IsStaff: true},
	}
	require.NoError(t, db.Create(&f.customer).Error)
	require.NoError(t, db.Create(&f.staff).Error)

	f.item = models.Item{UserID: f.customer.ID, Name: "Laptop", Condition: models.ConditionBroken, Quantity: 1}
	require.NoError(t, db.Create(&f.item).Error)

	f.pickup = models.PickupRequest{ItemID: f.item.ID, Status: models.PickupPending}
	require.NoError(t, db.Create(&f.pickup).Error)

	svc, err := NewPickupService(db)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestPickupServiceAccept(t *testing.T) {
	f := newPickupFixture(t)

	got, err := f.svc.Accept(context.Background(), ActorFromUser(&f.staff), f.pickup.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PickupScheduled, got.Status)
	require.NotNil(t, got.AssignedToID)
	assert.Equal(t, f.staff.ID, *got.AssignedToID)
}

func TestPickupServiceSchedule(t *testing.T) {
	f := newPickupFixture(t)

	when := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	got, err := f.svc.Schedule(context.Background(), ActorFromUser(&f.staff), f.pickup.ID, &when)
	require.NoError(t, err)
	assert.Equal(t, models.PickupScheduled, got.Status)
	require.NotNil(t, got.ScheduledAt)
	assert.True(t, got.ScheduledAt.Equal(when))
}

func TestPickupServiceCompleteMarksItemCollected(t *testing.T) {
	f := newPickupFixture(t)

	got, err := f.svc.Complete(context.Background(), ActorFromUser(&f.staff), f.pickup.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PickupCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	var item models.Item
	require.NoError(t, f.db.First(&item, "id = ?", f.item.ID).Error)
	assert.True(t, item.Collected)
}

func TestPickupServiceCancelLeavesCollectedAlone(t *testing.T) {
	f := newPickupFixture(t)

	require.NoError(t, f.db.Model(&models.Item{}).Where("id = ?", f.item.ID).Update("collected", true).Error)

	got, err := f.svc.Cancel(context.Background(), ActorFromUser(&f.staff), f.pickup.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PickupCancelled, got.Status)

	var item models.Item
	require.NoError(t, f.db.First(&item, "id = ?", f.item.ID).Error)
	assert.True(t, item.Collected)
}

func TestPickupServicePermissiveTransitions(t *testing.T) {
	f := newPickupFixture(t)
	actor := ActorFromUser(&f.staff)
	ctx := context.Background()

	// Completed requests can be reopened; no transition checks apply.
	_, err := f.svc.Complete(ctx, actor, f.pickup.ID)
	require.NoError(t, err)

	got, err := f.svc.Start(ctx, actor, f.pickup.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PickupInProgress, got.Status)

	got, err = f.svc.Cancel(ctx, actor, f.pickup.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PickupCancelled, got.Status)

	got, err = f.svc.Accept(ctx, actor, f.pickup.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PickupScheduled, got.Status)
}

func TestPickupServiceCompanyMemberCanTransition(t *testing.T) {
	f := newPickupFixture(t)

	member := Actor{UserID: f.staff.ID, Role: RoleCompanyMember}
	got, err := f.svc.Start(context.Background(), member, f.pickup.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PickupInProgress, got.Status)
}

func TestPickupServiceCustomerCannotTransition(t *testing.T) {
	f := newPickupFixture(t)

	_, err := f.svc.Accept(context.Background(), ActorFromUser(&f.customer), f.pickup.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	// No mutation on denial.
	var pickup models.PickupRequest
	require.NoError(t, f.db.First(&pickup, "id = ?", f.pickup.ID).Error)
	assert.Equal(t, models.PickupPending, pickup.Status)
	assert.Nil(t, pickup.AssignedToID)
}

func TestPickupServiceUnknownRequest(t *testing.T) {
	f := newPickupFixture(t)

	_, err := f.svc.Accept(context.Background(), ActorFromUser(&f.staff), "missing")
	require.ErrorIs(t, err, ErrPickupNotFound)
}

func TestPickupServiceUpdate(t *testing.T) {
	f := newPickupFixture(t)
	actor := ActorFromUser(&f.staff)

	notes := "call before arriving"
	got, err := f.svc.Update(context.Background(), actor, f.pickup.ID, UpdatePickupInput{
		Status: models.PickupInProgress,
		Notes:  &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PickupInProgress, got.Status)
	assert.Equal(t, notes, got.Notes)
	// Unassigned requests are claimed by the editor.
	require.NotNil(t, got.AssignedToID)
	assert.Equal(t, f.staff.ID, *got.AssignedToID)

	_, err = f.svc.Update(context.Background(), actor, f.pickup.ID, UpdatePickupInput{Status: "archived"})
	require.Error(t, err)
}

func TestPickupServiceUpdateCompleteAlsoCollects(t *testing.T) {
	f := newPickupFixture(t)

	_, err := f.svc.Update(context.Background(), ActorFromUser(&f.staff), f.pickup.ID, UpdatePickupInput{
		Status: models.PickupCompleted,
	})
	require.NoError(t, err)

	var item models.Item
	require.NoError(t, f.db.First(&item, "id = ?", f.item.ID).Error)
	assert.True(t, item.Collected)
}

func TestPickupServiceGetOwnership(t *testing.T) {
	f := newPickupFixture(t)
	ctx := context.Background()

	got, err := f.svc.Get(ctx, ActorFromUser(&f.customer), f.pickup.ID)
	require.NoError(t, err)
	assert.Equal(t, f.pickup.ID, got.ID)
	require.NotNil(t, got.Item)
	assert.Equal(t, f.item.ID, got.Item.ID)

	stranger := models.User{Username: "mallory", Email: "mallory@example.com", Password: "x"}
	require.NoError(t, f.db.Create(&stranger).Error)
	_, err = f.svc.Get(ctx, ActorFromUser(&stranger), f.pickup.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestPickupServiceListAndFilter(t *testing.T) {
	f := newPickupFixture(t)
	ctx := context.Background()
	actor := ActorFromUser(&f.staff)

	other := models.Item{UserID: f.customer.ID, Name: "Phone", Condition: models.ConditionWorking, Quantity: 1}
	require.NoError(t, f.db.Create(&other).Error)
	done := models.PickupRequest{ItemID: other.ID, Status: models.PickupCompleted}
	require.NoError(t, f.db.Create(&done).Error)

	all, total, err := f.svc.List(ctx, actor, ListPickupsInput{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	completed, total, err := f.svc.List(ctx, actor, ListPickupsInput{Status: models.PickupCompleted})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, completed, 1)
	assert.Equal(t, done.ID, completed[0].ID)

	_, _, err = f.svc.List(ctx, actor, ListPickupsInput{Status: "bogus"})
	require.Error(t, err)

	_, _, err = f.svc.List(ctx, ActorFromUser(&f.customer), ListPickupsInput{})
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestPickupServiceListForUser(t *testing.T) {
	f := newPickupFixture(t)
	ctx := context.Background()

	stranger := models.User{Username: "mallory", Email: "mallory@example.com", Password: "x"}
	require.NoError(t, f.db.Create(&stranger).Error)
	strangerItem := models.Item{UserID: stranger.ID, Name: "Toaster", Condition: models.ConditionBroken, Quantity: 1}
	require.NoError(t, f.db.Create(&strangerItem).Error)
	require.NoError(t, f.db.Create(&models.PickupRequest{ItemID: strangerItem.ID, Status: models.PickupPending}).Error)

	mine, total, err := f.svc.ListForUser(ctx, f.customer.ID, ListPickupsInput{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, mine, 1)
	assert.Equal(t, f.pickup.ID, mine[0].ID)
}
