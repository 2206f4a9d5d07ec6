package boq

import (
	"context"
	"testing"

	"bidops-backend/internal/domain"
	"bidops-backend/internal/infrastructure/database"
	"bidops-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func setupBoqTest(t *testing.T) (*Service, *domain.Opportunity) {
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	opp := &domain.Opportunity{TenantID: uuid.New(), Title: "Pipeline"}
	require.NoError(t, db.Create(opp).Error)
	return &Service{DB: db, BaseCurrency: "QAR"}, opp
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreate_DefaultsAndLineNumbers(t *testing.T) {
	svc, opp := setupBoqTest(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, opp.TenantID, opp.OpportunityID, ItemInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.LineNo)
	assert.True(t, first.Qty.IsZero())
	assert.True(t, first.UnitCost.IsZero())
	assert.Equal(t, "QAR", first.UnitCurrency)

	second, err := svc.Create(ctx, opp.TenantID, opp.OpportunityID, ItemInput{
		Qty:          dec("2"),
		UnitCost:     dec("100"),
		Markup:       dec("0.25"),
		UnitCurrency: strPtr("usd"),
		CustomFields: datatypes.JSON(`{"section":"civil"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.LineNo)
	assert.Equal(t, "USD", second.UnitCurrency)
	assert.True(t, decimal.NewFromInt(125).Equal(second.UnitPrice))

	items, err := svc.List(ctx, opp.TenantID, opp.OpportunityID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.BoqItemID, items[0].BoqItemID)
}

func TestUpdate_OnlyPresentFields(t *testing.T) {
	svc, opp := setupBoqTest(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, opp.TenantID, opp.OpportunityID, ItemInput{
		Description: strPtr("Steel"),
		Qty:         dec("3"),
		UnitCost:    dec("10"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, opp.TenantID, item.BoqItemID, ItemInput{Markup: dec("0.1")})
	require.NoError(t, err)
	assert.Equal(t, "Steel", updated.Description)
	assert.True(t, decimal.NewFromInt(3).Equal(updated.Qty))
	assert.True(t, decimal.NewFromInt(11).Equal(updated.UnitPrice))
}

func TestTenantIsolation(t *testing.T) {
	svc, opp := setupBoqTest(t)
	ctx := context.Background()
	other := uuid.New()

	_, err := svc.Create(ctx, other, opp.OpportunityID, ItemInput{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	item, err := svc.Create(ctx, opp.TenantID, opp.OpportunityID, ItemInput{})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other, item.BoqItemID, ItemInput{Qty: dec("1")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, other, item.BoqItemID), apperr.ErrNotFound)

	_, err = svc.List(ctx, other, opp.OpportunityID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, opp.TenantID, item.BoqItemID))
	assert.ErrorIs(t, svc.Delete(ctx, opp.TenantID, item.BoqItemID), apperr.ErrNotFound)
}

func TestCreate_Validation(t *testing.T) {
	svc, opp := setupBoqTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, opp.TenantID, opp.OpportunityID, ItemInput{Qty: dec("-1")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(ctx, opp.TenantID, opp.OpportunityID, ItemInput{UnitCurrency: strPtr("dollars")})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func strPtr(s string) *string { return &s }
