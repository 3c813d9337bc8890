package account_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storenetdev/storenet-backend/internal/modules/account"
)

func date(day, month, year int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func TestAccountLazyCreation(t *testing.T) {
	svc := account.NewService()

	acct := svc.Account("QCU1234")
	require.NotNil(t, acct)
	assert.Equal(t, account.DefaultBudget, acct.RemainingBudget())

	// Same identity on repeated reference.
	assert.Same(t, acct, svc.Account("QCU1234"))
}

func TestAttemptPurchase(t *testing.T) {
	svc := account.NewService()

	t.Run("Home store only needs budget", func(t *testing.T) {
		ok := svc.AttemptPurchase("QCU1234", "QC", "QC1001", 900, date(1, 1, 2025))
		require.True(t, ok)
		assert.Equal(t, 100.0, svc.RemainingBudget("QCU1234"))

		// Second home-store purchase is fine, no per-store cap at home.
		ok = svc.AttemptPurchase("QCU1234", "QC", "QC1002", 50, date(2, 1, 2025))
		assert.True(t, ok)
	})

	t.Run("Insufficient budget denied", func(t *testing.T) {
		ok := svc.AttemptPurchase("QCU1234", "QC", "QC1003", 500, date(3, 1, 2025))
		assert.False(t, ok)
		assert.Equal(t, 50.0, svc.RemainingBudget("QCU1234"))
	})

	t.Run("Remote store cap of one", func(t *testing.T) {
		ok := svc.AttemptPurchase("QCU5555", "ON", "ON2001", 100, date(1, 1, 2025))
		require.True(t, ok)

		ok = svc.AttemptPurchase("QCU5555", "ON", "ON2002", 100, date(2, 1, 2025))
		assert.False(t, ok, "second outstanding purchase at the same remote store must be denied")

		// A different remote store is still available.
		ok = svc.AttemptPurchase("QCU5555", "BC", "BC3001", 100, date(2, 1, 2025))
		assert.True(t, ok)
	})

	t.Run("Cap frees up after consumption", func(t *testing.T) {
		record, ok := svc.ConsumeRecord("QCU5555", "ON2001")
		require.True(t, ok)
		assert.Equal(t, "ON", record.StoreCode)

		ok = svc.AttemptPurchase("QCU5555", "ON", "ON2002", 100, date(3, 1, 2025))
		assert.True(t, ok)
	})
}

func TestConsumeRecordOldestFirst(t *testing.T) {
	svc := account.NewService()
	require.True(t, svc.AttemptPurchase("QCU1234", "QC", "QC1001", 10, date(1, 1, 2025)))
	require.True(t, svc.AttemptPurchase("QCU1234", "QC", "QC1001", 10, date(5, 1, 2025)))

	first, ok := svc.ConsumeRecord("QCU1234", "QC1001")
	require.True(t, ok)
	assert.Equal(t, date(1, 1, 2025), first.PurchaseDate)

	second, ok := svc.ConsumeRecord("QCU1234", "QC1001")
	require.True(t, ok)
	assert.Equal(t, date(5, 1, 2025), second.PurchaseDate)

	_, ok = svc.ConsumeRecord("QCU1234", "QC1001")
	assert.False(t, ok)
}

func TestConsumeRecordUnknownCustomer(t *testing.T) {
	svc := account.NewService()
	_, ok := svc.ConsumeRecord("QCU0000", "QC1001")
	assert.False(t, ok)
}

func TestConsumeRestoreRoundTrip(t *testing.T) {
	svc := account.NewService()
	require.True(t, svc.AttemptPurchase("QCU1234", "ON", "ON2001", 100, date(1, 1, 2025)))
	acct := svc.Account("QCU1234")

	budgetBefore := acct.RemainingBudget()
	require.Equal(t, 1, acct.RemotePurchaseCount("ON"))

	record, ok := svc.ConsumeRecord("QCU1234", "ON2001")
	require.True(t, ok)
	assert.Equal(t, 0, acct.RemotePurchaseCount("ON"))
	assert.False(t, acct.HasRecord("ON2001"))
	assert.Equal(t, budgetBefore, acct.RemainingBudget(), "consume itself does not move the budget")

	svc.RestoreRecord("QCU1234", record)
	assert.Equal(t, 1, acct.RemotePurchaseCount("ON"))
	assert.True(t, acct.HasRecord("ON2001"))
	assert.Equal(t, budgetBefore, acct.RemainingBudget())

	// The restored record is the same one, back at the head.
	again, ok := svc.ConsumeRecord("QCU1234", "ON2001")
	require.True(t, ok)
	assert.Equal(t, record.ID, again.ID)
}

func TestRefund(t *testing.T) {
	svc := account.NewService()
	require.True(t, svc.AttemptPurchase("QCU1234", "QC", "QC1001", 250, date(1, 1, 2025)))
	require.Equal(t, 750.0, svc.RemainingBudget("QCU1234"))

	svc.Refund("QCU1234", 250)
	assert.Equal(t, 1000.0, svc.RemainingBudget("QCU1234"))
}
