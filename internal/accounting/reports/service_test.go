package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
)

type stubReadModel struct {
	activity []AccountActivity
	monthly  []AccountMonthlyActivity
	calls    int
}

func (s *stubReadModel) AccountActivity(_ context.Context, _, _ time.Time) ([]AccountActivity, error) {
	s.calls++
	return s.activity, nil
}

func (s *stubReadModel) MonthlyActivity(_ context.Context, _ int) ([]AccountMonthlyActivity, error) {
	return s.monthly, nil
}

func newCacheForTest(t *testing.T) (*Cache, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), client
}

func TestTrialBalanceCachesByVersion(t *testing.T) {
	cache, _ := newCacheForTest(t)
	repo := &stubReadModel{activity: sampleActivity()}
	svc := NewService(repo, cache)
	ctx := context.Background()
	asOf := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	first, err := svc.TrialBalance(ctx, asOf)
	require.NoError(t, err)
	require.True(t, first.Balanced)
	require.Equal(t, 1, repo.calls)

	// Second read served from cache.
	second, err := svc.TrialBalance(ctx, asOf)
	require.NoError(t, err)
	require.Equal(t, first.TotalDebit, second.TotalDebit)
	require.Equal(t, 1, repo.calls)
}

func TestBumpInvalidatesCachedReports(t *testing.T) {
	cache, _ := newCacheForTest(t)
	repo := &stubReadModel{activity: sampleActivity()}
	svc := NewService(repo, cache)
	ctx := context.Background()
	asOf := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.TrialBalance(ctx, asOf)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	require.NoError(t, cache.Bump(ctx))

	// Version moved; the key changes and the report rebuilds.
	repo.activity = append(repo.activity, AccountActivity{
		Account: accounts.Account{ID: 8, Code: "6100", Name: "Utilities", Type: accounts.AccountTypeExpense, IsActive: true},
		Debit:   75, Credit: 75,
	})
	_, err = svc.TrialBalance(ctx, asOf)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestNilCacheFallsThrough(t *testing.T) {
	repo := &stubReadModel{activity: sampleActivity()}
	svc := NewService(repo, NewCache(nil, 0))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		tb, err := svc.TrialBalance(ctx, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.True(t, tb.Balanced)
	}
	require.Equal(t, 2, repo.calls)
}

func TestPeriodBalancesDirected(t *testing.T) {
	repo := &stubReadModel{activity: sampleActivity()}
	svc := NewService(repo, NewCache(nil, 0))

	balances, err := svc.PeriodBalances(context.Background(), time.Time{}, time.Now())
	require.NoError(t, err)
	require.Len(t, balances, len(repo.activity))
	for _, b := range balances {
		switch b.Account.Code {
		case "4000":
			require.Equal(t, 600.0, b.Balance)
		case "6000":
			require.Equal(t, 250.0, b.Balance)
		case "3000":
			require.Equal(t, 1000.0, b.Balance)
		}
	}
}
