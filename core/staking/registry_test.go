package staking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stakechain/core/ledger"
)

func newTestRegistry(t *testing.T) (*ledger.Ledger, *Registry) {
	t.Helper()
	l := ledger.NewLedger()
	return l, NewRegistry(l)
}

func TestSelfNominationCreatesValidator(t *testing.T) {
	l, r := newTestRegistry(t)
	l.CreateAccount("alice", 1000)

	require.NoError(t, r.Stake("alice", "alice", 500))

	acct := l.GetAccount("alice")
	require.Equal(t, 500.0, acct.Balance)
	require.Equal(t, 500.0, acct.Staked)
	require.True(t, acct.IsValidator)

	v := r.GetValidator("alice")
	require.NotNil(t, v)
	require.Equal(t, 500.0, v.TotalStake)
	require.Equal(t, 500.0, v.SelfStake)
	require.True(t, v.Active)
}

func TestStakeBelowMinimumFails(t *testing.T) {
	l, r := newTestRegistry(t)
	l.CreateAccount("alice", 1000)

	err := r.Stake("alice", "alice", 50)
	require.ErrorContains(t, err, "below the minimum")
	require.Equal(t, 1000.0, l.Balance("alice"))
	require.Nil(t, r.GetValidator("alice"))
}

func TestStakeFailures(t *testing.T) {
	l, r := newTestRegistry(t)
	l.CreateAccount("alice", 1000)
	l.CreateAccount("bob", 200)

	err := r.Stake("alice", "alice", 2000)
	require.ErrorContains(t, err, "insufficient balance")

	err = r.Stake("ghost", "ghost", 100)
	require.ErrorContains(t, err, "no account found")

	// Delegating to an address that never self-nominated fails.
	err = r.Stake("bob", "alice", 100)
	require.ErrorContains(t, err, "does not exist")
	require.Equal(t, 200.0, l.Balance("bob"))
}

func TestValidatorCap(t *testing.T) {
	l, r := newTestRegistry(t)
	for i := 0; i < MaxValidators; i++ {
		addr := string(rune('a'+i/26)) + string(rune('a'+i%26))
		l.CreateAccount(addr, 1000)
		require.NoError(t, r.Stake(addr, addr, 100))
	}
	l.CreateAccount("extra", 1000)
	err := r.Stake("extra", "extra", 100)
	require.ErrorContains(t, err, "validator cap")
	require.Len(t, r.AllValidators(), MaxValidators)
}

func TestDelegationUpsert(t *testing.T) {
	l, r := newTestRegistry(t)
	l.CreateAccount("alice", 1000)

	require.NoError(t, r.Stake("alice", "alice", 200))
	require.NoError(t, r.Stake("alice", "alice", 300))

	records := r.DelegationsOf("alice")
	require.Len(t, records, 1, "same-validator stakes must sum into one record")
	require.Equal(t, 500.0, records[0].StakedAmount)
	require.Equal(t, 500.0, l.GetAccount("alice").Staked)
}

func TestDelegatedStakeTracksValidator(t *testing.T) {
	l, r := newTestRegistry(t)
	l.CreateAccount("val", 1000)
	l.CreateAccount("dele", 1000)

	require.NoError(t, r.Stake("val", "val", 500))
	require.NoError(t, r.Stake("dele", "val", 400))

	v := r.GetValidator("val")
	require.Equal(t, 900.0, v.TotalStake)
	require.Equal(t, 500.0, v.SelfStake, "delegation must not move self-stake")
	require.Equal(t, 400.0, l.GetAccount("dele").Staked)
}

func TestUnstakeAndMaturity(t *testing.T) {
	l, r := newTestRegistry(t)
	now := time.Now()
	r.SetClock(func() time.Time { return now })
	l.CreateAccount("alice", 1000)
	require.NoError(t, r.Stake("alice", "alice", 500))

	require.NoError(t, r.Unstake("alice", "alice", 500))
	acct := l.GetAccount("alice")
	require.Equal(t, 500.0, acct.Balance, "unstaked funds are not spendable before maturity")
	require.Equal(t, 0.0, acct.Staked)

	v := r.GetValidator("alice")
	require.Equal(t, 0.0, v.TotalStake)
	require.False(t, v.Active, "validator deactivates when stake drops below minimum")

	// Before maturity nothing is released.
	require.Equal(t, 0.0, r.CompleteUnstaking("alice"))
	require.Equal(t, 500.0, acct.Balance)

	// After the unstaking period the full amount is released once.
	now = now.Add(UnstakingPeriod + time.Minute)
	require.Equal(t, 500.0, r.CompleteUnstaking("alice"))
	require.Equal(t, 1000.0, acct.Balance)

	// Idempotent: nothing left to release.
	require.Equal(t, 0.0, r.CompleteUnstaking("alice"))
	require.Equal(t, 1000.0, acct.Balance)

	// Fully-drained record with no pending release is removed.
	require.Empty(t, r.DelegationsOf("alice"))
}

func TestUnstakeFailures(t *testing.T) {
	l, r := newTestRegistry(t)
	l.CreateAccount("alice", 1000)
	require.NoError(t, r.Stake("alice", "alice", 500))

	err := r.Unstake("alice", "alice", 600)
	require.ErrorContains(t, err, "insufficient staked amount")

	err = r.Unstake("bob", "alice", 100)
	require.ErrorContains(t, err, "no staking record found")
}

func TestPartialUnstakeKeepsRecord(t *testing.T) {
	l, r := newTestRegistry(t)
	now := time.Now()
	r.SetClock(func() time.Time { return now })
	l.CreateAccount("alice", 1000)
	require.NoError(t, r.Stake("alice", "alice", 500))

	require.NoError(t, r.Unstake("alice", "alice", 200))
	records := r.DelegationsOf("alice")
	require.Len(t, records, 1)
	require.Equal(t, 300.0, records[0].StakedAmount)
	require.NotNil(t, records[0].MaturesAt)

	now = now.Add(UnstakingPeriod + time.Minute)
	require.Equal(t, 200.0, r.CompleteUnstaking("alice"))
	records = r.DelegationsOf("alice")
	require.Len(t, records, 1, "record with live stake survives release")
	require.Nil(t, records[0].MaturesAt)
}

func TestRewardDistributionConservesTotal(t *testing.T) {
	l, r := newTestRegistry(t)
	require.NoError(t, r.RegisterGenesisValidator("val", 1_000_000, 0.05))
	l.CreateAccount("dele", 500_000)
	require.NoError(t, r.Stake("dele", "val", 200_000))

	const reward = 137.5
	valBefore := l.GetAccount("val").Rewards
	deleBefore := l.GetAccount("dele").Rewards

	r.DistributeStakingRewards(reward, "val")

	valShare := l.GetAccount("val").Rewards - valBefore
	deleShare := l.GetAccount("dele").Rewards - deleBefore
	require.InDelta(t, reward, valShare+deleShare, 1e-9, "distributed total must equal the reward")

	// Commission plus the validator's own pro-rata slice.
	commission := reward * 0.05
	remainder := reward - commission
	require.InDelta(t, commission+remainder*(1_000_000.0/1_200_000.0), valShare, 1e-9)
	require.InDelta(t, remainder*(200_000.0/1_200_000.0), deleShare, 1e-9)
}

func TestRewardDistributionUnknownValidatorIsNoop(t *testing.T) {
	l, r := newTestRegistry(t)
	l.CreateAccount("alice", 100)
	r.DistributeStakingRewards(50, "ghost")
	require.Equal(t, 0.0, l.GetAccount("alice").Rewards)
}

func TestUpdateValidatorAfterBlock(t *testing.T) {
	l, r := newTestRegistry(t)
	l.CreateAccount("alice", 1000)
	require.NoError(t, r.Stake("alice", "alice", 500))

	r.UpdateValidatorAfterBlock("alice", 7)
	v := r.GetValidator("alice")
	require.Equal(t, uint64(1), v.BlocksProduced)
	require.Equal(t, uint64(7), v.LastActiveBlock)
}

func TestNetworkStats(t *testing.T) {
	l, r := newTestRegistry(t)
	require.NoError(t, r.RegisterGenesisValidator("v1", 1_000_000, 0.05))
	require.NoError(t, r.RegisterGenesisValidator("v2", 800_000, 0.04))
	l.CreateAccount("weak", 1000)
	require.NoError(t, r.Stake("weak", "weak", 100))
	require.NoError(t, r.Unstake("weak", "weak", 100)) // deactivates

	stats := r.NetworkStats()
	require.Equal(t, 3, stats.ValidatorCount)
	require.Equal(t, 2, stats.ActiveValidators)
	require.Equal(t, 1_800_000.0, stats.TotalStaked)
	require.Equal(t, float64(MinStakeAmount), stats.MinStakeAmount)
	require.Equal(t, MaxValidators, stats.MaxValidators)
}
