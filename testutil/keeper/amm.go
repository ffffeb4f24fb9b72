package keeper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/stretchr/testify/require"

	"github.com/coral-chain/coral/x/amm/keeper"
	"github.com/coral-chain/coral/x/amm/types"
)

// TestChainID is the chain identifier carried by test contexts.
const TestChainID = "coral-test-1"

// Authority is the administrator identity wired into test keepers.
var Authority = authtypes.NewModuleAddress("gov").String()

// Mocks bundles the collaborator doubles handed to a test keeper.
type Mocks struct {
	Bank      *MockBankKeeper
	Shares    *MockShareLedger
	Transport *CaptureTransport
}

// AmmKeeper creates a test keeper for the amm module with mock collaborators.
func AmmKeeper(t testing.TB) (*keeper.Keeper, sdk.Context, *Mocks) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	mocks := &Mocks{
		Bank:      NewMockBankKeeper(),
		Shares:    NewMockShareLedger(),
		Transport: NewCaptureTransport(),
	}

	k := keeper.NewKeeper(storeKey, Authority, mocks.Bank, mocks.Shares, mocks.Transport)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{
		ChainID: TestChainID,
		Time:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}, false, log.NewNopLogger())

	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return k, ctx, mocks
}

// TestAddr returns a deterministic bech32 account address for tests.
func TestAddr(seed string) sdk.AccAddress {
	return sdk.AccAddress([]byte(fmt.Sprintf("%-20s", seed))[:20])
}

// CreateTestPool creates an active pool and funds the pool's fee recipient
// address book side. Returns the pool.
func CreateTestPool(t testing.TB, k *keeper.Keeper, ctx sdk.Context, baseDenom, quoteDenom string, feeBps uint32, stable bool) *types.Pool {
	pool, err := k.CreatePool(ctx, Authority, baseDenom, quoteDenom, feeBps, TestAddr("fees").String(), stable)
	require.NoError(t, err)
	return pool
}

// MockBankKeeper is an in-memory token ledger.
type MockBankKeeper struct {
	Balances map[string]sdk.Coins
	// FailSend forces every transfer to be declined.
	FailSend bool
}

func NewMockBankKeeper() *MockBankKeeper {
	return &MockBankKeeper{Balances: make(map[string]sdk.Coins)}
}

// Fund credits coins to an address.
func (m *MockBankKeeper) Fund(addr sdk.AccAddress, coins sdk.Coins) {
	m.Balances[addr.String()] = m.Balances[addr.String()].Add(coins...)
}

func (m *MockBankKeeper) GetBalance(_ context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, m.Balances[addr.String()].AmountOf(denom))
}

func (m *MockBankKeeper) SendCoins(_ context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error {
	if m.FailSend {
		return fmt.Errorf("transfer declined")
	}
	from := m.Balances[fromAddr.String()]
	if !amt.IsAllLTE(from) {
		return fmt.Errorf("insufficient funds: %s has %s, want %s", fromAddr, from, amt)
	}
	m.Balances[fromAddr.String()] = from.Sub(amt...)
	m.Balances[toAddr.String()] = m.Balances[toAddr.String()].Add(amt...)
	return nil
}

// MockShareLedger is an in-memory LP share ledger keyed (share denom, owner).
type MockShareLedger struct {
	Shares map[string]map[string]math.Int
	// FailMint forces mint calls to be declined.
	FailMint bool
}

func NewMockShareLedger() *MockShareLedger {
	return &MockShareLedger{Shares: make(map[string]map[string]math.Int)}
}

// BalanceOf returns the shares held by addr in shareDenom.
func (m *MockShareLedger) BalanceOf(shareDenom string, addr sdk.AccAddress) math.Int {
	if holders, ok := m.Shares[shareDenom]; ok {
		if amt, ok := holders[addr.String()]; ok {
			return amt
		}
	}
	return math.ZeroInt()
}

// TotalSupply returns the total minted shares for shareDenom.
func (m *MockShareLedger) TotalSupply(_ context.Context, shareDenom string) math.Int {
	total := math.ZeroInt()
	for _, amt := range m.Shares[shareDenom] {
		total = total.Add(amt)
	}
	return total
}

func (m *MockShareLedger) Mint(_ context.Context, shareDenom string, to sdk.AccAddress, amount math.Int) error {
	if m.FailMint {
		return fmt.Errorf("mint declined")
	}
	if m.Shares[shareDenom] == nil {
		m.Shares[shareDenom] = make(map[string]math.Int)
	}
	m.Shares[shareDenom][to.String()] = m.BalanceOf(shareDenom, to).Add(amount)
	return nil
}

func (m *MockShareLedger) Burn(_ context.Context, shareDenom string, from sdk.AccAddress, amount math.Int) error {
	held := m.BalanceOf(shareDenom, from)
	if held.LT(amount) {
		return fmt.Errorf("insufficient shares: %s holds %s, want %s", from, held, amount)
	}
	m.Shares[shareDenom][from.String()] = held.Sub(amount)
	return nil
}

// SentIntent records one payload handed to the capture transport.
type SentIntent struct {
	DestChainID string
	MessageID   string
	Payload     []byte
	Fee         math.Int
	RefundAddr  string
}

// CaptureTransport records outbound sends instead of delivering them.
type CaptureTransport struct {
	Sent []SentIntent
	Fee  math.Int
	// FailSend forces Send to be declined.
	FailSend bool
}

func NewCaptureTransport() *CaptureTransport {
	return &CaptureTransport{Fee: math.NewInt(1)}
}

func (c *CaptureTransport) QuoteFee(_ context.Context, _ string, _ []byte) (math.Int, error) {
	return c.Fee, nil
}

func (c *CaptureTransport) Send(_ context.Context, destChainID, messageID string, payload []byte, fee math.Int, refundAddr string) error {
	if c.FailSend {
		return fmt.Errorf("transport declined")
	}
	c.Sent = append(c.Sent, SentIntent{
		DestChainID: destChainID,
		MessageID:   messageID,
		Payload:     payload,
		Fee:         fee,
		RefundAddr:  refundAddr,
	})
	return nil
}
