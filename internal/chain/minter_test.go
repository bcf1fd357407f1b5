package chain

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	testContract  = "0x00000000000000000000000000000000000000aa"
	testRecipient = "0x1111111111111111111111111111111111111111"
	testKey       = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
)

type fakeBackend struct {
	chainID     *big.Int
	chainErr    error
	estimateErr error
	sendErr     error

	// nonceDelay widens the window between reading a nonce and sending
	nonceDelay time.Duration

	mu        sync.Mutex
	estimated ethereum.CallMsg
	sent      *types.Transaction
	pool      []*types.Transaction
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) { return f.chainID, f.chainErr }

// PendingNonceAt counts the transactions already in the pool, like a node.
func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	n := uint64(7 + len(f.pool))
	f.mu.Unlock()
	time.Sleep(f.nonceDelay)
	return n, nil
}
func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000), nil
}
func (f *fakeBackend) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.estimated = msg
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}
	return 120_000, nil
}
func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = tx
	if f.sendErr != nil {
		return f.sendErr
	}
	for _, p := range f.pool {
		if p.Nonce() == tx.Nonce() {
			return errors.New("replacement transaction underpriced")
		}
	}
	f.pool = append(f.pool, tx)
	return nil
}

func newTestMinter(t *testing.T, b *fakeBackend) *Minter {
	t.Helper()
	m, err := New(b, testContract, "0x"+testKey, []int64{7777777, 999999999})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(&fakeBackend{}, "nope", testKey, nil); err == nil {
		t.Error("expected error for invalid contract address")
	}
	if _, err := New(&fakeBackend{}, testContract, "zz", nil); err == nil {
		t.Error("expected error for invalid private key")
	}
}

func TestPrepare_Success(t *testing.T) {
	b := &fakeBackend{chainID: big.NewInt(7777777)}
	m := newTestMinter(t, b)

	p, err := m.Prepare(context.Background(), testRecipient, "ipfs://bafymeta")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if p.ChainID != 7777777 || p.GasLimit != 120_000 {
		t.Errorf("prepared = %+v", p)
	}
	selector := crypto.Keccak256([]byte("mint(address,string)"))[:4]
	if len(p.Data) < 4 || string(p.Data[:4]) != string(selector) {
		t.Errorf("call data does not start with the mint selector: %x", p.Data)
	}
	if b.estimated.From != m.Wallet() {
		t.Errorf("simulated from %s; want %s", b.estimated.From, m.Wallet())
	}
	if b.estimated.To == nil || *b.estimated.To != common.HexToAddress(testContract) {
		t.Errorf("simulated to %v; want contract", b.estimated.To)
	}
}

func TestPrepare_Errors(t *testing.T) {
	tests := []struct {
		name      string
		backend   *fakeBackend
		recipient string
		metadata  string
		wantErr   error
	}{
		{
			name:      "wrong network",
			backend:   &fakeBackend{chainID: big.NewInt(1)},
			recipient: testRecipient,
			metadata:  "ipfs://m",
			wantErr:   ErrWrongNetwork,
		},
		{
			name:      "invalid recipient",
			backend:   &fakeBackend{chainID: big.NewInt(7777777)},
			recipient: "0x123",
			metadata:  "ipfs://m",
			wantErr:   ErrInvalidRecipient,
		},
		{
			name:      "missing metadata",
			backend:   &fakeBackend{chainID: big.NewInt(7777777)},
			recipient: testRecipient,
			metadata:  " ",
			wantErr:   ErrMissingMetadata,
		},
		{
			name:      "simulation reverts",
			backend:   &fakeBackend{chainID: big.NewInt(7777777), estimateErr: errors.New("execution reverted")},
			recipient: testRecipient,
			metadata:  "ipfs://m",
			wantErr:   ErrNotPreparable,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMinter(t, tc.backend)
			_, err := m.Prepare(context.Background(), tc.recipient, tc.metadata)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v; want %v", err, tc.wantErr)
			}
		})
	}
}

func TestWrite_SignsAndSends(t *testing.T) {
	b := &fakeBackend{chainID: big.NewInt(7777777)}
	m := newTestMinter(t, b)

	p, err := m.Prepare(context.Background(), testRecipient, "ipfs://bafymeta")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	hash, err := m.Write(context.Background(), p)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if b.sent == nil {
		t.Fatal("no transaction sent")
	}
	if hash != b.sent.Hash().Hex() || !strings.HasPrefix(hash, "0x") {
		t.Errorf("hash = %s; want %s", hash, b.sent.Hash().Hex())
	}
	if b.sent.Nonce() != 7 || b.sent.Gas() != 120_000 {
		t.Errorf("nonce/gas = %d/%d", b.sent.Nonce(), b.sent.Gas())
	}

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(7777777)), b.sent)
	if err != nil {
		t.Fatalf("recover sender: %v", err)
	}
	if sender != m.Wallet() {
		t.Errorf("sender = %s; want %s", sender, m.Wallet())
	}
}

func TestWrite_SendError(t *testing.T) {
	b := &fakeBackend{chainID: big.NewInt(7777777), sendErr: errors.New("insufficient funds")}
	m := newTestMinter(t, b)

	p, err := m.Prepare(context.Background(), testRecipient, "ipfs://bafymeta")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := m.Write(context.Background(), p); err == nil || !strings.Contains(err.Error(), "insufficient funds") {
		t.Fatalf("error = %v; want send failure", err)
	}
}

func TestWrite_ConcurrentWritesUseDistinctNonces(t *testing.T) {
	b := &fakeBackend{chainID: big.NewInt(7777777), nonceDelay: 5 * time.Millisecond}
	m := newTestMinter(t, b)

	p, err := m.Prepare(context.Background(), testRecipient, "ipfs://bafymeta")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	const writers = 4
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Write(context.Background(), p); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Write: %v", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	seen := map[uint64]bool{}
	for _, tx := range b.pool {
		if seen[tx.Nonce()] {
			t.Errorf("nonce %d sent twice", tx.Nonce())
		}
		seen[tx.Nonce()] = true
	}
	if len(b.pool) != writers {
		t.Errorf("pool has %d transactions; want %d", len(b.pool), writers)
	}
}
