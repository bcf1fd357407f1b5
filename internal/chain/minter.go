// Package chain mints the NFT for a stored video by calling mint(address,string)
// on the configured contract with the server-held minter wallet.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
)

const mintABI = `[{
  "inputs": [
    {"internalType": "address", "name": "to", "type": "address"},
    {"internalType": "string", "name": "tokenURI", "type": "string"}
  ],
  "name": "mint",
  "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
  "stateMutability": "nonpayable",
  "type": "function"
}]`

var (
	ErrWrongNetwork     = errors.New("chain: connected to a network that is not allowed")
	ErrInvalidRecipient = errors.New("chain: invalid recipient address")
	ErrMissingMetadata  = errors.New("chain: missing metadata url")
	ErrNotPreparable    = errors.New("chain: mint call cannot be prepared")
)

// backend is the subset of *ethclient.Client used to prepare and send a mint.
type backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

type Minter struct {
	backend  backend
	contract common.Address
	key      *ecdsa.PrivateKey
	wallet   common.Address
	allowed  []int64
	abi      abi.ABI

	// serializes nonce reads with the send that consumes the nonce
	sendMu sync.Mutex
}

// compile-time check: *Minter must satisfy port.Minter
var _ port.Minter = (*Minter)(nil)

// Dial connects to the RPC endpoint and returns a minter bound to contract.
func Dial(ctx context.Context, rpcURL, contract, privateKeyHex string, allowedChainIDs []int64) (*Minter, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial chain rpc: %w", err)
	}
	m, err := New(client, contract, privateKeyHex, allowedChainIDs)
	if err != nil {
		client.Close()
		return nil, err
	}
	return m, nil
}

func New(b backend, contract, privateKeyHex string, allowedChainIDs []int64) (*Minter, error) {
	if !common.IsHexAddress(contract) {
		return nil, fmt.Errorf("invalid contract address %q", contract)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid minter private key: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(mintABI))
	if err != nil {
		return nil, fmt.Errorf("parse mint abi: %w", err)
	}
	return &Minter{
		backend:  b,
		contract: common.HexToAddress(contract),
		key:      key,
		wallet:   crypto.PubkeyToAddress(key.PublicKey),
		allowed:  allowedChainIDs,
		abi:      parsed,
	}, nil
}

// Wallet is the address that signs mint transactions.
func (m *Minter) Wallet() common.Address {
	return m.wallet
}

// Prepare checks the network, packs the call and simulates it through gas
// estimation. A revert during estimation makes the call not preparable.
func (m *Minter) Prepare(ctx context.Context, recipient, metadataURL string) (port.PreparedMint, error) {
	if !common.IsHexAddress(recipient) {
		return port.PreparedMint{}, fmt.Errorf("%w: %q", ErrInvalidRecipient, recipient)
	}
	if strings.TrimSpace(metadataURL) == "" {
		return port.PreparedMint{}, ErrMissingMetadata
	}

	chainID, err := m.backend.ChainID(ctx)
	if err != nil {
		return port.PreparedMint{}, fmt.Errorf("read chain id: %w", err)
	}
	if !chainID.IsInt64() || !slices.Contains(m.allowed, chainID.Int64()) {
		return port.PreparedMint{}, fmt.Errorf("%w: chain id %s", ErrWrongNetwork, chainID)
	}

	to := common.HexToAddress(recipient)
	data, err := m.abi.Pack("mint", to, metadataURL)
	if err != nil {
		return port.PreparedMint{}, fmt.Errorf("pack mint call: %w", err)
	}

	gas, err := m.backend.EstimateGas(ctx, ethereum.CallMsg{
		From: m.wallet,
		To:   &m.contract,
		Data: data,
	})
	if err != nil {
		return port.PreparedMint{}, fmt.Errorf("%w: %v", ErrNotPreparable, err)
	}

	logger.Debugf(ctx, "prepared mint to %s on chain %s, gas %d", to.Hex(), chainID, gas)
	return port.PreparedMint{
		Recipient:   to.Hex(),
		MetadataURL: metadataURL,
		ChainID:     chainID.Int64(),
		Data:        data,
		GasLimit:    gas,
	}, nil
}

// Write signs the prepared call with the minter wallet and broadcasts it.
// Writes from one process are sent one at a time so each gets its own nonce.
func (m *Minter) Write(ctx context.Context, p port.PreparedMint) (string, error) {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()

	nonce, err := m.backend.PendingNonceAt(ctx, m.wallet)
	if err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	gasPrice, err := m.backend.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      p.GasLimit,
		To:       &m.contract,
		Value:    big.NewInt(0),
		Data:     p.Data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(p.ChainID)), m.key)
	if err != nil {
		return "", fmt.Errorf("sign mint transaction: %w", err)
	}
	if err := m.backend.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("send mint transaction: %w", err)
	}

	hash := signed.Hash().Hex()
	logger.Infof(ctx, "🚀  mint transaction %s sent to %s", hash, p.Recipient)
	return hash, nil
}
