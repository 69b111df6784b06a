package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/plinth-labs/plinth/internal/domain"
	"github.com/plinth-labs/plinth/internal/domain/config"
	"github.com/plinth-labs/plinth/internal/domain/models"
	"github.com/plinth-labs/plinth/internal/usecase"
)

// ClientAdapter talks to the configured network over JSON-RPC. The
// connection is opened on first use so commands that never touch the chain
// do not need a reachable RPC.
type ClientAdapter struct {
	cfg       *config.RuntimeConfig
	artifacts usecase.ArtifactSource
	log       *slog.Logger

	once    sync.Once
	dialErr error
	eth     *ethclient.Client
	chainID *big.Int
}

// NewClientAdapter creates a new blockchain client adapter
func NewClientAdapter(cfg *config.RuntimeConfig, artifacts usecase.ArtifactSource, log *slog.Logger) *ClientAdapter {
	return &ClientAdapter{
		cfg:       cfg,
		artifacts: artifacts,
		log:       log.With("component", "blockchain"),
	}
}

// connect establishes the RPC connection and checks the chain ID
func (c *ClientAdapter) connect(ctx context.Context) error {
	c.once.Do(func() {
		if c.cfg.Network == nil || c.cfg.Network.RPCURL == "" {
			c.dialErr = fmt.Errorf("no RPC URL configured")
			return
		}

		eth, err := ethclient.DialContext(ctx, c.cfg.Network.RPCURL)
		if err != nil {
			c.dialErr = fmt.Errorf("failed to connect to RPC: %w", err)
			return
		}

		networkChainID, err := eth.ChainID(ctx)
		if err != nil {
			eth.Close()
			c.dialErr = fmt.Errorf("failed to get chain ID: %w", err)
			return
		}

		if expected := c.cfg.Network.ChainID; expected != 0 && networkChainID.Uint64() != expected {
			eth.Close()
			c.dialErr = fmt.Errorf("chain ID mismatch: expected %d, got %d", expected, networkChainID.Uint64())
			return
		}

		c.log.Debug("connected", "rpc", c.cfg.Network.RPCURL, "chain_id", networkChainID)
		c.eth = eth
		c.chainID = networkChainID
	})
	return c.dialErr
}

// Close releases the RPC connection if one was opened
func (c *ClientAdapter) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

// Signer loads the deployer key from configuration
func (c *ClientAdapter) Signer(ctx context.Context) (usecase.Signer, error) {
	if c.cfg.PrivateKey == "" {
		return nil, fmt.Errorf("no private key configured")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return &keySigner{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// ContractFactory loads the artifact for a contract name
func (c *ClientAdapter) ContractFactory(ctx context.Context, contractName string) (usecase.ContractFactory, error) {
	artifact, err := c.artifacts.Load(ctx, contractName)
	if err != nil {
		return nil, err
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return &contractFactory{client: c, artifact: artifact}, nil
}

func (c *ClientAdapter) transactOpts(ctx context.Context, signer usecase.Signer) (*bind.TransactOpts, error) {
	s, ok := signer.(*keySigner)
	if !ok {
		return nil, fmt.Errorf("unsupported signer %T", signer)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(s.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	opts.Context = ctx
	opts.GasPrice = gasPrice
	// zero lets the backend estimate
	opts.GasLimit = c.cfg.GasLimit
	return opts, nil
}

// waitMined blocks until the transaction is mined and checks its status
func (c *ClientAdapter) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	ctx, cancel := c.confirmContext(ctx)
	defer cancel()

	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, fmt.Errorf("%w: %s mined with status %d", domain.ErrTransactionFailed, tx.Hash().Hex(), receipt.Status)
	}

	c.log.Debug("transaction mined", "tx_hash", tx.Hash().Hex(), "block", receipt.BlockNumber, "gas_used", receipt.GasUsed)
	return receipt, nil
}

// confirmContext bounds a confirmation wait by tx_timeout when one is set.
// Otherwise the wait lasts as long as ctx.
func (c *ClientAdapter) confirmContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.TxTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.TxTimeout)
	}
	return context.WithCancel(ctx)
}

type keySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func (s *keySigner) Address() string { return s.address.Hex() }

type contractFactory struct {
	client   *ClientAdapter
	artifact *models.Artifact
}

func (f *contractFactory) Artifact() *models.Artifact { return f.artifact }

// Attach binds to an existing contract after checking code exists there
func (f *contractFactory) Attach(ctx context.Context, address string) (usecase.ContractHandle, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	addr := common.HexToAddress(address)

	code, err := f.client.eth.CodeAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check code at %s: %w", addr.Hex(), err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoCode, addr.Hex())
	}

	eth := f.client.eth
	return &contractHandle{
		client:  f.client,
		address: addr,
		bound:   bind.NewBoundContract(addr, f.artifact.ABI, eth, eth, eth),
	}, nil
}

// Deploy sends the creation transaction and waits for it to be mined
func (f *contractFactory) Deploy(ctx context.Context, signer usecase.Signer, args ...any) (usecase.ContractHandle, error) {
	if len(f.artifact.Bytecode) == 0 {
		return nil, fmt.Errorf("%s has no bytecode, is it abstract or an interface?", f.artifact.Name)
	}

	opts, err := f.client.transactOpts(ctx, signer)
	if err != nil {
		return nil, err
	}

	address, tx, bound, err := bind.DeployContract(opts, f.artifact.ABI, f.artifact.Bytecode, f.client.eth, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy contract: %w", err)
	}

	f.client.log.Debug("contract deployment transaction sent", "contract", f.artifact.Name, "address", address.Hex(), "tx_hash", tx.Hash().Hex())

	if _, err := f.client.waitMined(ctx, tx); err != nil {
		return nil, err
	}

	return &contractHandle{
		client:  f.client,
		address: address,
		txHash:  tx.Hash().Hex(),
		bound:   bound,
	}, nil
}

type contractHandle struct {
	client  *ClientAdapter
	address common.Address
	txHash  string
	bound   *bind.BoundContract
}

func (h *contractHandle) Address() string      { return h.address.Hex() }
func (h *contractHandle) DeployTxHash() string { return h.txHash }

// Transact sends a state-changing call without waiting for it
func (h *contractHandle) Transact(ctx context.Context, signer usecase.Signer, method string, args ...any) (usecase.Transaction, error) {
	opts, err := h.client.transactOpts(ctx, signer)
	if err != nil {
		return nil, err
	}

	tx, err := h.bound.Transact(opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}
	return &transaction{client: h.client, tx: tx}, nil
}

type transaction struct {
	client *ClientAdapter
	tx     *types.Transaction
}

func (t *transaction) Hash() string { return t.tx.Hash().Hex() }

func (t *transaction) Wait(ctx context.Context) error {
	_, err := t.client.waitMined(ctx, t.tx)
	return err
}

// Ensure the adapter implements the interface
var _ usecase.BlockchainClient = (*ClientAdapter)(nil)
