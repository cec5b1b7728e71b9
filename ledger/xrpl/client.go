// Package xrpl is a thin reference ledger.Client implementation against
// XRPL's public JSON-RPC surface (submit, tx, account_info). No XRPL client
// library appears anywhere in the retrieval pack this module was built
// from, so this package talks the wire protocol directly with net/http and
// encoding/json rather than inventing a dependency — see DESIGN.md for the
// standard-library justification. Its constructor/config shape otherwise
// follows FredMunene-railway's EthClient.
package xrpl

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // XRPL's account-id derivation is specified over RIPEMD-160; there is no modern substitute.

	"github.com/liquidityos/escrow-coordinator/ledger"
)

// Config configures a Client against one XRPL JSON-RPC endpoint.
type Config struct {
	RPCURL  string
	Timeout time.Duration
}

// Client talks to XRPL's JSON-RPC admin/public API.
type Client struct {
	rpcURL string
	http   *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("xrpl: rpc url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		rpcURL: cfg.RPCURL,
		http:   &http.Client{Timeout: timeout},
	}, nil
}

type rpcRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{Method: method, Params: []interface{}{params}})
	if err != nil {
		return nil, fmt.Errorf("xrpl: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("xrpl: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ledger.ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("xrpl: read response: %w", err)
	}
	var out rpcResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("xrpl: decode response: %w", err)
	}
	return out.Result, nil
}

// GenerateWallet creates a fresh XRPL wallet. The "secret" here is a raw
// 32-byte random seed; no ed25519/secp256k1 keypair is derived from it
// anywhere in this module. wallet.Manager stores the seed as-is and hands it
// back to SubmitTransfer unchanged.
func (c *Client) GenerateWallet(_ context.Context) (string, []byte, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return "", nil, fmt.Errorf("xrpl: generate seed: %w", err)
	}
	address := deriveAddress(seed)
	return address, seed, nil
}

// EnsureFunded has no faucet to call against a real XRPL network, so it
// cannot top up an underfunded address the way ledger/mock's EnsureFunded
// does. What it can do honestly is verify the address already carries at
// least min, so a caller configured with ledger.ensure_funded_enabled finds
// out before submitting a transfer that would otherwise bounce.
func (c *Client) EnsureFunded(ctx context.Context, address string, min *uint256.Int) error {
	bal, err := c.ReadBalance(ctx, address, ledger.NativeAsset)
	if err != nil {
		return fmt.Errorf("xrpl: ensure_funded: %w", err)
	}
	if bal.Cmp(min) < 0 {
		return fmt.Errorf("xrpl: address %s balance %s is below required %s and this adapter has no faucet to top it up", address, bal.String(), min.String())
	}
	return nil
}

type txResult struct {
	Validated bool `json:"validated"`
	Meta      struct {
		TransactionResult string `json:"TransactionResult"`
		DeliveredAmount   string `json:"delivered_amount"`
	} `json:"meta"`
	TransactionType string `json:"TransactionType"`
	Destination     string `json:"Destination"`
}

func (c *Client) ResolveTx(ctx context.Context, txID string) (ledger.TxInfo, error) {
	raw, err := c.call(ctx, "tx", map[string]string{"transaction": txID})
	if err != nil {
		return ledger.TxInfo{}, err
	}
	var r txResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return ledger.TxInfo{}, fmt.Errorf("xrpl: decode tx result: %w", err)
	}
	if !r.Validated {
		return ledger.TxInfo{}, ledger.ErrNotValidated
	}
	amount, err := uint256.FromDecimal(r.Meta.DeliveredAmount)
	if err != nil {
		amount = uint256.NewInt(0)
	}
	return ledger.TxInfo{
		// XRPL reports TransactionType as "Payment"; ledger.NativeTransferType
		// is lowercase, so normalize here rather than forcing every adapter
		// (and the machine's comparison against the constant) to case-fold.
		Type:            strings.ToLower(r.TransactionType),
		Destination:     r.Destination,
		DeliveredAmount: amount,
		Validated:       r.Meta.TransactionResult == "tesSUCCESS",
	}, nil
}

type accountInfoResult struct {
	AccountData struct {
		Balance string `json:"Balance"`
	} `json:"account_data"`
}

func (c *Client) ReadBalance(ctx context.Context, address, asset string) (*uint256.Int, error) {
	raw, err := c.call(ctx, "account_info", map[string]string{"account": address})
	if err != nil {
		return nil, err
	}
	var r accountInfoResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("xrpl: decode account_info: %w", err)
	}
	bal, err := uint256.FromDecimal(r.AccountData.Balance)
	if err != nil {
		return uint256.NewInt(0), nil
	}
	return bal, nil
}

// SubmitTransfer submits a Payment and returns its hash as soon as the
// submit call reports engine_result tesSUCCESS. It does not wait for the
// transaction to reach a validated ledger, so a returned hash is not yet
// proof of validated inclusion.
func (c *Client) SubmitTransfer(ctx context.Context, secret []byte, from, to, asset string, amount *uint256.Int) (string, error) {
	tx := map[string]interface{}{
		"TransactionType": "Payment",
		"Account":         from,
		"Destination":     to,
		"Amount":          amount.String(),
	}
	payload := map[string]interface{}{
		"tx_json": tx,
		"secret":  string(secret),
	}
	raw, err := c.call(ctx, "submit", payload)
	if err != nil {
		return "", err
	}
	var out struct {
		EngineResult string `json:"engine_result"`
		TxJSON       struct {
			Hash string `json:"hash"`
		} `json:"tx_json"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("xrpl: decode submit result: %w", err)
	}
	if out.EngineResult != "tesSUCCESS" {
		return "", fmt.Errorf("%w: %s", ledger.ErrRejected, out.EngineResult)
	}
	return out.TxJSON.Hash, nil
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, "server_info", map[string]string{})
	return err
}

// deriveAddress runs XRPL's real account-id derivation, RIPEMD-160(SHA-256
// (public key)), over the generated seed standing in for a public key (no
// public key is derived from the seed, per GenerateWallet's doc comment
// above). The result is only hex-rendered with an "r" prefix
// rather than base58check-encoded, since no base58 codec appears anywhere
// in the retrieval pack this module was built from — see DESIGN.md.
func deriveAddress(seed []byte) string {
	sha := sha256.Sum256(seed)
	h := ripemd160.New()
	h.Write(sha[:])
	accountID := h.Sum(nil)
	return "r" + fmt.Sprintf("%x", accountID)
}
