// services/transfer_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"
)

// TransferClient is a RewardGateway backed by an external transfer service.
type TransferClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewTransferClient(baseURL, token string) *TransferClient {
	return &TransferClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type entryFeeRequest struct {
	Payer    string `json:"payer"`
	Treasury string `json:"treasury"`
	Amount   uint64 `json:"amount,string"`
}

type rewardTransferRequest struct {
	Vault     string `json:"vault"`
	Mint      string `json:"mint"`
	Owner     string `json:"owner"`
	Amount    uint64 `json:"amount,string"`
	Authority string `json:"authority"`
}

// CollectEntryFee calls POST /transfers/entry-fee.
func (c *TransferClient) CollectEntryFee(ctx context.Context, _ *gorm.DB, fee EntryFee) (*TransferReceipt, error) {
	return c.post(ctx, "/transfers/entry-fee", fee.IdempotencyKey, entryFeeRequest{
		Payer:    fee.Payer,
		Treasury: fee.Treasury,
		Amount:   fee.Amount,
	})
}

// TransferReward calls POST /transfers/reward, presenting the config's
// transfer authority.
func (c *TransferClient) TransferReward(ctx context.Context, _ *gorm.DB, t RewardTransfer) (*TransferReceipt, error) {
	if t.Authority.IsZero() {
		return nil, fmt.Errorf("%w: missing transfer authority", ErrUnauthorized)
	}
	return c.post(ctx, "/transfers/reward", t.IdempotencyKey, rewardTransferRequest{
		Vault:     t.Vault,
		Mint:      t.Mint,
		Owner:     t.Owner,
		Amount:    t.Amount,
		Authority: t.Authority.Delegate(),
	})
}

func (c *TransferClient) post(ctx context.Context, path, idempotencyKey string, payload interface{}) (*TransferReceipt, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call transfer service: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode != http.StatusOK {
		log.Printf("[GATEWAY] TransferService %s returned %d: %s", path, resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: %s returned %d", ErrTransferRejected, path, resp.StatusCode)
	}

	var out TransferReceipt
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode transfer receipt: %w", err)
	}
	return &out, nil
}
