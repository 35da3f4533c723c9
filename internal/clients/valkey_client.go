package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/sentiboard/config"
	"github.com/valkey-io/valkey-go"
)

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
	valkeyInitErr  error
)

const (
	VALKEY_PROCESSED_KEY = "sentiboard:processed_requests"
	valkeyRetries        = 3
)

// ValkeyClient remembers which analysis requests have already been handled
// so redelivered Kafka messages are not appended to the history twice.
type ValkeyClient struct {
	Client valkey.Client
	cfg    config.ValkeyConfig
	mu     sync.Mutex
}

func newValkey(cfg config.ValkeyConfig) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func InitValkey(cfg config.ValkeyConfig) (*ValkeyClient, error) {
	valkeyOnce.Do(func() {
		client, err := newValkey(cfg)
		if err != nil {
			valkeyInitErr = err
			return
		}
		slog.Info("[ValkeyClient] Successfully connected to valkey",
			slog.String("address", cfg.Address))
		valkeyInstance = &ValkeyClient{Client: client, cfg: cfg}
	})
	return valkeyInstance, valkeyInitErr
}

func CloseValkey() {
	if valkeyInstance != nil {
		valkeyInstance.Client.Close()
	}
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := newValkey(vc.cfg)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed",
			slog.String("error", err.Error()))
		return
	}
	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) MarkProcessed(ctx context.Context, requestID string) error {
	completed := []valkey.Completed{
		vc.Client.B().Sadd().Key(VALKEY_PROCESSED_KEY).Member(requestID).Build(),
		vc.Client.B().Expire().Key(VALKEY_PROCESSED_KEY).Seconds(ttlSeconds(vc.cfg.DedupeTTL)).Build(),
	}

	responses := vc.DoMultiWithRetry(ctx, completed, valkeyRetries)
	for _, res := range responses {
		if err := res.Error(); err != nil {
			return fmt.Errorf("[ValkeyClient] failed to mark %s processed: %w", requestID, err)
		}
	}

	slog.Debug("[ValkeyClient] Marked request processed",
		slog.String("request_id", requestID))
	return nil
}

func (vc *ValkeyClient) IsProcessed(ctx context.Context, requestID string) (bool, error) {
	res := vc.DoWithRetry(ctx, vc.Client.B().Sismember().Key(VALKEY_PROCESSED_KEY).Member(requestID).Build(), valkeyRetries)
	if err := res.Error(); err != nil {
		if isConnectionError(err) {
			vc.recreateClient()
		}
		return false, fmt.Errorf("[ValkeyClient] failed to check %s: %w", requestID, err)
	}
	return res.AsBool()
}

func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		results = vc.Client.DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				if isConnectionError(r.Error()) {
					vc.recreateClient()
				}
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(time.Millisecond * 250)
	}

	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client.Do(ctx, completed)
		if result.Error() == nil {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

func ttlSeconds(ttl time.Duration) int64 {
	if ttl < time.Second {
		return 86400
	}
	return int64(ttl / time.Second)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}

func (vc *ValkeyClient) Ping(ctx context.Context) error {
	return vc.Client.Do(ctx, vc.Client.B().Ping().Build()).Error()
}
