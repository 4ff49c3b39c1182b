// Package extract sends free text to the chat model and returns the raw JSON
// reply describing the events it found.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderramin/smartcal/internal/llm"
	"github.com/alexanderramin/smartcal/internal/prompt"
)

// User-facing outcome messages.
const (
	MsgNoCredential   = "请先设置有效的API密钥"
	MsgEmptyKey       = "API 密钥不能为空"
	MsgKeyUpdated     = "API 密钥更新成功"
	MsgKeyInvalid     = "API 密钥无效"
	msgKeyCheckFailed = "API 密钥验证失败: "
	msgKeySaveFailed  = "API 密钥保存失败: "
	msgFailurePrefix  = "分析失败: "
)

// ErrSuperseded is returned by ExtractSync when a newer request or a
// cancellation made the result stale.
var ErrSuperseded = errors.New("extraction superseded")

// Callback receives the outcome of an extraction. On success payload is the
// validated JSON reply; on failure it is a human-readable message.
type Callback func(success bool, payload string)

// Options configures a Client. Chat, Credentials and Pool are required.
type Options struct {
	Chat        llm.ChatClient
	Credentials *CredentialStore
	Pool        *Pool
	Cache       *Cache
	Now         func() time.Time
	Log         *zap.SugaredLogger

	// ProbeMaxTokens bounds the trial request made by Configure.
	ProbeMaxTokens int
}

// Client runs extractions on a worker pool and caches the last response.
type Client struct {
	chat        llm.ChatClient
	credentials *CredentialStore
	pool        *Pool
	cache       *Cache
	now         func() time.Time
	log         *zap.SugaredLogger
	probeTokens int

	mu     sync.RWMutex
	apiKey string

	// latest is the epoch of the newest live request. Results carrying an
	// older epoch are dropped.
	latest atomic.Uint64
}

// NewClient creates a Client and loads any saved credential. A credential
// file that cannot be read is logged and treated as absent.
func NewClient(opts Options) *Client {
	c := &Client{
		chat:        opts.Chat,
		credentials: opts.Credentials,
		pool:        opts.Pool,
		cache:       opts.Cache,
		now:         opts.Now,
		log:         opts.Log,
		probeTokens: opts.ProbeMaxTokens,
	}
	if c.cache == nil {
		c.cache = &Cache{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	if c.probeTokens <= 0 {
		c.probeTokens = 5
	}

	if c.credentials != nil {
		key, err := c.credentials.Load()
		if err != nil {
			c.log.Warnw("loading api key failed", "path", c.credentials.Path(), "error", err)
		}
		c.apiKey = key
	}
	return c
}

// HasCredential reports whether extraction is enabled.
func (c *Client) HasCredential() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

func (c *Client) key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

// Configure validates key with a minimal trial request and, only if that
// succeeds, saves it and enables extraction.
func (c *Client) Configure(ctx context.Context, key string) (bool, string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, MsgEmptyKey
	}

	resp, err := c.chat.Complete(ctx, llm.ChatRequest{
		Kind:       llm.CallProbe,
		APIKey:     key,
		UserPrompt: "测试",
		MaxTokens:  &c.probeTokens,
	})
	switch {
	case errors.Is(err, llm.ErrEmptyResponse):
		return false, MsgKeyInvalid
	case err != nil:
		return false, msgKeyCheckFailed + err.Error()
	case resp == nil:
		return false, MsgKeyInvalid
	}

	if c.credentials != nil {
		if err := c.credentials.Save(key); err != nil {
			c.log.Errorw("saving api key failed", "path", c.credentials.Path(), "error", err)
			return false, msgKeySaveFailed + err.Error()
		}
	}

	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
	return true, MsgKeyUpdated
}

// Ticket identifies one Extract call.
type Ticket struct {
	client *Client
	epoch  uint64
}

// Cancel drops the result of the request if it has not been delivered yet.
// Cancelling a ticket without a client is a no-op.
func (t *Ticket) Cancel() {
	if t == nil || t.client == nil {
		return
	}
	t.client.latest.CompareAndSwap(t.epoch, t.epoch+1)
}

// Current reports whether the request is still the newest live one.
func (t *Ticket) Current() bool {
	if t == nil || t.client == nil {
		return false
	}
	return t.client.latest.Load() == t.epoch
}

// Extract builds the prompt for text and delivers the outcome to onComplete.
// Without a credential, or on a cache hit, onComplete runs before Extract
// returns. Otherwise the remote call runs on the pool and onComplete runs on
// a pool goroutine, unless a newer Extract or Ticket.Cancel superseded it.
func (c *Client) Extract(text string, onComplete Callback) *Ticket {
	return c.extract(text, onComplete, nil)
}

// extract is Extract with an optional hook run instead of onComplete when the
// result turns out to be stale.
func (c *Client) extract(text string, onComplete Callback, onStale func()) *Ticket {
	key := c.key()
	if key == "" {
		onComplete(false, MsgNoCredential)
		return &Ticket{}
	}

	userPrompt := prompt.Build(text, c.now())
	fp := prompt.Fingerprint(userPrompt)

	// Every request past this point supersedes older ones, cache hits included.
	epoch := c.latest.Add(1)
	ticket := &Ticket{client: c, epoch: epoch}

	if cached, ok := c.cache.Get(fp); ok {
		c.log.Debugw("extraction cache hit", "fingerprint", fp)
		onComplete(true, cached)
		return ticket
	}

	err := c.pool.Submit(func(ctx context.Context) {
		ok, payload := c.run(ctx, key, userPrompt, fp)
		if c.latest.Load() != epoch {
			c.log.Debugw("dropping stale extraction result", "epoch", epoch)
			if onStale != nil {
				onStale()
			}
			return
		}
		onComplete(ok, payload)
	})
	if err != nil {
		onComplete(false, msgFailurePrefix+err.Error())
	}
	return ticket
}

// run performs the remote call. Every failure, including a panic, becomes a
// (false, message) outcome.
func (c *Client) run(ctx context.Context, key, userPrompt, fp string) (ok bool, payload string) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorw("extraction panicked", "panic", r)
			ok, payload = false, fmt.Sprintf("%s%v", msgFailurePrefix, r)
		}
	}()

	resp, err := c.chat.Complete(ctx, llm.ChatRequest{
		Kind:         llm.CallExtract,
		APIKey:       key,
		SystemPrompt: prompt.SystemPrompt,
		UserPrompt:   userPrompt,
		JSONObject:   true,
	})
	if err != nil {
		return false, msgFailurePrefix + err.Error()
	}

	cleaned, err := llm.ValidateJSON(resp.Text)
	if err != nil {
		return false, msgFailurePrefix + err.Error()
	}

	c.cache.Put(fp, cleaned)
	return true, cleaned
}

// ExtractSync runs Extract and waits for its outcome or ctx. A failure outcome
// is returned as an error carrying the message.
func (c *Client) ExtractSync(ctx context.Context, text string) (string, error) {
	type outcome struct {
		ok      bool
		payload string
	}
	done := make(chan outcome, 1)
	stale := make(chan struct{}, 1)

	ticket := c.extract(text, func(ok bool, payload string) {
		done <- outcome{ok: ok, payload: payload}
	}, func() {
		stale <- struct{}{}
	})

	select {
	case o := <-done:
		if !o.ok {
			return "", errors.New(o.payload)
		}
		return o.payload, nil
	case <-stale:
		return "", ErrSuperseded
	case <-ctx.Done():
		ticket.Cancel()
		return "", ctx.Err()
	}
}

// Close stops the pool. In-flight calls are cancelled and their results
// dropped.
func (c *Client) Close() {
	c.latest.Add(1)
	c.pool.Close()
}
