package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alexanderramin/smartcal/internal/llm"
	"github.com/alexanderramin/smartcal/internal/prompt"
)

func TestExtract_NoCredentialFailsSynchronously(t *testing.T) {
	chat := &stubChat{}
	c, _ := newTestClient(t, chat, withoutKey())

	var got *result
	c.Extract("明天开会", func(ok bool, payload string) { got = &result{ok, payload} })

	require.NotNil(t, got, "callback must run before Extract returns")
	assert.False(t, got.ok)
	assert.Equal(t, MsgNoCredential, got.payload)
	assert.Equal(t, 0, chat.Calls())
}

func TestExtract_SuccessDeliversValidatedJSON(t *testing.T) {
	chat := &stubChat{reply: replyText("```json\n{\"events\":[{\"日期\":\"2024-01-02\"}]}\n```")}
	c, _ := newTestClient(t, chat)

	cb, ch := collect()
	c.Extract("明天开会", cb)
	r := await(t, ch)

	assert.True(t, r.ok)
	assert.Equal(t, `{"events":[{"日期":"2024-01-02"}]}`, r.payload)

	req := chat.Last()
	assert.Equal(t, llm.CallExtract, req.Kind)
	assert.Equal(t, "sk-test", req.APIKey)
	assert.Equal(t, prompt.SystemPrompt, req.SystemPrompt)
	assert.Equal(t, prompt.Build("明天开会", fixedNow), req.UserPrompt)
	assert.True(t, req.JSONObject)
}

func TestExtract_CacheHitSkipsNetwork(t *testing.T) {
	chat := &stubChat{reply: replyText(`{"events":[]}`)}
	c, _ := newTestClient(t, chat)

	cb, ch := collect()
	c.Extract("今天开会", cb)
	first := await(t, ch)
	require.True(t, first.ok)

	var second *result
	c.Extract("今天开会", func(ok bool, payload string) { second = &result{ok, payload} })

	require.NotNil(t, second, "cache hit is delivered synchronously")
	assert.Equal(t, first, *second)
	assert.Equal(t, 1, chat.Calls())
}

func TestExtract_CacheExpiresWhenDateRollsOver(t *testing.T) {
	var day atomic.Int32
	now := func() time.Time { return fixedNow.AddDate(0, 0, int(day.Load())) }
	chat := &stubChat{}
	c, _ := newTestClient(t, chat, withNow(now))

	cb, ch := collect()
	c.Extract("今天开会", cb)
	await(t, ch)

	day.Store(1)
	c.Extract("今天开会", cb)
	await(t, ch)

	assert.Equal(t, 2, chat.Calls())
}

func TestExtract_InvalidJSONIsFailureAndNotCached(t *testing.T) {
	chat := &stubChat{reply: replyText("sorry, no events here")}
	c, _ := newTestClient(t, chat)

	cb, ch := collect()
	c.Extract("abc", cb)
	r := await(t, ch)

	assert.False(t, r.ok)
	assert.Contains(t, r.payload, "分析失败: ")
	assert.Contains(t, r.payload, llm.ErrInvalidOutput.Error())

	c.Extract("abc", cb)
	await(t, ch)
	assert.Equal(t, 2, chat.Calls())
}

func TestExtract_TransportErrorBecomesMessage(t *testing.T) {
	chat := &stubChat{reply: func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, llm.ErrUnauthorized
	}}
	c, _ := newTestClient(t, chat)

	cb, ch := collect()
	c.Extract("abc", cb)
	r := await(t, ch)

	assert.False(t, r.ok)
	assert.Equal(t, "分析失败: "+llm.ErrUnauthorized.Error(), r.payload)
}

func TestExtract_PanicIsRecovered(t *testing.T) {
	chat := &stubChat{reply: func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
		panic("boom")
	}}
	c, _ := newTestClient(t, chat)

	cb, ch := collect()
	c.Extract("abc", cb)
	r := await(t, ch)

	assert.False(t, r.ok)
	assert.Equal(t, "分析失败: boom", r.payload)
}

func TestExtract_NewerRequestSupersedesOlder(t *testing.T) {
	release := make(chan struct{})
	chat := &stubChat{reply: func(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		if req.UserPrompt == prompt.Build("first", fixedNow) {
			<-release
		}
		return &llm.ChatResponse{Text: `{"events":[]}`}, nil
	}}
	c, pool := newTestClient(t, chat)

	var firstCalled atomic.Bool
	c.Extract("first", func(bool, string) { firstCalled.Store(true) })

	cb, ch := collect()
	second := c.Extract("second", cb)
	r := await(t, ch)
	assert.True(t, r.ok)
	assert.True(t, second.Current())

	close(release)
	pool.Wait()
	assert.False(t, firstCalled.Load(), "stale result must be dropped")
}

func TestExtract_CacheHitSupersedesOlder(t *testing.T) {
	release := make(chan struct{})
	chat := &stubChat{reply: func(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		if req.UserPrompt == prompt.Build("slow", fixedNow) {
			<-release
		}
		return &llm.ChatResponse{Text: `{"events":[]}`}, nil
	}}
	c, pool := newTestClient(t, chat)

	cb, ch := collect()
	c.Extract("cached", cb)
	require.True(t, await(t, ch).ok)

	var slowCalled atomic.Bool
	slow := c.Extract("slow", func(bool, string) { slowCalled.Store(true) })
	require.True(t, slow.Current())

	var hit bool
	cached := c.Extract("cached", func(ok bool, _ string) { hit = ok })
	require.True(t, hit, "cache hit is delivered synchronously")
	assert.True(t, cached.Current())
	assert.False(t, slow.Current())

	close(release)
	pool.Wait()
	assert.False(t, slowCalled.Load(), "older result must be dropped after a cache hit")
	assert.True(t, cached.Current())
	assert.Equal(t, 2, chat.Calls())
}

func TestTicket_CancelDropsResult(t *testing.T) {
	release := make(chan struct{})
	chat := &stubChat{reply: func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
		<-release
		return &llm.ChatResponse{Text: `{}`}, nil
	}}
	c, pool := newTestClient(t, chat)

	var called atomic.Bool
	ticket := c.Extract("abc", func(bool, string) { called.Store(true) })
	ticket.Cancel()
	assert.False(t, ticket.Current())

	close(release)
	pool.Wait()
	assert.False(t, called.Load())
}

func TestTicket_CancelOnSynchronousOutcomeIsNoop(t *testing.T) {
	c, _ := newTestClient(t, &stubChat{}, withoutKey())

	ticket := c.Extract("abc", func(bool, string) {})
	assert.NotPanics(t, ticket.Cancel)

	var nilTicket *Ticket
	assert.NotPanics(t, nilTicket.Cancel)
}

func TestExtractSync(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c, _ := newTestClient(t, &stubChat{reply: replyText(`[1]`)})
		out, err := c.ExtractSync(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, "[1]", out)
	})

	t.Run("failure carries message", func(t *testing.T) {
		c, _ := newTestClient(t, &stubChat{}, withoutKey())
		_, err := c.ExtractSync(context.Background(), "abc")
		require.Error(t, err)
		assert.Equal(t, MsgNoCredential, err.Error())
	})

	t.Run("context cancelled", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		c, _ := newTestClient(t, &stubChat{reply: func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
			<-release
			return &llm.ChatResponse{Text: `{}`}, nil
		}})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := c.ExtractSync(ctx, "abc")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("superseded", func(t *testing.T) {
		release := make(chan struct{})
		c, _ := newTestClient(t, &stubChat{reply: func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
			<-release
			return &llm.ChatResponse{Text: `{}`}, nil
		}})

		errCh := make(chan error, 1)
		go func() {
			_, err := c.ExtractSync(context.Background(), "old")
			errCh <- err
		}()
		require.Eventually(t, func() bool { return c.latest.Load() == 1 }, time.Second, 5*time.Millisecond)

		c.Extract("new", func(bool, string) {})
		close(release)

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, ErrSuperseded)
		case <-time.After(2 * time.Second):
			t.Fatal("ExtractSync did not return")
		}
	})
}

func TestExtract_AfterCloseReportsFailure(t *testing.T) {
	c, _ := newTestClient(t, &stubChat{})
	c.Close()

	var got *result
	c.Extract("abc", func(ok bool, payload string) { got = &result{ok, payload} })

	require.NotNil(t, got)
	assert.False(t, got.ok)
	assert.Contains(t, got.payload, ErrPoolClosed.Error())
}

func TestConfigure_EmptyKeyRejected(t *testing.T) {
	chat := &stubChat{}
	c, _ := newTestClient(t, chat, withoutKey())

	ok, msg := c.Configure(context.Background(), "   ")

	assert.False(t, ok)
	assert.Equal(t, MsgEmptyKey, msg)
	assert.Equal(t, 0, chat.Calls())
}

func TestConfigure_ProbeFailureDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_key.json")
	chat := &stubChat{reply: func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, llm.ErrUnauthorized
	}}
	c := NewClient(Options{Chat: chat, Credentials: NewCredentialStore(path), Pool: NewPool(1)})
	defer c.Close()

	ok, msg := c.Configure(context.Background(), "sk-bad")

	assert.False(t, ok)
	assert.Equal(t, "API 密钥验证失败: "+llm.ErrUnauthorized.Error(), msg)
	assert.False(t, c.HasCredential())
	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConfigure_EmptyChoicesIsInvalidKey(t *testing.T) {
	chat := &stubChat{reply: func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, llm.ErrEmptyResponse
	}}
	c, _ := newTestClient(t, chat, withoutKey())

	ok, msg := c.Configure(context.Background(), "sk-new")

	assert.False(t, ok)
	assert.Equal(t, MsgKeyInvalid, msg)
}

func TestConfigure_SuccessPersistsAndEnables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_key.json")
	chat := &stubChat{reply: replyText("ok")}
	creds := NewCredentialStore(path)
	c := NewClient(Options{Chat: chat, Credentials: creds, Pool: NewPool(1), ProbeMaxTokens: 5})
	defer c.Close()
	require.False(t, c.HasCredential())

	ok, msg := c.Configure(context.Background(), " sk-new ")

	assert.True(t, ok)
	assert.Equal(t, MsgKeyUpdated, msg)
	assert.True(t, c.HasCredential())

	req := chat.Last()
	assert.Equal(t, llm.CallProbe, req.Kind)
	assert.Equal(t, "sk-new", req.APIKey)
	require.NotNil(t, req.MaxTokens)
	assert.Equal(t, 5, *req.MaxTokens)

	saved, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-new", saved)
}

func TestNewClient_UnreadableCredentialIsLogged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_key.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	core, logs := observer.New(zap.WarnLevel)

	c := NewClient(Options{
		Chat:        &stubChat{},
		Credentials: NewCredentialStore(path),
		Pool:        NewPool(1),
		Log:         zap.New(core).Sugar(),
	})
	defer c.Close()

	assert.False(t, c.HasCredential())
	assert.Equal(t, 1, logs.FilterMessage("loading api key failed").Len())
}
