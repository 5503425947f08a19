package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxAttempts int) Config {
	return Config{
		MaxAttempts:   maxAttempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestTransportRetriesServerError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer server.Close()

	client := &http.Client{Transport: NewTransport(nil, fastConfig(3))}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), hits.Load())
}

func TestTransportRetriesTooManyRequests(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewTransport(nil, fastConfig(3))}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), hits.Load())
}

func TestTransportDoesNotRetryClientError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewTransport(nil, fastConfig(3))}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestTransportExhaustsAttempts(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewTransport(nil, fastConfig(3))}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	// 尝试次数用尽后把最后一次响应原样交给调用方
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestTransportReplaysRequestBody(t *testing.T) {
	var hits atomic.Int32
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewTransport(nil, fastConfig(3))}
	resp, err := client.Post(server.URL, "text/plain", strings.NewReader("payload"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(2), hits.Load())

	t.Run("每次重试都带完整请求体", func(t *testing.T) {
		assert.Equal(t, []string{"payload", "payload"}, bodies)
	})
}

func TestTransportSkipsRetryForNonReplayableBody(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	// MultiReader 不在 http.NewRequest 的已知类型里，GetBody 不会被设置
	req, err := http.NewRequest(http.MethodPost, server.URL, io.MultiReader(strings.NewReader("payload")))
	require.NoError(t, err)
	require.Nil(t, req.GetBody)

	client := &http.Client{Transport: NewTransport(nil, fastConfig(3))}
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestTransportContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		cancel()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := fastConfig(3)
	cfg.InitialDelay = 10 * time.Second
	cfg.MaxDelay = 10 * time.Second

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	client := &http.Client{Transport: NewTransport(nil, cfg)}
	_, err = client.Do(req) //nolint:bodyclose // 取消路径没有响应体
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), hits.Load())
}

func TestNewTransportClampsAttempts(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	// 零值配置至少尝试一次
	client := &http.Client{Transport: NewTransport(nil, Config{})}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int32(1), hits.Load())
}

func TestDelayBackoff(t *testing.T) {
	tr := NewTransport(nil, Config{
		MaxAttempts:   5,
		InitialDelay:  time.Second,
		MaxDelay:      3 * time.Second,
		BackoffFactor: 2.0,
	})

	assert.Equal(t, time.Second, tr.delay(1))
	assert.Equal(t, 2*time.Second, tr.delay(2))

	t.Run("延迟不超过上限", func(t *testing.T) {
		assert.Equal(t, 3*time.Second, tr.delay(3))
		assert.Equal(t, 3*time.Second, tr.delay(4))
	})

	t.Run("无效因子回落到 2", func(t *testing.T) {
		tr := NewTransport(nil, Config{InitialDelay: time.Second, BackoffFactor: 0.5})
		assert.Equal(t, 2*time.Second, tr.delay(2))
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		resp *http.Response
		want ErrorType
	}{
		{"成功响应", nil, &http.Response{StatusCode: http.StatusOK}, ErrorTypeNone},
		{"服务端错误", nil, &http.Response{StatusCode: http.StatusInternalServerError}, ErrorTypeServerError},
		{"网关错误", nil, &http.Response{StatusCode: http.StatusBadGateway}, ErrorTypeServerError},
		{"限流", nil, &http.Response{StatusCode: http.StatusTooManyRequests}, ErrorTypeRetryableHTTP},
		{"客户端错误", nil, &http.Response{StatusCode: http.StatusNotFound}, ErrorTypeClientError},
		{"认证失败", nil, &http.Response{StatusCode: http.StatusUnauthorized}, ErrorTypeClientError},
		{"网络错误", syscall.ECONNREFUSED, nil, ErrorTypeNetwork},
		{"其他错误", errors.New("unrecognized scheme"), nil, ErrorTypePermanent},
		{"无错误无响应", nil, nil, ErrorTypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err, tt.resp))
		})
	}
}

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"空错误", nil, false},
		{"连接被拒", syscall.ECONNREFUSED, true},
		{"连接重置", syscall.ECONNRESET, true},
		{"网络操作错误", &net.OpError{Op: "dial", Err: errors.New("unreachable")}, true},
		{"URL 包装的网络错误", &url.Error{Op: "Get", URL: "http://x", Err: syscall.ECONNREFUSED}, true},
		{"上下文超时", context.DeadlineExceeded, true},
		{"错误文本含超时", errors.New("dial tcp: i/o timeout"), true},
		{"普通错误", errors.New("invalid character after top-level value"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNetworkError(tt.err))
		})
	}
}
