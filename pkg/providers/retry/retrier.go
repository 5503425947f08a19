package retry

import (
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// Config 重试配置
type Config struct {
	// MaxAttempts 总尝试次数，含首次请求
	MaxAttempts int `json:"max_attempts"`

	// InitialDelay 首次重试前的延迟
	InitialDelay time.Duration `json:"initial_delay"`

	// MaxDelay 延迟上限
	MaxDelay time.Duration `json:"max_delay"`

	// BackoffFactor 指数退避因子
	BackoffFactor float64 `json:"backoff_factor"`
}

// DefaultConfig 返回默认重试配置
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// ErrorType 错误类型枚举
type ErrorType int

const (
	ErrorTypeNone          ErrorType = iota
	ErrorTypeNetwork                 // 网络瞬时错误
	ErrorTypeRetryableHTTP           // 可重试的HTTP错误（429）
	ErrorTypeServerError             // 服务端错误（5xx）
	ErrorTypeClientError             // 客户端错误（4xx），不重试
	ErrorTypePermanent               // 永久性错误，不重试
)

// Transport 带重试的 http.RoundTripper。
// 网络瞬时错误、429 和 5xx 按指数退避重试；4xx 直接返回。
// 整体耗时仍受外层 http.Client 的 Timeout 约束，
// 超时触发后上下文取消会终止剩余的重试。
type Transport struct {
	base   http.RoundTripper
	config Config
}

// NewTransport 创建重试传输层，base 为 nil 时使用 http.DefaultTransport
func NewTransport(base http.RoundTripper, cfg Config) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Transport{base: base, config: cfg}
}

// RoundTrip 实现 http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// 带请求体但无法重放时只尝试一次
	if req.Body != nil && req.GetBody == nil {
		return t.base.RoundTrip(req)
	}

	var lastResp *http.Response
	var lastErr error

	for attempt := 0; attempt < t.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(t.delay(attempt)):
			}

			if req.Body != nil {
				body, err := req.GetBody()
				if err != nil {
					break
				}
				req = req.Clone(req.Context())
				req.Body = body
			}
		}

		resp, err := t.base.RoundTrip(req)
		lastResp, lastErr = resp, err

		switch Classify(err, resp) {
		case ErrorTypeNone, ErrorTypeClientError, ErrorTypePermanent:
			return resp, err
		case ErrorTypeNetwork, ErrorTypeRetryableHTTP, ErrorTypeServerError:
			if attempt == t.config.MaxAttempts-1 {
				return resp, err
			}
			// 重试前排干并关闭响应体，让连接可以复用
			if resp != nil {
				_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
				_ = resp.Body.Close()
			}
		}
	}

	if lastErr != nil {
		return lastResp, lastErr
	}
	if lastResp != nil {
		return lastResp, nil
	}
	return nil, errors.New("no response received")
}

// delay 计算第 attempt 次重试前的等待时间
func (t *Transport) delay(attempt int) time.Duration {
	factor := t.config.BackoffFactor
	if factor <= 1.0 {
		factor = 2.0
	}
	d := time.Duration(float64(t.config.InitialDelay) * math.Pow(factor, float64(attempt-1)))
	if d > t.config.MaxDelay {
		d = t.config.MaxDelay
	}
	return d
}

// Classify 分类一次请求的结果
func Classify(err error, resp *http.Response) ErrorType {
	if err != nil {
		if IsNetworkError(err) {
			return ErrorTypeNetwork
		}
		return ErrorTypePermanent
	}

	if resp != nil {
		switch {
		case resp.StatusCode >= 500:
			return ErrorTypeServerError
		case resp.StatusCode == http.StatusTooManyRequests:
			return ErrorTypeRetryableHTTP
		case resp.StatusCode >= 400:
			return ErrorTypeClientError
		}
	}

	return ErrorTypeNone
}

// IsNetworkError 判断是否为可重试的网络错误
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return IsNetworkError(urlErr.Err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	networkPatterns := []string{
		"connection refused",
		"connection reset",
		"connection timed out",
		"timeout",
		"temporary failure",
		"network is unreachable",
		"no such host",
		"broken pipe",
		"i/o timeout",
		"eof",
	}
	for _, pattern := range networkPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
