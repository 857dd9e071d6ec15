package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"kis-canvas/internal/domain"
	"kis-canvas/internal/dto"
	"kis-canvas/internal/repository"

	"github.com/sirupsen/logrus"
)

// API 路径
const (
	colorsPath     = "/api/colors"
	canvasPath     = "/api/canvas"
	placePixelPath = "/api/place-pixel"
	cooldownPath   = "/api/cooldown"

	// ClientIDHeader 用于在服务端日志中关联同一个客户端实例
	ClientIDHeader = "X-Client-ID"

	maxBodySize = 8 << 20 // 画布状态可能较大
)

// HTTPCanvasRepository 是 CanvasRepository 接口的 HTTP 实现
type HTTPCanvasRepository struct {
	baseURL  *url.URL
	client   *http.Client
	clientID string
	log      *logrus.Entry
}

// NewHTTPCanvasRepository 创建 HTTPCanvasRepository 实例。
// jar 用于在放置和冷却查询之间保持服务端会话 Cookie，可与推送通道共享。
func NewHTTPCanvasRepository(baseURL string, jar http.CookieJar, timeout time.Duration, clientID string, logger *logrus.Logger) (*HTTPCanvasRepository, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("httpapi: parse base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("httpapi: base url %q must use http or https", baseURL)
	}
	if jar == nil {
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("httpapi: create cookie jar: %w", err)
		}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HTTPCanvasRepository{
		baseURL:  u,
		client:   &http.Client{Jar: jar, Timeout: timeout},
		clientID: clientID,
		log:      logger.WithField("component", "canvas_api"),
	}, nil
}

// GetColors 实现 GET /api/colors
func (r *HTTPCanvasRepository) GetColors(ctx context.Context) ([]string, error) {
	var body dto.ColorsResponse
	if err := r.getJSON(ctx, colorsPath, &body); err != nil {
		return nil, err
	}
	if body.Colors == nil {
		return nil, fmt.Errorf("httpapi: %s: missing colors: %w", colorsPath, repository.ErrUnexpectedResponse)
	}
	return body.Colors, nil
}

// GetCanvas 实现 GET /api/canvas
func (r *HTTPCanvasRepository) GetCanvas(ctx context.Context) (*domain.CanvasState, error) {
	var body dto.CanvasResponse
	if err := r.getJSON(ctx, canvasPath, &body); err != nil {
		return nil, err
	}
	if body.Pixels == nil {
		return nil, fmt.Errorf("httpapi: %s: missing pixels: %w", canvasPath, repository.ErrUnexpectedResponse)
	}
	pixels, skipped := domain.PixelMapFromWire(body.Pixels)
	if skipped > 0 {
		r.log.WithField("skipped", skipped).Warn("Canvas response contained malformed pixel keys")
	}
	return &domain.CanvasState{Width: body.Width, Height: body.Height, Pixels: pixels}, nil
}

// PlacePixel 实现 POST /api/place-pixel（表单编码，携带会话 Cookie）
func (r *HTTPCanvasRepository) PlacePixel(ctx context.Context, x, y int, color string) (*domain.PlacementReceipt, error) {
	form := url.Values{}
	form.Set("x", strconv.Itoa(x))
	form.Set("y", strconv.Itoa(y))
	form.Set("color", color)

	req, err := r.newRequest(ctx, http.MethodPost, placePixelPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpapi: %s: %w", placePixelPath, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("httpapi: %s: read body: %w", placePixelPath, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &repository.RejectionError{StatusCode: resp.StatusCode, Detail: rejectionDetail(resp, raw)}
	}

	var body dto.PlaceResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("httpapi: %s: decode: %w", placePixelPath, err)
	}
	until, err := domain.ParseCooldownUntil(body.CooldownUntil)
	if err != nil {
		return nil, fmt.Errorf("httpapi: %s: %v: %w", placePixelPath, err, repository.ErrUnexpectedResponse)
	}
	return &domain.PlacementReceipt{CooldownUntil: until}, nil
}

// GetCooldown 实现 GET /api/cooldown（携带会话 Cookie）
func (r *HTTPCanvasRepository) GetCooldown(ctx context.Context) (*domain.CooldownStatus, error) {
	var body dto.CooldownResponse
	if err := r.getJSON(ctx, cooldownPath, &body); err != nil {
		return nil, err
	}
	return &domain.CooldownStatus{
		CanPlace:         body.CanPlace,
		RemainingSeconds: int(body.RemainingSeconds),
	}, nil
}

// --- 辅助函数 ---

func (r *HTTPCanvasRepository) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	target := r.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("httpapi: build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.clientID != "" {
		req.Header.Set(ClientIDHeader, r.clientID)
	}
	return req, nil
}

func (r *HTTPCanvasRepository) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := r.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("httpapi: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("httpapi: %s: status %d: %w", path, resp.StatusCode, repository.ErrUnexpectedResponse)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return fmt.Errorf("httpapi: %s: decode: %w", path, err)
	}
	return nil
}

// rejectionDetail 提取错误响应中的 detail。
// detail 通常是字符串，校验失败时可能是数组，此时原样返回 JSON 文本。
func rejectionDetail(resp *http.Response, raw []byte) string {
	var body dto.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Detail) > 0 {
		var text string
		if err := json.Unmarshal(body.Detail, &text); err == nil {
			return text
		}
		return string(body.Detail)
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
