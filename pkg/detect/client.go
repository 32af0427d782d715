package detect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"detect-sync/config"
	"detect-sync/pkg/model"

	"go.uber.org/zap"
)

const maxBodyLogBytes = 512

type imagePayload struct {
	FileName string `json:"fileName"`
	Base64   string `json:"base64"`
}

type detectRequest struct {
	Images []imagePayload `json:"images"`
}

// Client 远程目标检测服务客户端
type Client struct {
	endpoint   string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(cfg *config.DetectionConfig) *Client {
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		timeout:    time.Duration(cfg.TimeoutMs) * time.Millisecond,
		httpClient: &http.Client{},
	}
}

// Submit 提交一张图片做检测，限时单次调用，不重试
// 返回的 AnnotatedImage 在标注图缺失或格式不对时为 nil，
// 此时记录告警，由下游回退到原始附件内容
func (c *Client) Submit(ctx context.Context, att model.Attachment) (*model.DetectionResult, *model.AnnotatedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqBody := detectRequest{
		Images: []imagePayload{{
			FileName: att.DisplayName,
			Base64:   base64.StdEncoding.EncodeToString(att.Content),
		}},
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/detect", bytes.NewReader(raw))
	if err != nil {
		return nil, nil, &HTTPError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeoutErr(err) {
			return nil, nil, &TimeoutError{Timeout: c.timeout.String()}
		}
		return nil, nil, &HTTPError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeoutErr(err) {
			return nil, nil, &TimeoutError{Timeout: c.timeout.String()}
		}
		return nil, nil, &HTTPError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &HTTPError{Status: resp.StatusCode, Body: truncate(data, maxBodyLogBytes)}
	}

	var result model.DetectionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, nil, &ParseError{Err: err}
	}
	zap.S().Infof("检测完成: %d 个目标, %d 个类别", len(result.Detections), len(result.Counts))

	var annotated *model.AnnotatedImage
	if result.ImageWithBoxes == "" {
		zap.S().Warnf("检测响应中没有标注图, 将回退为原始附件")
	} else {
		annotated, err = DecodeDataURL(result.ImageWithBoxes, fmt.Sprintf("detected: %s", att.DisplayName))
		if err != nil {
			zap.S().Warnf("标注图解析失败, 将回退为原始附件: %v", err)
			annotated = nil
		}
	}
	return &result, annotated, nil
}

// Healthz 探测检测服务是否可用
func (c *Client) Healthz(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("检测服务不可用: %d", resp.StatusCode)
	}
	return nil
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "...(截断)"
}
