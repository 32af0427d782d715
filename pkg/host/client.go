package host

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"detect-sync/config"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// 诊断日志中响应体的截断长度
const maxBodyLogBytes = 512

// Client 主机平台 API 客户端
// 所有调用只尝试一次，不做重试，避免重复副作用
type Client struct {
	baseURL         string
	apiKey          string
	apiVersion      string
	childCollection string
	linkField       string
	httpClient      *http.Client
}

func NewClient(cfg *config.HostConfig, linkField string) *Client {
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:          cfg.APIKey,
		apiVersion:      cfg.APIVersion,
		childCollection: cfg.ChildCollection,
		linkField:       linkField,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond,
		},
	}
}

func (c *Client) auth() authBody {
	return authBody{APIVersion: c.apiVersion, APIKey: c.apiKey}
}

// FetchBinary 按 GUID 拉取正文引用的二进制内容
func (c *Client) FetchBinary(ctx context.Context, guid string) (*Binary, error) {
	url := fmt.Sprintf("%s/api/binaries/%s/get", c.baseURL, guid)
	var out binaryGetResponse
	if err := c.post(ctx, url, c.auth(), &out); err != nil {
		return nil, err
	}
	if out.Response.Base64 == "" {
		return nil, errors.Errorf("二进制 %s 的响应中没有 Base64 内容", guid)
	}
	content, err := base64.StdEncoding.DecodeString(out.Response.Base64)
	if err != nil {
		return nil, errors.Wrapf(err, "二进制 %s 的 Base64 内容无法解码", guid)
	}
	return &Binary{Content: content, Name: out.Response.Name, Size: out.Response.Size}, nil
}

// SelectChildren 查询关联字段等于 parentID 的子记录，按创建时间升序
func (c *Client) SelectChildren(ctx context.Context, parentID string) ([]ItemRef, error) {
	url := fmt.Sprintf("%s/api/items/%s/select", c.baseURL, c.childCollection)
	req := selectRequest{
		authBody: c.auth(),
		Filter:   map[string]string{c.linkField: parentID},
		Sort:     []string{"created_at asc"},
	}
	var out selectResponse
	if err := c.post(ctx, url, req, &out); err != nil {
		return nil, err
	}
	if out.Response.Length != len(out.Response.Items) {
		zap.S().Warnf("子记录查询 Length=%d 与 Items=%d 不一致", out.Response.Length, len(out.Response.Items))
	}
	return out.Response.Items, nil
}

// InsertChild 创建一条关联字段预置为 parentID 的子记录，返回新记录 ID
func (c *Client) InsertChild(ctx context.Context, parentID string) (string, error) {
	url := fmt.Sprintf("%s/api/items/%s/insert", c.baseURL, c.childCollection)
	req := insertRequest{
		authBody: c.auth(),
		Values:   map[string]string{c.linkField: parentID},
	}
	var out insertResponse
	if err := c.post(ctx, url, req, &out); err != nil {
		return "", err
	}
	if out.Response.ID == "" {
		return "", errors.Errorf("创建子记录成功但响应中没有 Id")
	}
	return out.Response.ID, nil
}

// UpdateItem 更新指定记录的图片/文本字段
func (c *Client) UpdateItem(ctx context.Context, recordID string, payload UpdatePayload) error {
	url := fmt.Sprintf("%s/api/items/%s/update", c.baseURL, recordID)
	req := updateRequest{authBody: c.auth(), UpdatePayload: payload}
	return c.post(ctx, url, req, nil)
}

// post 发送一次 JSON 请求，非 2xx 时带截断响应体返回错误
func (c *Client) post(ctx context.Context, url string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "序列化请求体失败")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "构造请求失败")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "请求 %s 失败", url)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "读取 %s 响应失败", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("请求 %s 返回 %d: %s", url, resp.StatusCode, truncate(data, maxBodyLogBytes))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "解析 %s 响应失败: %s", url, truncate(data, maxBodyLogBytes))
	}
	return nil
}

func truncate(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	return string(data[:limit]) + "...(截断)"
}
