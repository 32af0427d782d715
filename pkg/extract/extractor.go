package extract

import (
	"context"
	"fmt"
	"regexp"

	"detect-sync/pkg/host"
	"detect-sync/pkg/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 正文中嵌入附件引用的固定模式：/binaries/<GUID>/show
var binaryRefPattern = regexp.MustCompile(`/binaries/([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})/show`)

// FetchError 附件拉取失败
// 对整次运行是致命的：被选中的图片拿不到就没有继续的意义
type FetchError struct {
	GUID string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("附件 %s 拉取失败: %v", e.GUID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// BinaryFetcher 拉取二进制内容的最小接口，由主机平台客户端实现
type BinaryFetcher interface {
	FetchBinary(ctx context.Context, guid string) (*host.Binary, error)
}

// Extractor 从记录正文中提取附件
type Extractor struct {
	fetcher BinaryFetcher
}

func NewExtractor(fetcher BinaryFetcher) *Extractor {
	return &Extractor{fetcher: fetcher}
}

// Scan 返回正文中按出现顺序排列的附件 GUID
// 模式之外不做去重，无法解析为 UUID 的 token 直接丢弃
func (e *Extractor) Scan(body string) []string {
	matches := binaryRefPattern.FindAllStringSubmatch(body, -1)
	guids := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, err := uuid.Parse(m[1]); err != nil {
			zap.S().Debugf("忽略无法解析的附件标识 %q: %v", m[1], err)
			continue
		}
		guids = append(guids, m[1])
	}
	return guids
}

// Extract 为每个匹配到的引用拉取内容，产出附件序列
// 任意一个附件拉取失败即返回 FetchError
func (e *Extractor) Extract(ctx context.Context, body string) ([]model.Attachment, error) {
	guids := e.Scan(body)
	attachments := make([]model.Attachment, 0, len(guids))
	for _, guid := range guids {
		bin, err := e.fetcher.FetchBinary(ctx, guid)
		if err != nil {
			return nil, &FetchError{GUID: guid, Err: err}
		}
		name := bin.Name
		if name == "" {
			name = guid
		}
		attachments = append(attachments, model.Attachment{
			ID:          guid,
			DisplayName: name,
			Source:      model.SourceBody,
			Content:     bin.Content,
		})
		zap.S().Debugf("附件 %s (%s) 提取完成, %d 字节", guid, name, len(bin.Content))
	}
	return attachments, nil
}
