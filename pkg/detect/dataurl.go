package detect

import (
	"encoding/base64"
	"regexp"
	"strings"

	"detect-sync/pkg/model"

	"github.com/pkg/errors"
)

var dataURLPattern = regexp.MustCompile(`^data:([^;,]+);base64,(.+)$`)

// defaultExtension MIME 缺失或未知时的兜底扩展名
const defaultExtension = ".png"

// DecodeDataURL 解析 data:<mime>;base64,<payload> 形式的标注图
// 格式不符或解码失败时返回错误，由调用方降级处理
func DecodeDataURL(raw string, altText string) (*model.AnnotatedImage, error) {
	m := dataURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, errors.Errorf("不是合法的 data-URL")
	}
	content, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, errors.Wrap(err, "data-URL 的 Base64 负载无法解码")
	}
	return &model.AnnotatedImage{
		Content:   content,
		MIMEType:  m[1],
		Extension: extensionForMIME(m[1]),
		AltText:   altText,
	}, nil
}

// extensionForMIME 由 MIME 子类型推导文件扩展名
func extensionForMIME(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return defaultExtension
	}
}
