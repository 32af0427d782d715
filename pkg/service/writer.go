package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"detect-sync/config"
	"detect-sync/pkg/host"
	"detect-sync/pkg/model"

	"go.uber.org/zap"
)

// ItemUpdater 写回所需的主机平台操作
type ItemUpdater interface {
	UpdateItem(ctx context.Context, recordID string, payload host.UpdatePayload) error
}

// UpdateOptions 写回时的可选内容
type UpdateOptions struct {
	Position   int    // 图片在字段中的位置索引
	Counts     string // 序列化后的计数文本，为空时不写
	Detections string // 序列化后的检测框文本，为空时不写
}

// Writer 构造更新载荷并写回子记录
type Writer struct {
	updater ItemUpdater
	cfg     *config.PipelineConfig
}

func NewWriter(updater ItemUpdater, cfg *config.PipelineConfig) *Writer {
	return &Writer{updater: updater, cfg: cfg}
}

// Update 把结果图片与可选文本字段写入指定记录
// recordID 或图片缺失时告警后直接返回，视为合法的跳过
func (w *Writer) Update(ctx context.Context, recordID string, img *model.AnnotatedImage, opts UpdateOptions) error {
	if recordID == "" {
		zap.S().Warnf("写回目标记录为空, 跳过")
		return nil
	}
	if img == nil {
		zap.S().Warnf("写回图片为空, 跳过")
		return nil
	}

	payload := host.UpdatePayload{
		ImageHash: map[string]host.ImageField{
			w.cfg.ImageField: {
				HeadNewLine: 0,
				EndNewLine:  0,
				Position:    opts.Position,
				Alt:         img.AltText,
				Extension:   NormalizeExtension(img.Extension),
				Base64:      base64.StdEncoding.EncodeToString(img.Content),
			},
		},
	}
	text := make(map[string]string)
	if opts.Counts != "" {
		text[w.cfg.CountsField] = opts.Counts
	}
	if opts.Detections != "" {
		text[w.cfg.DetectionsField] = opts.Detections
	}
	if len(text) > 0 {
		payload.TextHash = text
	}

	if err := w.updater.UpdateItem(ctx, recordID, payload); err != nil {
		return &WriteBackError{RecordID: recordID, Err: err}
	}
	zap.S().Infof("记录 %s 写回完成", recordID)
	return nil
}

// WriteLog 把运行日志写入指定记录的日志字段
func (w *Writer) WriteLog(ctx context.Context, recordID string, logText string) error {
	if recordID == "" {
		zap.S().Warnf("日志目标记录为空, 跳过")
		return nil
	}
	payload := host.UpdatePayload{
		TextHash: map[string]string{w.cfg.LogField: logText},
	}
	if err := w.updater.UpdateItem(ctx, recordID, payload); err != nil {
		return &WriteBackError{RecordID: recordID, Err: err}
	}
	return nil
}

// NormalizeExtension 扩展名统一为小写并带一个前导点
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ".png"
	}
	return "." + ext
}

// FormatCounts 把类别计数序列化为按标签排序的文本块
func FormatCounts(result *model.DetectionResult) string {
	if result == nil || len(result.Counts) == 0 {
		return ""
	}
	labels := make([]string, 0, len(result.Counts))
	for label := range result.Counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	lines := make([]string, 0, len(labels))
	for _, label := range labels {
		lines = append(lines, fmt.Sprintf("%s: %d", label, result.Counts[label]))
	}
	return strings.Join(lines, "\n")
}

// FormatDetections 把检测框序列化为响应顺序的文本块
func FormatDetections(result *model.DetectionResult) string {
	if result == nil || len(result.Detections) == 0 {
		return ""
	}
	lines := make([]string, 0, len(result.Detections))
	for _, d := range result.Detections {
		lines = append(lines, fmt.Sprintf("%s %.2f [%g, %g, %g, %g]",
			d.Label, d.Confidence, d.Box[0], d.Box[1], d.Box[2], d.Box[3]))
	}
	return strings.Join(lines, "\n")
}
