package service

import (
	"context"
	"path/filepath"
	"strings"

	"detect-sync/config"
	"detect-sync/pkg/model"

	"go.uber.org/zap"
)

// AttachmentExtractor 从正文提取附件
type AttachmentExtractor interface {
	Extract(ctx context.Context, body string) ([]model.Attachment, error)
}

// Detector 提交一张图片做检测
type Detector interface {
	Submit(ctx context.Context, att model.Attachment) (*model.DetectionResult, *model.AnnotatedImage, error)
}

// ChildResolver 定位或创建子记录
type ChildResolver interface {
	Resolve(ctx context.Context, parentID string) (model.ChildRecordRef, error)
}

// ResultWriter 写回结果与运行日志
type ResultWriter interface {
	Update(ctx context.Context, recordID string, img *model.AnnotatedImage, opts UpdateOptions) error
	WriteLog(ctx context.Context, recordID string, logText string) error
}

// Pipeline 串联提取、检测、子记录解析与写回
// 线性状态机，单线程顺序执行，同一时刻只有一个外部调用在途
type Pipeline struct {
	extractor AttachmentExtractor
	detector  Detector
	resolver  ChildResolver
	writer    ResultWriter
	reporter  Reporter
	cfg       *config.PipelineConfig
}

func NewPipeline(
	extractor AttachmentExtractor,
	detector Detector,
	resolver ChildResolver,
	writer ResultWriter,
	reporter Reporter,
	cfg *config.PipelineConfig,
) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		detector:  detector,
		resolver:  resolver,
		writer:    writer,
		reporter:  reporter,
		cfg:       cfg,
	}
}

// Run 执行一次完整的流水线
// 无论成败, 结束前都会把累积的运行日志写入父记录的日志字段
func (p *Pipeline) Run(ctx context.Context, parentID string, body string) error {
	return p.RunWithLog(ctx, parentID, body, model.NewRunLog())
}

// RunWithLog 以外部提供的日志缓冲执行, 测试用
func (p *Pipeline) RunWithLog(ctx context.Context, parentID string, body string, runLog *model.RunLog) (err error) {
	runLog.Appendf("运行开始: 父记录 %s", parentID)
	defer func() {
		if err != nil {
			runLog.Appendf("运行失败: %v", err)
		} else {
			runLog.Appendf("运行结束")
		}
		p.finalize(ctx, parentID, runLog)
	}()
	return p.run(ctx, parentID, body, runLog)
}

func (p *Pipeline) run(ctx context.Context, parentID string, body string, runLog *model.RunLog) error {
	attachments, err := p.extractor.Extract(ctx, body)
	if err != nil {
		runLog.Appendf("附件提取失败: %v", err)
		p.reporter.Report(ctx, "extract", err)
		return err
	}
	if len(attachments) == 0 {
		runLog.Appendf("正文中没有附件引用, 本次运行跳过")
		zap.S().Infof("父记录 %s 正文中没有附件引用", parentID)
		return nil
	}

	// 每次运行只提交第一个正文附件
	att := attachments[0]
	runLog.Appendf("发现 %d 个附件, 提交 %s (%s)", len(attachments), att.ID, att.DisplayName)

	result, annotated, derr := p.detector.Submit(ctx, att)
	if derr != nil {
		runLog.Appendf("检测调用失败: %v", derr)
		if p.cfg.AbortOnDetectFailure {
			p.reporter.Report(ctx, "detect", derr)
			return derr
		}
		zap.S().Warnf("检测失败, 降级继续使用原始图片: %v", derr)
		result = nil
		annotated = nil
	} else {
		runLog.Appendf("检测完成: %d 个目标", len(result.Detections))
	}
	if annotated == nil {
		annotated = fallbackImage(att)
		runLog.Appendf("使用原始附件作为结果图片")
	}

	child, rerr := p.resolver.Resolve(ctx, parentID)
	if rerr != nil {
		runLog.Appendf("子记录解析失败: %v", rerr)
		p.reporter.Report(ctx, "resolve", rerr)
		return rerr
	}
	runLog.Appendf("子记录: %s", child.ID)

	opts := UpdateOptions{Position: p.cfg.ImagePosition}
	if result != nil {
		opts.Counts = FormatCounts(result)
		opts.Detections = FormatDetections(result)
	}
	if werr := p.writer.Update(ctx, child.ID, annotated, opts); werr != nil {
		runLog.Appendf("写回失败: %v", werr)
		p.reporter.Report(ctx, "writeback", werr)
		return werr
	}
	runLog.Appendf("写回完成: 子记录 %s", child.ID)
	return nil
}

// finalize 把运行日志写入父记录, 成功失败都会执行
// 即使运行上下文已被取消也要落日志
func (p *Pipeline) finalize(ctx context.Context, parentID string, runLog *model.RunLog) {
	ctx = context.WithoutCancel(ctx)
	if err := p.writer.WriteLog(ctx, parentID, runLog.String()); err != nil {
		zap.S().Errorf("运行日志写入父记录 %s 失败: %v", parentID, err)
	}
}

// fallbackImage 用原始附件内容构造结果图片
func fallbackImage(att model.Attachment) *model.AnnotatedImage {
	ext := strings.ToLower(filepath.Ext(att.DisplayName))
	if ext == "" {
		ext = ".png"
	}
	return &model.AnnotatedImage{
		Content:   att.Content,
		Extension: ext,
		AltText:   att.DisplayName,
	}
}
