package service

import (
	"context"
	"fmt"
	"testing"

	"detect-sync/config"
	"detect-sync/pkg/model"

	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	attachments []model.Attachment
	err         error
	calls       int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) ([]model.Attachment, error) {
	f.calls++
	return f.attachments, f.err
}

type fakeDetector struct {
	result    *model.DetectionResult
	annotated *model.AnnotatedImage
	err       error
	calls     int
}

func (f *fakeDetector) Submit(_ context.Context, _ model.Attachment) (*model.DetectionResult, *model.AnnotatedImage, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.result, f.annotated, nil
}

type fakeChildResolver struct {
	ref   model.ChildRecordRef
	err   error
	calls int
}

func (f *fakeChildResolver) Resolve(_ context.Context, _ string) (model.ChildRecordRef, error) {
	f.calls++
	return f.ref, f.err
}

type writtenUpdate struct {
	recordID string
	img      *model.AnnotatedImage
	opts     UpdateOptions
}

type fakeResultWriter struct {
	updates   []writtenUpdate
	logs      map[string]string
	updateErr error
}

func (f *fakeResultWriter) Update(_ context.Context, recordID string, img *model.AnnotatedImage, opts UpdateOptions) error {
	f.updates = append(f.updates, writtenUpdate{recordID, img, opts})
	return f.updateErr
}

func (f *fakeResultWriter) WriteLog(_ context.Context, recordID string, logText string) error {
	if f.logs == nil {
		f.logs = make(map[string]string)
	}
	if _, dup := f.logs[recordID]; dup {
		return fmt.Errorf("log written twice for %s", recordID)
	}
	f.logs[recordID] = logText
	return nil
}

type fakeReporter struct {
	stages []string
}

func (f *fakeReporter) Report(_ context.Context, stage string, _ error) {
	f.stages = append(f.stages, stage)
}

type pipelineFixture struct {
	extractor *fakeExtractor
	detector  *fakeDetector
	resolver  *fakeChildResolver
	writer    *fakeResultWriter
	reporter  *fakeReporter
	cfg       *config.PipelineConfig
	pipeline  *Pipeline
}

func newFixture() *pipelineFixture {
	f := &pipelineFixture{
		extractor: &fakeExtractor{},
		detector:  &fakeDetector{},
		resolver:  &fakeChildResolver{ref: model.ChildRecordRef{ID: "c9"}},
		writer:    &fakeResultWriter{},
		reporter:  &fakeReporter{},
		cfg:       config.NewDefaultPipelineConfig(),
	}
	f.pipeline = NewPipeline(f.extractor, f.detector, f.resolver, f.writer, f.reporter, f.cfg)
	return f
}

func sampleAtt() model.Attachment {
	return model.Attachment{
		ID:          "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
		DisplayName: "sample.jpg",
		Source:      model.SourceBody,
		Content:     []byte("raw-image"),
	}
}

func TestRunSkipsWhenNoAttachments(t *testing.T) {
	t.Parallel()

	f := newFixture()
	err := f.pipeline.Run(context.Background(), "p1", "正文里什么都没有")
	require.NoError(t, err)

	require.Zero(t, f.detector.calls)
	require.Zero(t, f.resolver.calls)
	require.Empty(t, f.writer.updates)
	require.Len(t, f.writer.logs, 1)
	require.Contains(t, f.writer.logs["p1"], "跳过")
}

func TestRunExtractFailureStillFinalizes(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.extractor.err = fmt.Errorf("binary gone")

	err := f.pipeline.Run(context.Background(), "p1", "body")
	require.Error(t, err)

	require.Zero(t, f.detector.calls)
	require.Empty(t, f.writer.updates)
	require.Equal(t, []string{"extract"}, f.reporter.stages)
	require.Len(t, f.writer.logs, 1)
	require.Contains(t, f.writer.logs["p1"], "运行失败")
}

func TestRunDetectionFailureDegrades(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.extractor.attachments = []model.Attachment{sampleAtt()}
	f.detector.err = fmt.Errorf("detect down")

	err := f.pipeline.Run(context.Background(), "p1", "body")
	require.NoError(t, err)

	require.Equal(t, 1, f.resolver.calls)
	require.Len(t, f.writer.updates, 1)

	up := f.writer.updates[0]
	require.Equal(t, "c9", up.recordID)
	require.Equal(t, []byte("raw-image"), up.img.Content)
	require.Equal(t, ".jpg", up.img.Extension)
	require.Empty(t, up.opts.Counts)
	require.Empty(t, up.opts.Detections)
	require.Len(t, f.writer.logs, 1)
	require.Contains(t, f.writer.logs["p1"], "检测调用失败")
}

func TestRunDetectionFailureAborts(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.cfg.AbortOnDetectFailure = true
	f.extractor.attachments = []model.Attachment{sampleAtt()}
	f.detector.err = fmt.Errorf("detect down")

	err := f.pipeline.Run(context.Background(), "p1", "body")
	require.Error(t, err)

	require.Zero(t, f.resolver.calls)
	require.Empty(t, f.writer.updates)
	require.Equal(t, []string{"detect"}, f.reporter.stages)
	require.Len(t, f.writer.logs, 1)
}

func TestRunResolverFailureFinalizes(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.extractor.attachments = []model.Attachment{sampleAtt()}
	f.resolver.err = &ResolverQueryError{ParentID: "p1", Err: fmt.Errorf("query down")}

	err := f.pipeline.Run(context.Background(), "p1", "body")
	require.Error(t, err)
	require.True(t, IsResolverQueryError(err))

	require.Empty(t, f.writer.updates)
	require.Equal(t, []string{"resolve"}, f.reporter.stages)
	require.Len(t, f.writer.logs, 1)
}

func TestRunWriteBackFailureFinalizes(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.extractor.attachments = []model.Attachment{sampleAtt()}
	f.writer.updateErr = &WriteBackError{RecordID: "c9", Err: fmt.Errorf("400")}

	err := f.pipeline.Run(context.Background(), "p1", "body")
	require.Error(t, err)
	require.True(t, IsWriteBackError(err))
	require.Equal(t, []string{"writeback"}, f.reporter.stages)
	require.Len(t, f.writer.logs, 1)
}

func TestRunSuccess(t *testing.T) {
	t.Parallel()

	f := newFixture()
	second := sampleAtt()
	second.ID = "11111111-2222-3333-4444-555555555555"
	f.extractor.attachments = []model.Attachment{sampleAtt(), second}
	f.detector.result = &model.DetectionResult{
		Detections: []model.Detection{{Label: "person", Confidence: 0.9, Box: [4]float64{0, 0, 10, 10}}},
		Counts:     map[string]int{"person": 1},
	}
	f.detector.annotated = &model.AnnotatedImage{Content: []byte("foo"), Extension: ".png", AltText: "detected: sample.jpg"}

	err := f.pipeline.Run(context.Background(), "p1", "body")
	require.NoError(t, err)

	// 多个附件也只提交一次检测
	require.Equal(t, 1, f.detector.calls)
	require.Len(t, f.writer.updates, 1)

	up := f.writer.updates[0]
	require.Equal(t, "c9", up.recordID)
	require.Equal(t, []byte("foo"), up.img.Content)
	require.Equal(t, "person: 1", up.opts.Counts)
	require.Equal(t, "person 0.90 [0, 0, 10, 10]", up.opts.Detections)

	require.Len(t, f.writer.logs, 1)
	require.Contains(t, f.writer.logs["p1"], "运行结束")
}

func TestRunAnnotatedMissingFallsBackToOriginal(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.extractor.attachments = []model.Attachment{sampleAtt()}
	f.detector.result = &model.DetectionResult{Counts: map[string]int{"person": 1}}
	f.detector.annotated = nil

	err := f.pipeline.Run(context.Background(), "p1", "body")
	require.NoError(t, err)

	up := f.writer.updates[0]
	require.Equal(t, []byte("raw-image"), up.img.Content)
	require.Equal(t, "person: 1", up.opts.Counts)
}
