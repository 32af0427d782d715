package config

import (
	"github.com/pkg/errors"
)

// PipelineConfig 流水线行为与写回字段配置
type PipelineConfig struct {
	LinkField       string `json:"linkField" yaml:"linkField"`             // 子记录上指向父记录的关联字段
	ImageField      string `json:"imageField" yaml:"imageField"`           // 结果图片写入的字段
	CountsField     string `json:"countsField" yaml:"countsField"`         // 计数文本写入的字段
	DetectionsField string `json:"detectionsField" yaml:"detectionsField"` // 检测框文本写入的字段
	LogField        string `json:"logField" yaml:"logField"`               // 运行日志写入父记录的字段
	ImagePosition   int    `json:"imagePosition" yaml:"imagePosition"`     // 图片在字段中的位置索引

	// AbortOnDetectFailure 为 true 时检测失败直接终止本次运行
	// 为 false 时降级继续：用原始图片走完解析与写回，不写检测文本字段
	AbortOnDetectFailure bool `json:"abortOnDetectFailure" yaml:"abortOnDetectFailure"`
}

func (p *PipelineConfig) Validate() []error {
	var errs = make([]error, 0)
	if p.LinkField == "" {
		errs = append(errs, errors.Errorf("关联字段不能为空"))
	}
	if p.ImageField == "" {
		errs = append(errs, errors.Errorf("图片字段不能为空"))
	}
	if p.LogField == "" {
		errs = append(errs, errors.Errorf("日志字段不能为空"))
	}
	return errs
}

func NewDefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		LinkField:       "parent_id",
		ImageField:      "result_image",
		CountsField:     "detect_counts",
		DetectionsField: "detect_boxes",
		LogField:        "run_log",
		ImagePosition:   0,
	}
}
