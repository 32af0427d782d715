package cmd

import (
	"errors"
	"io"
	"os"

	"detect-sync/config"
	"detect-sync/pkg/detect"
	"detect-sync/pkg/extract"
	"detect-sync/pkg/host"
	"detect-sync/pkg/service"
	"detect-sync/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRunCommand() *cobra.Command {
	var configFilePath string
	var parentID string
	var bodyFilePath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "对一条父记录执行一次附件检测同步",
		Long:  "从记录正文中提取附件引用，提交第一张图片到检测服务，把检测结果写入关联的子记录，并把运行日志写回父记录",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.TryLoadFromDisk(configFilePath)
			if err != nil {
				zap.S().Errorf("读取本地配置文件错误:%s", err.Error())
				return
			}
			if errs := cfg.Validate(); len(errs) > 0 {
				zap.S().Errorf("本地配置文件验证错误:%s", errors.Join(errs...))
				return
			}

			body, err := readBody(bodyFilePath)
			if err != nil {
				zap.S().Errorf("读取记录正文错误:%s", err.Error())
				return
			}

			ctx := signals.SetupSignalHandler()

			hostClient := host.NewClient(cfg.HostConfig, cfg.PipelineConfig.LinkField)
			pipeline := service.NewPipeline(
				extract.NewExtractor(hostClient),
				detect.NewClient(cfg.DetectionConfig),
				service.NewResolver(hostClient),
				service.NewWriter(hostClient, cfg.PipelineConfig),
				service.NewZapReporter(),
				cfg.PipelineConfig,
			)

			if err := pipeline.Run(ctx, parentID, body); err != nil {
				zap.S().Errorf("同步失败:%s", err.Error())
				return
			}
			zap.S().Infof("父记录 %s 同步完成", parentID)
		},
	}

	cmd.Flags().StringVarP(&configFilePath, "config", "c", "./etc/config.yaml", "配置文件路径")
	cmd.Flags().StringVarP(&parentID, "parent", "p", "", "父记录标识")
	cmd.Flags().StringVarP(&bodyFilePath, "body", "b", "-", "记录正文文件路径, - 表示标准输入")
	cmd.MarkFlagRequired("parent")
	return cmd
}

// readBody 从文件或标准输入读取记录正文
func readBody(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
