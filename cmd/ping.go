package cmd

import (
	"errors"

	"detect-sync/config"
	"detect-sync/pkg/detect"
	"detect-sync/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewPingCommand() *cobra.Command {
	var configFilePath string

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "探测检测服务是否可用",
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

			ctx := signals.SetupSignalHandler()
			if err := detect.NewClient(cfg.DetectionConfig).Healthz(ctx); err != nil {
				zap.S().Errorf("检测服务探测失败:%s", err.Error())
				return
			}
			zap.S().Info("检测服务正常")
		},
	}

	cmd.Flags().StringVarP(&configFilePath, "config", "c", "./etc/config.yaml", "配置文件路径")
	return cmd
}
