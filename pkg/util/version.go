package util

// 通过 -ldflags 注入
var (
	version   = "dev"
	gitCommit = "none"
)

type VersionInfo struct {
	Version   string
	GitCommit string
}

func GetVersion() VersionInfo {
	return VersionInfo{
		Version:   version,
		GitCommit: gitCommit,
	}
}
