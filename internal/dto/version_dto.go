package dto

// VersionDTO server version information
// VersionDTO 服务端版本信息
type VersionDTO struct {
	Version   string `json:"version"`   // Server version // 服务端版本号
	GitTag    string `json:"gitTag"`    // Git tag // Git 标签
	BuildTime string `json:"buildTime"` // Build time // 构建时间
}
