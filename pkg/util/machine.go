package util

import (
	"sync"

	"github.com/denisbrodbeck/machineid"
)

var (
	machineIDOnce sync.Once
	machineID     string
)

// GetMachineID 获取本机机器码，获取失败时退化为固定值
// 用于给 Token 签名密钥加盐，避免配置文件泄漏后 Token 可被离线伪造
func GetMachineID() string {
	machineIDOnce.Do(func() {
		id, err := machineid.ID()
		if err != nil {
			id = "unknown-machine"
		}
		machineID = id
	})
	return machineID
}
