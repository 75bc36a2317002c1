package global

import (
	"github.com/haierkeys/snapshot-share-service/pkg/fileurl"
)

var (
	// 程序执行目录
	ROOT    string
	Name    string = "Snapshot Share Service"
	Version string = "unknown"
)

func init() {

	filename := fileurl.GetExePath()
	ROOT = filename + "/"

}
