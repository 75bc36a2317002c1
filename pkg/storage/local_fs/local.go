package local_fs

import (
	"github.com/haierkeys/snapshot-share-service/pkg/fileurl"
)

type Config struct {
	SavePath   string `yaml:"save-path" default:"storage/shares"`
	CustomPath string `yaml:"custom-path"`
}

type LocalFS struct {
	Config *Config
}

func NewClient(conf *Config) (*LocalFS, error) {
	return &LocalFS{
		Config: conf,
	}, nil
}

func (p *LocalFS) getSavePath() string {
	savePath := fileurl.PathSuffixCheckAdd(p.Config.SavePath, "/")
	if len(p.Config.CustomPath) > 0 {
		savePath += fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/")
	}
	return savePath
}
