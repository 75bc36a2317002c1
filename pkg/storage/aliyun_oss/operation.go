package aliyun_oss

import (
	"bytes"
	"context"
	"io"
	"io/fs"

	"github.com/haierkeys/snapshot-share-service/pkg/fileurl"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"
)

func (p *OSS) key(pathKey string) string {
	return fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/") + pathKey
}

func (p *OSS) ensureBucket() error {
	if p.Bucket == nil {
		return p.GetBucket("")
	}
	return nil
}

// isNoSuchKey 判断 OSS 服务端错误是否为对象不存在
func isNoSuchKey(err error) bool {
	var svcErr oss.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.StatusCode == 404
	}
	return false
}

// PutContent 上传二进制内容，整体覆盖
// OSS 经典 SDK 不接受 context，超时由客户端配置控制
func (p *OSS) PutContent(_ context.Context, pathKey string, content []byte, cType string) (string, error) {
	if err := p.ensureBucket(); err != nil {
		return "", errors.Wrap(err, "aliyun_oss")
	}
	fileKey := p.key(pathKey)

	err := p.Bucket.PutObject(fileKey, bytes.NewReader(content), oss.ContentType(cType))
	if err != nil {
		return "", errors.Wrap(err, "aliyun_oss")
	}
	return fileKey, nil
}

// GetContent 读取对象全部内容
func (p *OSS) GetContent(_ context.Context, pathKey string) ([]byte, error) {
	if err := p.ensureBucket(); err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	fileKey := p.key(pathKey)

	body, err := p.Bucket.GetObject(fileKey)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fs.ErrNotExist
		}
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	defer body.Close()

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	return content, nil
}

// Head 探测对象是否存在
func (p *OSS) Head(_ context.Context, pathKey string) (bool, error) {
	if err := p.ensureBucket(); err != nil {
		return false, errors.Wrap(err, "aliyun_oss")
	}
	fileKey := p.key(pathKey)

	exist, err := p.Bucket.IsObjectExist(fileKey)
	if err != nil {
		return false, errors.Wrap(err, "aliyun_oss")
	}
	return exist, nil
}

// List 按前缀列举对象 key，返回的 key 不含 CustomPath 前缀
func (p *OSS) List(_ context.Context, prefix string) ([]string, error) {
	if err := p.ensureBucket(); err != nil {
		return nil, errors.Wrap(err, "aliyun_oss")
	}
	custom := fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/")

	var keys []string
	token := ""
	for {
		result, err := p.Bucket.ListObjectsV2(oss.Prefix(custom+prefix), oss.ContinuationToken(token))
		if err != nil {
			return nil, errors.Wrap(err, "aliyun_oss")
		}
		for _, obj := range result.Objects {
			keys = append(keys, obj.Key[len(custom):])
		}
		if !result.IsTruncated {
			break
		}
		token = result.NextContinuationToken
	}
	return keys, nil
}
