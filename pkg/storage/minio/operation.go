package minio

import (
	"bytes"
	"context"
	"io"
	"io/fs"

	"github.com/haierkeys/snapshot-share-service/pkg/fileurl"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
)

func (p *MinIO) key(pathKey string) string {
	return fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/") + pathKey
}

// PutContent 上传二进制内容，整体覆盖
func (p *MinIO) PutContent(ctx context.Context, pathKey string, content []byte, cType string) (string, error) {
	fileKey := p.key(pathKey)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(p.Config.BucketName),
		Key:         aws.String(fileKey),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(cType),
	}
	_, err := p.S3Manager.Upload(ctx, input)
	if err != nil {
		return "", errors.Wrap(err, "minio")
	}
	return fileKey, nil
}

// GetContent 读取对象全部内容
func (p *MinIO) GetContent(ctx context.Context, pathKey string) ([]byte, error) {
	fileKey := p.key(pathKey)

	output, err := p.S3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(fileKey),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fs.ErrNotExist
		}
		return nil, errors.Wrap(err, "minio")
	}
	defer output.Body.Close()

	content, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, errors.Wrap(err, "minio")
	}
	return content, nil
}

// Head 探测对象是否存在
func (p *MinIO) Head(ctx context.Context, pathKey string) (bool, error) {
	fileKey := p.key(pathKey)

	_, err := p.S3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.Config.BucketName),
		Key:    aws.String(fileKey),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "minio")
	}
	return true, nil
}

// List 按前缀列举对象 key，返回的 key 不含 CustomPath 前缀
func (p *MinIO) List(ctx context.Context, prefix string) ([]string, error) {
	custom := fileurl.PathSuffixCheckAdd(p.Config.CustomPath, "/")

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(p.S3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.Config.BucketName),
		Prefix: aws.String(custom + prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "minio")
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			keys = append(keys, (*obj.Key)[len(custom):])
		}
	}
	return keys, nil
}
