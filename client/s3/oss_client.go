package s3

import (
	"context"
	"io"
	"path"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
)

var (
	FilesBucket *oss.Bucket

	PutObjectFunc = PutObject
)

func Bootstrap(endpoint, accessKey, secretKey, bucket string) error {
	if endpoint == "" {
		endpoint = "dummy"
	}
	b, err := BuildBucket(endpoint, accessKey, secretKey, bucket)
	if err != nil {
		return errors.Wrap(err, "failed to build oss bucket")
	}
	FilesBucket = b
	return nil
}

func BuildBucket(endpoint, accesskey, secretKey, bucketName string) (*oss.Bucket, error) {
	// endpoint http://oss-cn-hangzhou.aliyuncs.com
	cli, err := oss.New(endpoint, accesskey, secretKey, oss.HTTPClient(nil))
	if err != nil {
		return nil, err
	}

	bucket, err := cli.Bucket(bucketName)
	if err != nil {
		return nil, err
	}
	return bucket, nil
}

// BidFilesKey is the object key of a deliverable archive of a bid.
func BidFilesKey(bidId types.ID, fileName string) string {
	return "bids/" + bidId.String() + "/" + path.Base(fileName)
}

func PutObject(ctx context.Context, key string, r io.Reader, opts ...oss.Option) error {
	if FilesBucket == nil {
		return errors.New("oss bucket is not configured")
	}

	var childSpan opentracing.Span
	if parentSpan := opentracing.SpanFromContext(ctx); parentSpan != nil {
		childSpan = parentSpan.Tracer().StartSpan("put-object", opentracing.ChildOf(parentSpan.Context()))
		childSpan.SetTag("object-key", key)
		defer childSpan.Finish()
	}

	err := FilesBucket.PutObject(key, r, opts...)
	if childSpan != nil {
		ext.Error.Set(childSpan, err != nil)
	}
	return errors.Wrapf(err, "failed to put object %s", key)
}
