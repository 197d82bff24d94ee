// Package publish uploads the final APK to an S3-compatible bucket.
package publish

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/checksum"
	"github.com/specialistvlad/nativeapk/internal/config"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
	"github.com/specialistvlad/nativeapk/internal/topologystore"
)

// ID addresses the upload node.
var ID = nodeid.New("apk", "publish")

const (
	apkContentType = "application/vnd.android.package-archive"
	// DigestMetadataKey holds the blake3 digest of the uploaded object.
	DigestMetadataKey = "blake3"
)

// PutObjectAPI is the part of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads files under a key prefix.
type Publisher struct {
	Client PutObjectAPI
	Bucket string
	Prefix string
}

// New builds a publisher for p. Static credentials are used when both keys
// are configured; otherwise the default AWS credential chain applies.
func New(ctx context.Context, p config.Publish) (*Publisher, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(p.Region),
	}
	if p.AccessKeyID != "" && p.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(p.AccessKeyID, p.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, apkerr.Config("load publish config", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(p.Endpoint)
		o.UsePathStyle = true
	})
	return &Publisher{Client: client, Bucket: p.Bucket, Prefix: p.Prefix}, nil
}

// Key is the object key for the file at local.
func (p *Publisher) Key(local string) string {
	return path.Join(strings.Trim(p.Prefix, "/"), filepath.Base(local))
}

// Upload stores the file at local and returns its key and digest.
func (p *Publisher) Upload(ctx context.Context, local string) (key, digest string, err error) {
	logger := ctxlog.FromContext(ctx)
	if digest, err = checksum.File(local); err != nil {
		return "", "", err
	}

	f, err := os.Open(local)
	if err != nil {
		return "", "", apkerr.IO("publish", local, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", "", apkerr.IO("publish", local, err)
	}

	key = p.Key(local)
	logger.Debug("Uploading archive.", "bucket", p.Bucket, "key", key, "size", info.Size())
	_, err = p.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(apkContentType),
		Metadata:      map[string]string{DigestMetadataKey: digest},
	})
	if err != nil {
		// Network failures are transient from the executor's point of view.
		return "", "", apkerr.IO("publish", "s3://"+p.Bucket+"/"+key, err)
	}
	logger.Info("Archive published.", "bucket", p.Bucket, "key", key, "blake3", digest)
	return key, digest, nil
}

// Attach adds the upload of local as a node depending on after.
func Attach(ctx context.Context, topo topologystore.Store, after *node.Node, p *Publisher, local string) (*node.Node, error) {
	n := node.New(ID, node.KindPublish, func(ctx context.Context) (any, error) {
		key, _, err := p.Upload(ctx, local)
		return key, err
	})
	if err := topo.AddNode(ctx, n); err != nil {
		return nil, err
	}
	if err := topo.AddDependency(ctx, after.ID, n.ID); err != nil {
		return nil, err
	}
	return n, nil
}
