package artifact

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/go-logr/logr"
)

const archiveSuffix = ".tar.gz"

// S3API is the subset of the S3 client used by S3Installer.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Options configures the object storage client.
type S3Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// NewS3Client creates an S3 client. Static credentials are used when both keys
// are set; otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Installer installs framework releases published as archives in a bucket.
type S3Installer struct {
	Client S3API
	Dir    string
	Log    logr.Logger
}

// NewS3Installer returns an installer that extracts into dir.
func NewS3Installer(client S3API, dir string, log logr.Logger) *S3Installer {
	return &S3Installer{Client: client, Dir: dir, Log: log}
}

// ParseLocation splits s3://bucket/prefix into its bucket and prefix.
func ParseLocation(repository string) (bucket, prefix string, err error) {
	if !IsObjectStorage(repository) {
		return "", "", fmt.Errorf("not an s3 location: %s", repository)
	}
	rest := strings.TrimPrefix(repository, "s3://")
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in %s", repository)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// LatestVersion lists the archives under the location and returns the newest release.
func (i *S3Installer) LatestVersion(ctx context.Context, repository string) (string, error) {
	bucket, prefix, err := ParseLocation(repository)
	if err != nil {
		return "", err
	}

	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix + "/")
	}

	var tags []string
	for {
		out, err := i.Client.ListObjectsV2(ctx, input)
		if err != nil {
			return "", fmt.Errorf("failed to list objects in bucket %s: %w", bucket, err)
		}
		for _, obj := range out.Contents {
			if obj.Key == nil || !strings.HasSuffix(*obj.Key, archiveSuffix) {
				continue
			}
			tags = append(tags, strings.TrimSuffix(path.Base(*obj.Key), archiveSuffix))
		}
		if out.IsTruncated == nil || !*out.IsTruncated || out.NextContinuationToken == nil {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}

	tag, err := LatestTag(tags)
	if err != nil {
		return "", fmt.Errorf("%s: %w", repository, err)
	}
	return tag, nil
}

// Install downloads the archive for src's tag and extracts it.
func (i *S3Installer) Install(ctx context.Context, src Source) error {
	bucket, prefix, err := ParseLocation(src.Repository)
	if err != nil {
		return err
	}
	tag := src.Tag()
	if tag == "" {
		return fmt.Errorf("object storage installs need a tag revision, got %q", src.Revision)
	}

	key := tag + archiveSuffix
	if prefix != "" {
		key = prefix + "/" + key
	}

	out, err := i.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return fmt.Errorf("%s/%s: %w", bucket, key, ErrRevisionNotFound)
		}
		return fmt.Errorf("failed to download %s/%s: %w", bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	if src.Force {
		i.Log.Info("removing existing framework copy", "dir", i.Dir)
		if err := os.RemoveAll(i.Dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", i.Dir, err)
		}
	}

	i.Log.Info("extracting framework archive", "key", key, "dir", i.Dir)
	if err := extractTarGz(out.Body, i.Dir); err != nil {
		return fmt.Errorf("failed to extract %s: %w", key, err)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}

// extractTarGz unpacks regular files and directories into dir. Entries that
// would land outside dir are rejected.
func extractTarGz(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer func() { _ = gz.Close() }()

	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		target := filepath.Join(root, filepath.FromSlash(hdr.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes the target directory", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		}
	}
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	// #nosec G304 - target is confined to the extraction root
	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm|0o200)
	if err != nil {
		return err
	}
	// #nosec G110 - archives come from the operator's own bucket
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
