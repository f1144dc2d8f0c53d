package s3client

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"text2phenotype.com/hmmtag/logger"
)

const uriScheme = "s3://"

type EnvironmentConfig struct {
	BucketName  string `envconfig:"HMM_STORAGE_BUCKET_NAME" default:""`
	Region      string `envconfig:"HMM_AWS_REGION_NAME" default:"us-east-1"`
	AwsEndpoint string `envconfig:"HMM_AWS_ENDPOINT_URL" default:""`
	AccessKeyID string `envconfig:"HMM_AWS_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"HMM_AWS_ACCESS_KEY" default:""`
}

// Client reads and writes objects of one default bucket. A failed request is
// retried once on a fresh session.
type Client struct {
	mu   sync.Mutex
	sess *session.Session
	env  EnvironmentConfig
}

var clientLogger = logger.NewLogger("S3Client")
var sdkLogger = logger.NewLogger("S3-SDK")

func New() (*Client, error) {
	var env EnvironmentConfig
	if err := envconfig.Process("", &env); err != nil {
		clientLogger.Err(err).Msg("Failed to get proper variables from environment")
		return nil, err
	}
	client := Client{env: env}
	if _, err := client.refreshSession(); err != nil {
		return nil, err
	}
	return &client, nil
}

// ParseURI splits s3://bucket/key. ok is false for anything else.
func ParseURI(uri string) (bucket string, key string, ok bool) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, uriScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (client *Client) Download(key string) ([]byte, error) {
	return client.DownloadObject(client.env.BucketName, key)
}

func (client *Client) DownloadObject(bucket, key string) ([]byte, error) {
	if bucket == "" {
		return nil, errors.New("no bucket configured")
	}
	params := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	var data []byte
	err := client.withSession(func(sess *session.Session) error {
		var err error
		data, err = download(sess, params)
		return err
	})
	return data, err
}

func (client *Client) Upload(data string, key string) error {
	if client.env.BucketName == "" {
		return errors.New("no bucket configured")
	}
	return client.withSession(func(sess *session.Session) error {
		return upload(sess, &s3manager.UploadInput{
			Bucket: aws.String(client.env.BucketName),
			Key:    aws.String(key),
			Body:   strings.NewReader(data),
		})
	})
}

func (client *Client) Close() {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.sess = nil
}

func (client *Client) withSession(request func(sess *session.Session) error) error {
	client.mu.Lock()
	sess := client.sess
	client.mu.Unlock()
	if sess == nil {
		return errors.New("s3 client is closed")
	}

	err := request(sess)
	if err == nil {
		return nil
	}
	clientLogger.Error().Err(err).Msg("Caught error while using S3 session, trying to refresh it")
	sess, refreshErr := client.refreshSession()
	if refreshErr != nil {
		return fmt.Errorf("%v; refresh session: %w", err, refreshErr)
	}
	return request(sess)
}

func (client *Client) refreshSession() (*session.Session, error) {
	sess, err := session.NewSession(client.createConfig())
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, err
	}
	client.mu.Lock()
	client.sess = sess
	client.mu.Unlock()
	clientLogger.Info().Str("region", client.env.Region).Msg("S3 session initialized")
	return sess, nil
}

func (client *Client) createConfig() *aws.Config {
	cfg := aws.NewConfig().
		WithRegion(client.env.Region).
		WithMaxRetries(4).
		WithLogLevel(aws.LogDebug).
		WithLogger(getLogger(sdkLogger))

	if client.env.AccessKeyID != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(
			client.env.AccessKeyID,
			client.env.AccessKey,
			""))
	}
	if client.env.AwsEndpoint != "" {
		cfg = cfg.WithEndpoint(client.env.AwsEndpoint).
			WithS3ForcePathStyle(true)
	}
	return cfg
}

func upload(sess *session.Session, params *s3manager.UploadInput) error {
	hmmLogger := clientLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	hmmLogger.Debug().Msg("Uploading the file")
	_, err := s3manager.NewUploader(sess).Upload(params)
	return err
}

func download(sess *session.Session, params *s3.GetObjectInput) ([]byte, error) {
	hmmLogger := clientLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	buf := aws.NewWriteAtBuffer([]byte{})
	hmmLogger.Debug().Msg("Downloading file")
	size, err := s3manager.NewDownloader(sess).Download(buf, params)
	if err != nil {
		hmmLogger.Error().Err(err).Msg("Failed to download file")
		return nil, err
	}
	hmmLogger.Debug().Msgf("Downloaded %v bytes", size)
	return buf.Bytes(), nil
}

type s3Logger struct {
	hmmLogger zerolog.Logger
}

func getLogger(hmmLogger zerolog.Logger) *s3Logger {
	return &s3Logger{
		hmmLogger,
	}
}

func (logger *s3Logger) Log(v ...interface{}) {
	logger.hmmLogger.Debug().Msg(fmt.Sprint(v...))
}
