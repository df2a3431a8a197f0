package evidence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"asistencia-backend/internal/platform/config"
)

type objectPutter interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
}

type OSSStore struct {
	bucket     objectPutter
	endpoint   string
	bucketName string
	prefix     string
	publicBase string
	ids        IDGen
	now        func() time.Time
}

func NewOSSStore(c config.OSSConfig) (*OSSStore, error) {
	client, err := oss.New(c.Endpoint, c.AccessKey, c.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(c.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	// 軽い疎通確認（権限で弾かれる場合は続行）
	if loc, err := client.GetBucketLocation(c.Bucket); err != nil {
		if se, ok := err.(oss.ServiceError); ok && se.StatusCode == 403 {
			log.Printf("[WARN] oss: skip location check (bucket=%s): %s", c.Bucket, se.Code)
		} else {
			return nil, fmt.Errorf("verify bucket: %w", err)
		}
	} else {
		log.Printf("[INFO] oss: bucket %s location %s", c.Bucket, loc)
	}

	return newOSSStore(bkt, c), nil
}

func newOSSStore(bucket objectPutter, c config.OSSConfig) *OSSStore {
	return &OSSStore{
		bucket:     bucket,
		endpoint:   c.Endpoint,
		bucketName: c.Bucket,
		prefix:     strings.Trim(c.Prefix, "/"),
		publicBase: strings.TrimRight(c.PublicBase, "/"),
		ids:        ulidGen{},
		now:        time.Now,
	}
}

func (s *OSSStore) Save(ctx context.Context, employeeID int64, photo Photo) (string, error) {
	now := s.now().UTC()
	name, err := objectName(s.ids, now, employeeID, photo.ContentType)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%04d/%02d/%s", now.Year(), int(now.Month()), name)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	err = s.bucket.PutObject(key, bytes.NewReader(photo.Data),
		oss.WithContext(ctx),
		oss.ContentType(photo.ContentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("private, max-age=86400"),
	)
	if err != nil {
		return "", fmt.Errorf("oss put %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

func (s *OSSStore) PublicURL(key string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucketName, end, key)
}
