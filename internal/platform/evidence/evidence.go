// Package evidence は打刻時の証拠写真を保存し、参照文字列（URL/パス）を返す。
// 写真の中身は解析しない。縮小して JPEG に揃えるだけ。
package evidence

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/oklog/ulid/v2"

	"asistencia-backend/internal/platform/config"
)

var ErrNotImage = errors.New("photo is not a decodable image")

type Store interface {
	Save(ctx context.Context, employeeID int64, photo Photo) (string, error)
}

type Photo struct {
	Data        []byte
	ContentType string
}

func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case config.StorageLocal:
		return NewLocalStore(cfg.LocalDir, cfg.PublicPrefix), nil
	case config.StorageOSS:
		return NewOSSStore(cfg.OSS)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}

// Normalize: maxPx > 0 なら長辺 maxPx 以内に収めて JPEG に再エンコード。
// maxPx <= 0 ならそのまま保存する。
func Normalize(r io.Reader, maxPx int) (Photo, error) {
	if maxPx <= 0 {
		raw, err := io.ReadAll(r)
		if err != nil {
			return Photo{}, err
		}
		return Photo{Data: raw, ContentType: http.DetectContentType(raw)}, nil
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	b := img.Bounds()
	if b.Dx() > maxPx || b.Dy() > maxPx {
		img = imaging.Fit(img, maxPx, maxPx, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return Photo{}, err
	}
	return Photo{Data: buf.Bytes(), ContentType: "image/jpeg"}, nil
}

// ===== ID 生成（lends と同じ ULID） =====

type IDGen interface {
	New(t time.Time) (string, error)
}

type ulidGen struct{}

func (ulidGen) New(t time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t.UTC()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func objectName(ids IDGen, now time.Time, employeeID int64, contentType string) (string, error) {
	id, err := ids.New(now)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d%s", id, employeeID, extFor(contentType)), nil
}

func extFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
