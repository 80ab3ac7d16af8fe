// Package attachment stores bid attachments. Inline data URIs are decoded
// and saved in the document store; http(s) links are kept as given.
package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/OkontaEhis/myhitmeup-backend/internal/docstore"

	"golang.org/x/sync/errgroup"
)

// PathPrefix is where stored attachments are served.
const PathPrefix = "/attachments/"

// MaxSize caps a decoded attachment.
const MaxSize = 5 << 20

var ErrInvalid = errors.New("invalid attachment")

// Writer persists decoded attachments.
type Writer interface {
	PutAttachment(ctx context.Context, a *docstore.Attachment) error
}

type Uploader struct {
	store    Writer
	parallel int
}

func NewUploader(store Writer, parallel int) *Uploader {
	if parallel <= 0 {
		parallel = 4
	}
	return &Uploader{store: store, parallel: parallel}
}

// UploadAll stores every input concurrently and returns the resulting URLs
// in input order. The first failure cancels the rest.
func (u *Uploader) UploadAll(ctx context.Context, inputs []string) ([]string, error) {
	urls := make([]string, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.parallel)
	for i, in := range inputs {
		g.Go(func() error {
			out, err := u.upload(ctx, in)
			if err != nil {
				return fmt.Errorf("attachment %d: %w", i, err)
			}
			urls[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (u *Uploader) upload(ctx context.Context, in string) (string, error) {
	in = strings.TrimSpace(in)
	if strings.HasPrefix(in, "data:") {
		contentType, data, err := decodeDataURI(in)
		if err != nil {
			return "", err
		}
		a := &docstore.Attachment{ContentType: contentType, Data: data}
		if err := u.store.PutAttachment(ctx, a); err != nil {
			return "", err
		}
		return PathPrefix + a.ID, nil
	}
	parsed, err := url.Parse(in)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("%w: expected data URI or http(s) URL", ErrInvalid)
	}
	return in, nil
}

// decodeDataURI handles data:[<type>][;base64],<payload>.
func decodeDataURI(s string) (string, []byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed data URI", ErrInvalid)
	}
	contentType := "application/octet-stream"
	isBase64 := false
	for i, part := range strings.Split(meta, ";") {
		switch {
		case i == 0 && part != "":
			contentType = part
		case part == "base64":
			isBase64 = true
		}
	}
	var data []byte
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		data = b
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		data = []byte(unescaped)
	}
	if len(data) > MaxSize {
		return "", nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalid, MaxSize)
	}
	return contentType, data, nil
}
