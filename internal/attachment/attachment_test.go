package attachment

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/OkontaEhis/myhitmeup-backend/internal/docstore"
)

func TestUploadAll_KeepsInputOrder(t *testing.T) {
	store := docstore.NewMemory()
	u := NewUploader(store, 2)

	inputs := []string{
		"https://cdn.example.com/a.png",
		"data:text/plain;base64,aGVsbG8=",
		"data:,plain%20text",
	}
	urls, err := u.UploadAll(context.Background(), inputs)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(urls) != 3 {
		t.Fatalf("expected 3 urls, got %d", len(urls))
	}
	if urls[0] != inputs[0] {
		t.Fatalf("http url should pass through, got %q", urls[0])
	}

	a, err := store.GetAttachment(context.Background(), strings.TrimPrefix(urls[1], PathPrefix))
	if err != nil {
		t.Fatalf("get stored attachment: %v", err)
	}
	if string(a.Data) != "hello" || a.ContentType != "text/plain" {
		t.Fatalf("unexpected attachment: %q %q", a.ContentType, a.Data)
	}

	b, err := store.GetAttachment(context.Background(), strings.TrimPrefix(urls[2], PathPrefix))
	if err != nil {
		t.Fatalf("get stored attachment: %v", err)
	}
	if string(b.Data) != "plain text" || b.ContentType != "application/octet-stream" {
		t.Fatalf("unexpected attachment: %q %q", b.ContentType, b.Data)
	}
}

func TestUploadAll_RejectsBadInput(t *testing.T) {
	u := NewUploader(docstore.NewMemory(), 0)
	cases := []string{"ftp://example.com/x", "not a url", "data:text/plain;base64,@@@"}
	for _, in := range cases {
		if _, err := u.UploadAll(context.Background(), []string{in}); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%q: expected ErrInvalid, got %v", in, err)
		}
	}
}

type failingWriter struct{ calls atomic.Int32 }

func (f *failingWriter) PutAttachment(context.Context, *docstore.Attachment) error {
	f.calls.Add(1)
	return errors.New("store down")
}

func TestUploadAll_StoreFailure(t *testing.T) {
	w := &failingWriter{}
	u := NewUploader(w, 1)
	_, err := u.UploadAll(context.Background(), []string{"data:,x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if w.calls.Load() != 1 {
		t.Fatalf("expected one write attempt, got %d", w.calls.Load())
	}
}

func TestUploadAll_Empty(t *testing.T) {
	urls, err := NewUploader(docstore.NewMemory(), 1).UploadAll(context.Background(), nil)
	if err != nil || len(urls) != 0 {
		t.Fatalf("expected empty result, got %v %v", urls, err)
	}
}
