package memory

import (
	"bytes"
	"context"
	"testing"
)

func TestBlobStorePutObjectCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte("<svg/>")
	uri, err := store.PutObject(context.Background(), "logos/ACME/abc.svg", "image/svg+xml", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	if uri != "memory://logos/ACME/abc.svg" {
		t.Fatalf("unexpected uri %s", uri)
	}
	payload[0] = 'X'

	obj, ok := store.Get("logos/ACME/abc.svg")
	if !ok {
		t.Fatal("expected object to be stored")
	}
	if string(obj.Data) != "<svg/>" {
		t.Fatalf("expected stored copy to be immutable, got %q", obj.Data)
	}
	if obj.ContentType != "image/svg+xml" {
		t.Fatalf("unexpected content type %q", obj.ContentType)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one object, got %d", store.Len())
	}
}

func TestBlobStoreRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := NewBlobStore().PutObject(context.Background(), "", "", bytes.NewReader(nil)); err == nil {
		t.Fatal("expected error for empty path")
	}
}
