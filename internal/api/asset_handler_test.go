package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
)

type fakeStorage struct {
	uploaded map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploaded: map[string][]byte{}}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, _ := io.ReadAll(reader)
	s.uploaded[objectName] = b
	return &minio.UploadInfo{}, nil
}

func (s *fakeStorage) PublicURL(objectKey string) string {
	return "https://media.example.com/portify/" + objectKey
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func uploadContext(t *testing.T, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/assets/upload", body)
	c.Request.Header.Set("Content-Type", contentType)
	return w, c
}

func TestUploadAssetStoresUnderUserPrefix(t *testing.T) {
	storage := newFakeStorage()
	h := NewAssetHandler(storage, slog.Default(), "", 5*1024*1024, nil, 0)

	body, contentType := multipartUpload(t, "avatar.png", "image/png", []byte("\x89PNG\r\n\x1a\n"))
	w, c := uploadContext(t, body, contentType)
	c.Set("userID", "user-9")

	h.UploadAsset(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		ObjectKey string `json:"objectKey"`
		URL       string `json:"url"`
	}
	decodeBody(t, w, &resp)
	if resp.ObjectKey == "" || resp.URL == "" {
		t.Fatalf("missing fields in response: %+v", resp)
	}
	if got := resp.ObjectKey[:len("media/user-9/")]; got != "media/user-9/" {
		t.Errorf("object key must be namespaced by user, got %q", resp.ObjectKey)
	}
	if _, stored := storage.uploaded[resp.ObjectKey]; !stored {
		t.Errorf("upload did not reach storage: %v", storage.uploaded)
	}
}

func TestUploadAssetRejectsNonImage(t *testing.T) {
	h := NewAssetHandler(newFakeStorage(), slog.Default(), "", 5*1024*1024, nil, 0)

	body, contentType := multipartUpload(t, "script.sh", "application/x-sh", []byte("#!/bin/sh"))
	w, c := uploadContext(t, body, contentType)
	c.Set("userID", "user-9")

	h.UploadAsset(c)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestUploadAssetRejectsOversize(t *testing.T) {
	h := NewAssetHandler(newFakeStorage(), slog.Default(), "", 16, nil, 0)

	body, contentType := multipartUpload(t, "big.png", "image/png", bytes.Repeat([]byte("x"), 64))
	w, c := uploadContext(t, body, contentType)
	c.Set("userID", "user-9")

	h.UploadAsset(c)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestUploadAssetRequiresAuth(t *testing.T) {
	h := NewAssetHandler(newFakeStorage(), slog.Default(), "", 5*1024*1024, nil, 0)

	body, contentType := multipartUpload(t, "avatar.png", "image/png", []byte("\x89PNG"))
	w, c := uploadContext(t, body, contentType)

	h.UploadAsset(c)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 got %d", w.Code)
	}
}
