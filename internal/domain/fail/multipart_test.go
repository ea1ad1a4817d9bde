package fail

import (
	"bytes"
	"mime/multipart"
	"testing"
)

// newMultipart writes an "image" form file into body and returns the content type
func newMultipart(t *testing.T, body *bytes.Buffer, data []byte) string {
	t.Helper()
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", "fail.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return w.FormDataContentType()
}
