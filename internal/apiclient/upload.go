package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/aTrapDeer/utworld/internal/model"
)

// Upload is one file to send. ContentType is guessed from the name, then
// the content, when empty.
type Upload struct {
	Name        string
	ContentType string
	Data        io.Reader
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (u Upload) writeTo(mw *multipart.Writer, field string) error {
	data, err := io.ReadAll(u.Data)
	if err != nil {
		return fmt.Errorf("reading %s: %w", u.Name, err)
	}
	ctype := u.ContentType
	if ctype == "" {
		ctype = mime.TypeByExtension(strings.ToLower(filepath.Ext(u.Name)))
	}
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if i := strings.IndexByte(ctype, ';'); i >= 0 && !strings.HasPrefix(ctype, "text/") {
		ctype = strings.TrimSpace(ctype[:i])
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(filepath.Base(u.Name))))
	h.Set("Content-Type", ctype)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

func multipartPayload(field string, files []Upload, fields map[string]string) (*payload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		if err := f.writeTo(mw, field); err != nil {
			return nil, err
		}
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return &payload{data: buf.Bytes(), contentType: mw.FormDataContentType()}, nil
}

// UploadAsset uploads one file. Empty projectID, altText and caption are
// left out of the form.
func (c *Client) UploadAsset(ctx context.Context, file Upload, projectID, altText, caption string) (*model.Asset, error) {
	p, err := multipartPayload("file", []Upload{file}, map[string]string{
		"project_id": projectID,
		"alt_text":   altText,
		"caption":    caption,
	})
	if err != nil {
		return nil, err
	}
	var out model.Asset
	if err := c.call(ctx, http.MethodPost, "/assets/upload", p, &out, "Upload failed", true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadMultipleAssets uploads a batch. The server skips files it fails to
// store, so the result may be shorter than files.
func (c *Client) UploadMultipleAssets(ctx context.Context, files []Upload, projectID string) ([]model.Asset, error) {
	p, err := multipartPayload("files", files, map[string]string{"project_id": projectID})
	if err != nil {
		return nil, err
	}
	var out []model.Asset
	if err := c.call(ctx, http.MethodPost, "/assets/upload-multiple", p, &out, "Upload failed", true); err != nil {
		return nil, err
	}
	return out, nil
}
