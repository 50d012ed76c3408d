package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/gabriel-vasile/mimetype"
)

const (
	DefaultImageSize    = "1536x1024"
	DefaultImageQuality = "medium"
	DefaultOutputFormat = "png"

	FidelityHigh = "high"
	FidelityLow  = "low"
)

var ErrNoImageReturned = errors.New("no image returned")

type ImageEditRequest struct {
	Model        string
	Prompt       string
	Image        []byte
	Size         string
	Quality      string
	OutputFormat string
	// InputFidelity is dropped unless the model supports it.
	InputFidelity string
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// EditImage posts the source image and prompt to /v1/images/edits and
// returns the decoded output bytes.
func (c *Client) EditImage(ctx context.Context, req ImageEditRequest) ([]byte, error) {
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("image edit: empty input image")
	}
	body, contentType, err := buildEditForm(req)
	if err != nil {
		return nil, err
	}

	var out imageResponse
	if err := c.post(ctx, "/v1/images/edits", contentType, body, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || out.Data[0].B64JSON == "" {
		return nil, ErrNoImageReturned
	}
	img, err := base64.StdEncoding.DecodeString(out.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func buildEditForm(req ImageEditRequest) ([]byte, string, error) {
	caps := CapabilitiesFor(req.Model)

	size := req.Size
	if size == "" {
		size = DefaultImageSize
	}
	quality := req.Quality
	if quality == "" {
		quality = DefaultImageQuality
	}
	format := req.OutputFormat
	if format == "" {
		format = DefaultOutputFormat
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"model", req.Model},
		{"prompt", req.Prompt},
		{"size", size},
		{"n", "1"},
	}
	if caps.Quality {
		fields = append(fields, [2]string{"quality", quality})
	}
	if caps.OutputFormat {
		fields = append(fields, [2]string{"output_format", format})
	}
	if caps.InputFidelity && req.InputFidelity != "" {
		fields = append(fields, [2]string{"input_fidelity", req.InputFidelity})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f[0], err)
		}
	}

	mt := mimetype.Detect(req.Image)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="input%s"`, mt.Extension()))
	h.Set("Content-Type", mt.String())
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(req.Image); err != nil {
		return nil, "", fmt.Errorf("failed to write image part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
