package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// Classification is the label the classifier chose plus the full payload it
// returned, kept verbatim as categoryDetail on the report.
type Classification struct {
	Label  string
	Detail map[string]interface{}
}

// ImageClassifier labels a report photo. Failures are non-fatal to ingestion.
type ImageClassifier interface {
	Classify(ctx context.Context, data []byte, filename, contentType string) (*Classification, error)
}

// HTTPClassifier calls the external classification service's /scan endpoint
// with the image as a multipart form. The service answers
// {"success": true, "result": {...}} or {"success": false, "error": "..."}.
type HTTPClassifier struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClassifier(baseURL string) *HTTPClassifier {
	return &HTTPClassifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type scanResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, data []byte, filename, contentType string) (*Classification, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write image part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scan", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var envelope scanResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("malformed classifier response: %w", err)
	}
	if !envelope.Success {
		if envelope.Error != "" {
			return nil, fmt.Errorf("classification rejected: %s", envelope.Error)
		}
		return nil, fmt.Errorf("classification rejected")
	}

	detail, err := decodeResult(envelope.Result)
	if err != nil {
		return nil, err
	}

	label, _ := detail["label"].(string)
	if label == "" {
		return nil, fmt.Errorf("classifier result carries no label")
	}

	return &Classification{Label: label, Detail: detail}, nil
}

// decodeResult tolerates the result arriving either as a JSON object or as a
// JSON-encoded string containing an object, which the upstream service has
// been seen to do.
func decodeResult(raw json.RawMessage) (map[string]interface{}, error) {
	var detail map[string]interface{}
	if err := json.Unmarshal(raw, &detail); err == nil {
		return detail, nil
	}

	var nested string
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("malformed classifier result")
	}
	if err := json.Unmarshal([]byte(nested), &detail); err != nil {
		return nil, fmt.Errorf("malformed classifier result: %w", err)
	}
	return detail, nil
}
