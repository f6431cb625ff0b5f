package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// BoundingBox locates a detection within the source image.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Detection is one piece of text the engine read from an image.
type Detection struct {
	Box        BoundingBox `json:"box"`
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
}

// Engine reads text detections from an image. Implementations are
// injected into the ingestion service so tests can substitute doubles.
type Engine interface {
	Recognize(ctx context.Context, image []byte) ([]Detection, error)
}

// Best returns the highest-confidence detection, or ok=false when the
// list is empty.
func Best(detections []Detection) (Detection, bool) {
	if len(detections) == 0 {
		return Detection{}, false
	}
	best := detections[0]
	for _, d := range detections[1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	return best, true
}

// HTTPClient calls an external recognition endpoint that accepts a JPEG
// body and answers with a JSON detection list.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type recognizeResponse struct {
	Detections []Detection `json:"detections"`
}

func (c *HTTPClient) Recognize(ctx context.Context, image []byte) ([]Detection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("build recognize request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call recognize endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("recognize endpoint returned %d: %s", resp.StatusCode, body)
	}

	var parsed recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode recognize response: %w", err)
	}
	return parsed.Detections, nil
}
