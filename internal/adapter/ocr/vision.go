// Package ocr reads text from images through Google Cloud Vision.
package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bloomforge/internal/config"
	"bloomforge/internal/domain"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const providerVision = "gcp_vision"

// annotator is the slice of the Vision client used here.
type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)
}

type clientAnnotator struct {
	client *vision.ImageAnnotatorClient
}

func (c clientAnnotator) BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
	return c.client.BatchAnnotateImages(ctx, req)
}

// VisionOCR implements domain.OCRService with DOCUMENT_TEXT_DETECTION.
type VisionOCR struct {
	annotator annotator
	closer    func() error
	timeout   time.Duration
	logger    *zap.Logger
}

// New returns nil when OCR is disabled.
func New(ctx context.Context, cfg config.OCRConfig, logger *zap.Logger) (*VisionOCR, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case providerVision:
		return NewVision(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown ocr provider %q", cfg.Provider)
	}
}

// NewVision dials the Vision API using the configured credentials file, or
// application default credentials when none is set.
func NewVision(ctx context.Context, cfg config.OCRConfig, logger *zap.Logger) (*VisionOCR, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	o := newVisionOCR(clientAnnotator{client: client}, cfg.Timeout, logger)
	o.closer = client.Close
	return o, nil
}

func newVisionOCR(a annotator, timeout time.Duration, logger *zap.Logger) *VisionOCR {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisionOCR{annotator: a, timeout: timeout, logger: logger}
}

// RecognizeText returns the full text annotation of the image, or "" when
// the image contains no text.
func (v *VisionOCR) RecognizeText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req := &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{{
		Image:    &visionpb.Image{Content: image},
		Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
	}}}

	start := time.Now()
	resp, err := v.annotator.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	var text string
	if fta := r0.FullTextAnnotation; fta != nil {
		text = fta.Text
	} else if len(r0.TextAnnotations) > 0 {
		text = r0.TextAnnotations[0].Description
	}
	text = strings.TrimSpace(text)

	v.logger.Debug("OCR completed",
		zap.String("mime_type", mimeType),
		zap.Int("text_length", len(text)),
		zap.Duration("duration", time.Since(start)))
	return text, nil
}

func (v *VisionOCR) Close() error {
	if v == nil || v.closer == nil {
		return nil
	}
	return v.closer()
}

var _ domain.OCRService = (*VisionOCR)(nil)
