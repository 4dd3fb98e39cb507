package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"photostudio/internal/domain"
	"photostudio/internal/infra"
)

// Request carries everything the remote edit capability needs: the encoded
// source image and the natural-language instruction.
type Request struct {
	Image        domain.EncodedImage
	Instructions string
	RequestID    string
}

// Editor is the contract implemented by every edit backend. A single call,
// no retries, no streaming, no partial results.
type Editor interface {
	Edit(ctx context.Context, req Request) (domain.EncodedImage, error)
}

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client calls the Gemini generateContent endpoint with an inline source
// image and an instruction, and extracts the first inline image part of the
// response.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-image"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// Edit sends the source image plus instruction and returns the edited image.
// A completed call that yields no image part fails with ErrNoImageReturned;
// transport and API failures are wrapped in ErrProviderFailure with the
// service message preserved.
func (c *Client) Edit(ctx context.Context, req Request) (domain.EncodedImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.EncodedImage{}, err
	}

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{Text: BuildInstruction(req.Instructions)},
					{InlineData: &geminiInlineData{
						MimeType: req.Image.MimeType,
						Data:     req.Image.Data,
					}},
				},
			},
		},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model))
	if err := c.invokeGemini(ctx, path, payload, &response); err != nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			mimeType := part.InlineData.MimeType
			if mimeType == "" {
				mimeType = "image/png"
			}
			c.logger.Debug().
				Str("request_id", req.RequestID).
				Str("model", c.model).
				Str("mime", mimeType).
				Msg("editor: received edited image")
			return domain.EncodedImage{
				Data:        part.InlineData.Data,
				MimeType:    mimeType,
				DisplayName: editedName(req.Image.DisplayName, mimeType),
			}, nil
		}
	}

	c.logger.Warn().
		Str("request_id", req.RequestID).
		Str("model", c.model).
		Msg("editor: response contained no image part")
	return domain.EncodedImage{}, domain.ErrNoImageReturned
}

func (c *Client) invokeGemini(ctx context.Context, path string, payload any, out any) error {
	endpoint := c.baseURL + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func editedName(original, mimeType string) string {
	base := strings.TrimSpace(original)
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	if base == "" {
		base = "image"
	}
	ext := ".png"
	if idx := strings.LastIndex(mimeType, "/"); idx >= 0 && idx < len(mimeType)-1 {
		ext = "." + mimeType[idx+1:]
	}
	return base + "-edited" + ext
}

var _ Editor = (*Client)(nil)
