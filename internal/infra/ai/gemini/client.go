package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pashudrishti/pashu-sahayak/internal/domain/advisor"
	"github.com/pashudrishti/pashu-sahayak/internal/domain/analysis"
	"github.com/pashudrishti/pashu-sahayak/internal/infra/ai/prompt"
)

const defaultModel = "gemini-1.5-flash"

// Client implements the report generator and the valuation engine on top of
// the Gemini API. Every call carries its own bounded timeout; generative
// calls can stall and the orchestrator must see a failure, not a hang.
type Client struct {
	apiKey  string
	model   string
	timeout time.Duration
}

func NewClient(apiKey, model string, timeout time.Duration) *Client {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{apiKey: apiKey, model: model, timeout: timeout}
}

// GenerateReport sends the image plus context to the model and parses the
// tagged-variant response. Transport failures and unparsable bodies surface
// as ErrUpstreamUnavailable; an explicit refusal comes back as
// *analysis.RejectionError from the parser.
func (c *Client) GenerateReport(ctx context.Context, req analysis.GenerateRequest) (*analysis.Report, error) {
	raw, err := c.generate(ctx, []genai.Part{
		genai.Text(prompt.Report(req.Location, req.Language, req.BreedHint)),
		&genai.Blob{MIMEType: req.MimeType, Data: req.ImageBytes},
	})
	if err != nil {
		return nil, err
	}
	return analysis.ParseReport(raw)
}

// Valuate asks the model for a market estimate and decodes it with the same
// defensive object extraction the report path uses.
func (c *Client) Valuate(ctx context.Context, req advisor.ValuationRequest) (*advisor.Valuation, error) {
	raw, err := c.generate(ctx, []genai.Part{genai.Text(prompt.Valuation(req))})
	if err != nil {
		return nil, err
	}
	return parseValuation(raw)
}

func (c *Client) generate(ctx context.Context, parts []genai.Part) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("gemini api key is empty: %w", analysis.ErrUpstreamUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return "", fmt.Errorf("gemini client: %v: %w", err, analysis.ErrUpstreamUnavailable)
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %v: %w", err, analysis.ErrUpstreamUnavailable)
	}
	txt := firstText(resp)
	if txt == "" {
		return "", fmt.Errorf("gemini returned no text: %w", analysis.ErrUpstreamUnavailable)
	}
	return txt, nil
}

func parseValuation(raw string) (*advisor.Valuation, error) {
	obj, err := analysis.ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	var v advisor.Valuation
	if err := json.Unmarshal([]byte(obj), &v); err != nil {
		return nil, fmt.Errorf("malformed valuation payload: %v: %w", err, analysis.ErrUpstreamUnavailable)
	}
	if v.EstimatedMarketValueINR == "" {
		return nil, fmt.Errorf("valuation payload missing estimate: %w", analysis.ErrUpstreamUnavailable)
	}
	return &v, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
