package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/Veraticus/clash-cost/internal/common"
)

// geminiCaller speaks the native schema-constrained generation protocol.
type geminiCaller struct {
	client    *genai.Client
	clientErr error
	apiKey    string
	model     string
	cfg       Config
	once      sync.Once
}

func newGeminiCaller(cfg Config) *geminiCaller {
	return &geminiCaller{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		cfg:    cfg,
	}
}

// connect builds the SDK client on first use so a missing key surfaces as a
// configuration error at call time.
func (g *geminiCaller) connect(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		clientCfg := &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		}
		if g.cfg.Timeout > 0 {
			timeout := g.cfg.Timeout
			clientCfg.HTTPOptions.Timeout = &timeout
		}
		g.client, g.clientErr = genai.NewClient(ctx, clientCfg)
	})
	if g.clientErr != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", g.clientErr)
	}
	return g.client, nil
}

// Generate issues one generate-content call.
func (g *geminiCaller) Generate(ctx context.Context, req Request) (Response, error) {
	if g.apiKey == "" {
		return Response{}, &common.ConfigurationError{Setting: "llm.api_key", Err: common.ErrMissingCredential}
	}

	client, err := g.connect(ctx)
	if err != nil {
		return Response{}, err
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), buildGenerateConfig(req))
	if err != nil {
		return Response{}, classifyNativeError(ctx, err)
	}

	text, err := nativeText(resp)
	if err != nil {
		return Response{}, err
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return Response{Text: text, TokensUsed: tokens, Status: http.StatusOK}, nil
}

func buildGenerateConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.JSON || req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
	}
	if req.Schema != nil {
		cfg.ResponseSchema = toNativeSchema(req.Schema)
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxOutputTokens)
	}
	for _, category := range req.Safety {
		native, ok := nativeHarmCategories[category]
		if !ok {
			continue
		}
		cfg.SafetySettings = append(cfg.SafetySettings, &genai.SafetySetting{
			Category:  native,
			Threshold: genai.HarmBlockThresholdBlockOnlyHigh,
		})
	}
	return cfg
}

var nativeHarmCategories = map[HarmCategory]genai.HarmCategory{
	HarmDangerousContent: genai.HarmCategoryDangerousContent,
	HarmHarassment:       genai.HarmCategoryHarassment,
	HarmHateSpeech:       genai.HarmCategoryHateSpeech,
	HarmSexuallyExplicit: genai.HarmCategorySexuallyExplicit,
}

var nativeSchemaTypes = map[SchemaType]genai.Type{
	TypeObject: genai.TypeObject,
	TypeArray:  genai.TypeArray,
	TypeString: genai.TypeString,
	TypeNumber: genai.TypeNumber,
}

func toNativeSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        nativeSchemaTypes[s.Type],
		Description: s.Description,
		Items:       toNativeSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toNativeSchema(prop)
		}
	}
	return out
}

// nativeText extracts the response text. A candidate that stopped for a
// reason other than STOP still yields its first part when that has text.
func nativeText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", common.ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	var b strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil {
				b.WriteString(part.Text)
			}
		}
	}
	if text := b.String(); text != "" {
		return text, nil
	}

	if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonStop {
		if candidate.Content != nil && len(candidate.Content.Parts) > 0 && candidate.Content.Parts[0] != nil && candidate.Content.Parts[0].Text != "" {
			return candidate.Content.Parts[0].Text, nil
		}
		return "", fmt.Errorf("%w: %s", common.ErrGenerationHalted, candidate.FinishReason)
	}

	return "", common.ErrEmptyResponse
}

func classifyNativeError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("request canceled: %w", ctxErr)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &common.TransportError{Err: err, Status: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &common.TransportError{Err: err, Status: apiErrPtr.Code, Body: apiErrPtr.Message}
	}

	return &common.TransportError{Err: err}
}
