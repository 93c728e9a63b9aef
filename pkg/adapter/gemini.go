package adapter

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// GeminiClient implements Reasoner and Analyzer on the Gemini API.
type GeminiClient struct {
	client          *genai.Client
	generativeModel string
	analysisModel   string
}

type GeminiOption func(*GeminiClient)

func WithGenerativeModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.generativeModel = model
	}
}

func WithAnalysisModel(model string) GeminiOption {
	return func(g *GeminiClient) {
		g.analysisModel = model
	}
}

func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client")
	}

	g := &GeminiClient{
		client:          client,
		generativeModel: "gemini-2.5-flash",
		analysisModel:   "gemini-2.5-flash",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) Reason(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.generativeModel, contents, config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content")
	}

	return firstText(resp)
}

// AnalyzeMedia extracts searchable text from a media blob using structured
// output so the result parses deterministically.
func (g *GeminiClient) AnalyzeMedia(ctx context.Context, mimeType string, data []byte) (*Analysis, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"description": {
					Type:        genai.TypeString,
					Description: "One-paragraph factual description of what is visible or audible. Empty if nothing can be described.",
				},
				"transcription": {
					Type:        genai.TypeString,
					Description: "Verbatim transcript of any speech. Empty if there is no speech.",
				},
				"labels": {
					Type:        genai.TypeArray,
					Description: "Short labels for clearly recognizable objects, entities or activities",
					Items:       &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"description", "transcription", "labels"},
		},
	}

	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{Text: "Analyze this capture. Describe only what is clearly present; do not guess the identity of unclear objects."},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.analysisModel, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to analyze media")
	}

	raw, err := firstText(resp)
	if err != nil {
		return nil, err
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal analysis JSON", goerr.V("json", raw))
	}

	return &analysis, nil
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", goerr.New("invalid response structure from gemini")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text, nil
		}
	}

	return "", goerr.New("no text part in gemini response")
}
