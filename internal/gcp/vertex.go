package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// --- Section Extractor Model Prompts ---
const SectionExtractorSystemPrompt = "You are a precise SEC filing parser. Your task is to locate one numbered item of a regulatory filing and return its text verbatim. You never summarize, paraphrase, or substitute a different item."
const SectionExtractorUserPrompt = `You will be provided with an SEC %s filing.

Return the complete plain text of the item identified by the code %q, starting with its header line (for example "Item 1A. Risk Factors") and ending right before the next item's header.

Rules:
1.  Preserve the original wording, numbers, and paragraph order. Do not summarize.
2.  Render tables as plain text rows separated by line breaks.
3.  If the filing does not contain this item, return an empty response. Never return a different item instead.
4.  Return ONLY the item text, without preambles or markdown fences.`

// DefaultSectionExtractorModel is used when no model name is configured.
const DefaultSectionExtractorModel = "gemini-1.5-pro"

// VertexClient holds the pre-configured generative models used by the scraper.
type VertexClient struct {
	SectionExtractorModel *genai.GenerativeModel
	baseClient            *genai.Client
}

// NewVertexClient creates a new client holding the section extractor model.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = DefaultSectionExtractorModel
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	extractorModel := baseClient.GenerativeModel(modelName)
	extractorModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SectionExtractorSystemPrompt)},
	}
	extractorModel.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "text/plain",
		Temperature:      genai.Ptr[float32](0.0), // verbatim extraction, no creativity
	}
	extractorModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &VertexClient{
		SectionExtractorModel: extractorModel,
		baseClient:            baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
