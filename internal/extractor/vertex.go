package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/secfilingflow/internal/filing"
	"github.com/Lllllllleong/secfilingflow/internal/gcp"
)

// contentGenerator is satisfied by *genai.GenerativeModel.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// VertexExtractor asks a Gemini model on Vertex AI to return one item of a filing.
type VertexExtractor struct {
	model contentGenerator
}

// NewVertexExtractor uses the section extractor model of client.
func NewVertexExtractor(client *gcp.VertexClient) (*VertexExtractor, error) {
	if client == nil || client.SectionExtractorModel == nil {
		return nil, fmt.Errorf("vertex client with a section extractor model must be provided")
	}
	return &VertexExtractor{model: client.SectionExtractorModel}, nil
}

// Extract sends the filing as file data together with the item prompt.
func (e *VertexExtractor) Extract(ctx context.Context, reference, sectionID string) (string, error) {
	kind := filing.DetectKind(reference)
	prompt := genai.Text(fmt.Sprintf(gcp.SectionExtractorUserPrompt, kind, sectionID))
	filePart := genai.FileData{
		MIMEType: mimeTypeFor(reference),
		FileURI:  reference,
	}

	resp, err := e.model.GenerateContent(ctx, filePart, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate section from gemini: %w", err)
	}
	return extractText(resp, sectionID), nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse, sectionID string) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var content strings.Builder
	var textPartsFound int
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			content.WriteString(string(txt))
			textPartsFound++
		}
	}
	if textPartsFound > 1 {
		slog.Debug("Gemini response contained multiple text parts; concatenated.", "sectionId", sectionID, "parts", textPartsFound)
	}

	s := strings.TrimSpace(content.String())
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func mimeTypeFor(reference string) string {
	ext := strings.ToLower(path.Ext(strings.SplitN(reference, "?", 2)[0]))
	switch ext {
	case ".htm", ".html":
		return "text/html"
	case ".txt":
		return "text/plain"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "text/html"
}
