package extractor

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	resp  *genai.GenerateContentResponse
	err   error
	parts []genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, genai.Text(p))
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content}},
	}
}

func TestVertexExtractor_Extract(t *testing.T) {
	const filingURL = "https://www.sec.gov/Archives/edgar/data/1/acme-10k.htm"

	t.Run("returns concatenated text without fences", func(t *testing.T) {
		gen := &fakeGenerator{resp: textResponse("```text\nITEM 1A. ", "RISK FACTORS\n```")}
		e := &VertexExtractor{model: gen}

		text, err := e.Extract(context.Background(), filingURL, "1A")
		require.NoError(t, err)
		assert.Equal(t, "ITEM 1A. RISK FACTORS", text)

		require.Len(t, gen.parts, 2)
		file, ok := gen.parts[0].(genai.FileData)
		require.True(t, ok)
		assert.Equal(t, filingURL, file.FileURI)
		assert.Equal(t, "text/html", file.MIMEType)
		assert.Contains(t, string(gen.parts[1].(genai.Text)), `"1A"`)
		assert.Contains(t, string(gen.parts[1].(genai.Text)), "10-K")
	})

	t.Run("empty candidates yield empty text", func(t *testing.T) {
		e := &VertexExtractor{model: &fakeGenerator{resp: &genai.GenerateContentResponse{}}}
		text, err := e.Extract(context.Background(), filingURL, "1A")
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("model error is wrapped", func(t *testing.T) {
		boom := errors.New("quota exhausted")
		e := &VertexExtractor{model: &fakeGenerator{err: boom}}
		_, err := e.Extract(context.Background(), filingURL, "1A")
		assert.ErrorIs(t, err, boom)
	})
}

func TestNewVertexExtractor_RequiresModel(t *testing.T) {
	_, err := NewVertexExtractor(nil)
	assert.Error(t, err)
}

func TestMimeTypeFor(t *testing.T) {
	assert.Equal(t, "text/html", mimeTypeFor("https://www.sec.gov/a.htm"))
	assert.Equal(t, "text/html", mimeTypeFor("https://www.sec.gov/a.html?x=1"))
	assert.Equal(t, "text/plain", mimeTypeFor("https://www.sec.gov/a.txt"))
	assert.Equal(t, "text/html", mimeTypeFor("https://www.sec.gov/a"))
}
