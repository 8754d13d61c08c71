package audio

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"leads_dashboard_backend/platform/config"
	"leads_dashboard_backend/platform/logger"

	"google.golang.org/genai"
)

// ScriptGenerator renders the voice-note script for a lead, optionally
// smoothing the template output with a single LLM rewrite.
type ScriptGenerator struct {
	library CopyLibrary
	model   string
	log     *logger.Logger

	clientMu sync.Mutex
	client   *genai.Client
	apiKey   string
}

// NewScriptGenerator builds the generator. When no Gemini key is
// configured, scripts come straight from the templates.
func NewScriptGenerator(library CopyLibrary, cfg config.ScriptAIConfig, log *logger.Logger) *ScriptGenerator {
	return &ScriptGenerator{
		library: library,
		model:   cfg.GetGeminiModel(),
		apiKey:  cfg.GetGeminiAPIKey(),
		log:     log,
	}
}

// Generate returns the final script and its type label. Any failure in
// the rewrite step falls back to the plain template; script generation
// must never block the pipeline on an LLM.
func (g *ScriptGenerator) Generate(ctx context.Context, input ScriptInput) (script, scriptType string) {
	script, scriptType = g.library.BuildScript(input)

	if g.apiKey == "" {
		return script, scriptType
	}

	polished, err := g.polish(ctx, script)
	if err != nil {
		g.log.ExternalAPIError("gemini", err)
		return script, scriptType
	}
	if polished != "" {
		script = polished
	}
	return script, scriptType
}

// polish runs one text-generation call that smooths the template into
// natural spoken Portuguese without changing the offer or the CTA.
func (g *ScriptGenerator) polish(ctx context.Context, script string) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Reescreva o roteiro de áudio abaixo para soar como fala natural e fluida em português brasileiro.

Regras:
- Mantenha todas as informações, a oferta e a chamada para ação exatamente como estão.
- Não adicione saudações, despedidas ou comentários novos.
- Não use marcações, emojis ou formatação; apenas texto corrido para ser falado.
- Mantenha o mesmo tamanho aproximado.

Roteiro:
%s`, script)

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return strings.TrimSpace(result.Text()), nil
}

func (g *ScriptGenerator) getClient(ctx context.Context) (*genai.Client, error) {
	g.clientMu.Lock()
	defer g.clientMu.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.client = client
	return client, nil
}
