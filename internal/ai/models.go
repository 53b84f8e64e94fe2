package ai

// Model menu and rough pricing for the OpenRouter backend.
// Prices are illustrative and only feed cost estimates in logs.

type ModelInfo struct {
	Label         string  `json:"label"`
	ID            string  `json:"id"`
	ContextTokens int     `json:"context_tokens"`
	InputPerK     float64 `json:"input_per_k"`  // USD per 1K input tokens
	OutputPerK    float64 `json:"output_per_k"` // USD per 1K output tokens
}

// DefaultModel is preselected in the model menu.
const DefaultModel = "google/gemini-pro-1.5-flash"

var menu = []ModelInfo{
	{Label: "Gemini 1.5 Flash (Google)", ID: "google/gemini-pro-1.5-flash", ContextTokens: 1000000, InputPerK: 0.0002, OutputPerK: 0.0006},
	{Label: "GPT-4o (OpenAI)", ID: "openai/gpt-4o", ContextTokens: 128000, InputPerK: 0.005, OutputPerK: 0.015},
	{Label: "Claude 3 Sonnet (Anthropic)", ID: "anthropic/claude-3-sonnet", ContextTokens: 200000, InputPerK: 0.003, OutputPerK: 0.015},
	{Label: "Mistral 7B Instruct (MistralAI)", ID: "mistralai/mistral-7b-instruct", ContextTokens: 32000, InputPerK: 0.00006, OutputPerK: 0.00006},
	{Label: "Mixtral 8x7B Instruct (MistralAI)", ID: "mistralai/mixtral-8x7b-instruct", ContextTokens: 32000, InputPerK: 0.00024, OutputPerK: 0.00024},
	{Label: "Nous Hermes 2 Mixtral (NousResearch)", ID: "nousresearch/nous-hermes-2-mixtral-8x7b-dpo", ContextTokens: 32000, InputPerK: 0.0006, OutputPerK: 0.0006},
	{Label: "Llama 3 8B Instruct (Meta)", ID: "meta-llama/llama-3-8b-instruct", ContextTokens: 8000, InputPerK: 0.00006, OutputPerK: 0.00006},
	{Label: "Llama 3 70B Instruct (Meta)", ID: "meta-llama/llama-3-70b-instruct", ContextTokens: 8000, InputPerK: 0.00059, OutputPerK: 0.00079},
	{Label: "OpenRouter Auto (Default)", ID: "openrouter/auto", ContextTokens: 128000},
}

// Menu returns the fixed model menu in display order.
func Menu() []ModelInfo {
	out := make([]ModelInfo, len(menu))
	copy(out, menu)
	return out
}

// LookupModel finds a menu entry by model id.
func LookupModel(id string) (ModelInfo, bool) {
	for _, m := range menu {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// ResolveModel accepts a model id or a menu label and returns the id.
// An empty value resolves to DefaultModel.
func ResolveModel(v string) (string, error) {
	if v == "" {
		return DefaultModel, nil
	}
	for _, m := range menu {
		if m.ID == v || m.Label == v {
			return m.ID, nil
		}
	}
	return "", ErrUnknownModel
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}
