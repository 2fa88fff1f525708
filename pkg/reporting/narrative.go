package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/erc-insight/platform/pkg/common/config"
	"github.com/erc-insight/platform/pkg/common/logger"
	"github.com/erc-insight/platform/pkg/common/models"
)

const narrativeSystemPrompt = `Eres un asistente clínico que redacta informes ` +
	`de seguimiento de enfermedad renal crónica. A partir del JSON adjunto, ` +
	`redacta un informe narrativo en español, dirigido al médico tratante, sin ` +
	`inventar datos que no estén en el JSON.`

// NarrativeClient talks to an OpenAI-compatible chat completions endpoint.
// Without an API key it returns a deterministic mock narrative so the rest
// of the pipeline can run in development.
type NarrativeClient struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
}

func NewNarrativeClient(cfg *config.Config) *NarrativeClient {
	return &NarrativeClient{
		apiKey:     cfg.LLMAPIKey,
		baseURL:    cfg.LLMBaseURL,
		modelName:  cfg.LLMModelName,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Generate returns the narrative text and the model that produced it.
func (c *NarrativeClient) Generate(ctx context.Context, payload models.ClinicalPayload) (string, string, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", "", fmt.Errorf("encoding payload: %w", err)
	}

	if c.apiKey == "" {
		logger.Log.Debug("No LLM API key configured, returning mock narrative")
		return c.mockNarrative(payload), "mock", nil
	}

	request := map[string]interface{}{
		"model": c.modelName,
		"messages": []map[string]string{
			{"role": "system", "content": narrativeSystemPrompt},
			{"role": "user", "content": string(payloadJSON)},
		},
		"temperature": 0.3,
	}

	requestBytes, _ := json.Marshal(request)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(requestBytes))
	if err != nil {
		return "", "", fmt.Errorf("building narrative request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("calling narrative service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("reading narrative response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("narrative service returned %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", "", fmt.Errorf("decoding narrative response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", "", fmt.Errorf("narrative service returned no choices")
	}

	return result.Choices[0].Message.Content, c.modelName, nil
}

// mockNarrative summarizes the payload deterministically.
func (c *NarrativeClient) mockNarrative(payload models.ClinicalPayload) string {
	return fmt.Sprintf(
		"Informe de seguimiento de ERC. TFGe: %.2f ml/min (%s). Riesgo cardiovascular: %s (%s). "+
			"Cumplimiento de metas terapéuticas: %.1f%% (%s). Próxima cita: %s.",
		payload.DiagnosticEvaluation.EGFRValue,
		payload.DiagnosticEvaluation.CKDStage,
		payload.DiagnosticEvaluation.CardiovascularRisk,
		payload.DiagnosticEvaluation.RiskJustification,
		payload.GoalCompliance.AdherenceScore,
		payload.GoalCompliance.ComplianceStatus,
		payload.FollowUpPlan.NextVisitDate,
	)
}
