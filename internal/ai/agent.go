package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"millbooks/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// Response is what the model returns: either a voucher proposal or a request
// for clarification when the input is too ambiguous.
type Response struct {
	IsClarificationRequest bool                 `json:"is_clarification_request" jsonschema_description:"True when the event is too ambiguous to propose a voucher"`
	Clarification          string               `json:"clarification" jsonschema_description:"The question to ask the user; empty when a proposal is given"`
	Proposal               core.VoucherProposal `json:"proposal" jsonschema_description:"The proposed voucher; ignored when asking for clarification"`
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// SuggestVoucher interprets a free-text description of a money movement and
// proposes a manual voucher against the account directory. Proposals are
// validated before being returned; they are never posted here.
func (a *Agent) SuggestVoucher(ctx context.Context, text string, accounts []core.Account) (*Response, error) {
	prompt := fmt.Sprintf(`You are the bookkeeper of a rice mill.
Your goal is to interpret a money movement described in natural language and propose a single-sided voucher entry.
Rules:
1. Use ONLY account ids from the directory below.
2. Voucher types: CP cash payment to a party, CR cash receipt from a party, BP bank payment, BR bank receipt, JV journal adjustment. Never propose PU or IV.
3. Amounts must be plain decimal strings (e.g. "15000.00").
4. Dates are YYYY-MM-DD; leave the date empty if the event does not mention one.
5. Provide a confidence score (0.0-1.0) and explain your reasoning.
6. If you cannot identify the party or the amount, ask for clarification instead of guessing.

Account directory:
%s

Event: %s`, formatAccounts(accounts), text)

	// Dynamically generate the JSON schema from the Go struct
	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "voucher_suggestion",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A proposed ledger voucher or a clarification request"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var response Response
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if response.IsClarificationRequest {
		return &response, nil
	}

	response.Proposal.Normalize()
	if err := response.Proposal.Validate(); err != nil {
		return nil, fmt.Errorf("proposal validation failed: %w", err)
	}
	return &response, nil
}

func formatAccounts(accounts []core.Account) string {
	var lines []string
	for _, a := range accounts {
		lines = append(lines, fmt.Sprintf("- %d: %s", a.ID, a.Name))
	}
	return strings.Join(lines, "\n")
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v Response
	return reflector.Reflect(v)
}
