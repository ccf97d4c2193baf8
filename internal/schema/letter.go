// Package schema checks that a normalized report carries the fields the
// letter generator needs before it is handed over.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
)

const letterSchemaURL = "letter.json"

// requiredText is a string the generator can print: present, non-blank and
// not the NOT_FOUND marker.
func requiredText() map[string]any {
	return map[string]any{
		"type":      "string",
		"minLength": 1,
		"pattern":   `\S`,
		"not":       map[string]any{"const": constants.NotFound},
	}
}

// LetterSchema is the minimum payload the letter generator accepts.
func LetterSchema() map[string]any {
	return map[string]any{
		"$schema":  "http://json-schema.org/draft-07/schema#",
		"type":     "object",
		"required": []string{"personal_info", "obligations", "totals"},
		"properties": map[string]any{
			"personal_info": map[string]any{
				"type":     "object",
				"required": []string{"full_name", "iin", "address"},
				"properties": map[string]any{
					"full_name": requiredText(),
					"iin":       map[string]any{"type": "string", "pattern": `^\d{12}$`},
					"address":   requiredText(),
				},
			},
			"obligations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"creditor", "balance_kzt", "contract_number", "debt_origin_date"},
					"properties": map[string]any{
						"creditor":         requiredText(),
						"contract_number":  requiredText(),
						"debt_origin_date": requiredText(),
						"balance_kzt":      map[string]any{"type": "number", "minimum": 0},
					},
				},
			},
			"totals": map[string]any{
				"type":     "object",
				"required": []string{"debt"},
				"properties": map[string]any{
					"debt": map[string]any{"type": "number", "minimum": 0},
				},
			},
		},
	}
}

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(LetterSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(letterSchemaURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := compiler.Compile(letterSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
})

// PayloadError lists every place the report falls short of the letter schema.
type PayloadError struct {
	Problems []string
}

func (e *PayloadError) Error() string {
	return "letter payload incomplete: " + strings.Join(e.Problems, "; ")
}

// ValidateLetterPayload returns a *PayloadError when required letter fields
// are missing or still hold sentinels.
func ValidateLetterPayload(r *entity.NormalizedReport) error {
	if r == nil {
		return &PayloadError{Problems: []string{"report is nil"}}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return ValidateJSON(data)
}

// ValidateJSON checks an already encoded payload.
func ValidateJSON(data []byte) error {
	s, err := compiled()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := s.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &PayloadError{Problems: leafProblems(ve)}
		}
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// leafProblems flattens the cause tree into "location: message" lines.
func leafProblems(ve *jsonschema.ValidationError) []string {
	seen := map[string]struct{}{}
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			p := loc + ": " + e.Message
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				out = append(out, p)
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.Strings(out)
	return out
}
