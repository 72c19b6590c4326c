package credential

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"dwn-gateway/contracts/manifest"
)

// Presentation-definition evaluation. A token satisfies an input descriptor
// when every constrained field resolves to a value accepted by its filter.
// Paths use dotted JSON-path form ("$.vc.type"); bracket syntax is not
// supported.

// SelectCredentials returns the subset of tokens that satisfy at least one
// input descriptor of the definition, in input order. A nil definition
// selects everything. Pure function of its inputs.
func SelectCredentials(tokens []string, def *manifest.PresentationDefinition) []string {
	if def == nil || len(def.InputDescriptors) == 0 {
		return tokens
	}

	var selected []string
	for _, token := range tokens {
		payload, err := tokenPayload(token)
		if err != nil {
			continue
		}
		for _, descriptor := range def.InputDescriptors {
			if satisfiesDescriptor(payload, descriptor) {
				selected = append(selected, token)
				break
			}
		}
	}
	return selected
}

// SatisfiesDefinition reports whether every input descriptor of the
// definition is satisfied by at least one of the tokens. A nil definition is
// trivially satisfied. The error names the first unsatisfied descriptor.
func SatisfiesDefinition(tokens []string, def *manifest.PresentationDefinition) error {
	if def == nil {
		return nil
	}

	payloads := make([]map[string]any, 0, len(tokens))
	for _, token := range tokens {
		payload, err := tokenPayload(token)
		if err != nil {
			continue
		}
		payloads = append(payloads, payload)
	}

	for _, descriptor := range def.InputDescriptors {
		satisfied := false
		for _, payload := range payloads {
			if satisfiesDescriptor(payload, descriptor) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return fmt.Errorf("presentation does not satisfy input descriptor %q", descriptor.ID)
		}
	}
	return nil
}

func satisfiesDescriptor(payload map[string]any, descriptor manifest.InputDescriptor) bool {
	for _, field := range descriptor.Constraints.Fields {
		if !satisfiesField(payload, field) {
			return false
		}
	}
	return true
}

// satisfiesField accepts the field when any of its alternative paths resolves
// to a value matching the filter.
func satisfiesField(payload map[string]any, field manifest.Field) bool {
	for _, path := range field.Path {
		value, ok := resolvePath(payload, path)
		if !ok {
			continue
		}
		if field.Filter == nil || matchesFilter(value, field.Filter) {
			return true
		}
	}
	return false
}

func resolvePath(payload map[string]any, path string) (any, bool) {
	path = strings.TrimPrefix(path, "$.")
	current := any(payload)
	for _, segment := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// matchesFilter checks a resolved value against a filter. Array values match
// when any element matches, which is how type arrays are constrained.
func matchesFilter(value any, filter *manifest.Filter) bool {
	if list, ok := value.([]any); ok {
		for _, item := range list {
			if matchesScalar(item, filter) {
				return true
			}
		}
		return false
	}
	return matchesScalar(value, filter)
}

func matchesScalar(value any, filter *manifest.Filter) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	if filter.Const != "" {
		return s == filter.Const
	}
	if filter.Pattern != "" {
		matched, err := regexp.MatchString(filter.Pattern, s)
		return err == nil && matched
	}
	return true
}

// tokenPayload decodes a credential token's claim set as a generic JSON
// object so path constraints can be evaluated against it.
func tokenPayload(token string) (map[string]any, error) {
	parsed, err := Parse(token)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(parsed.Claims)
	if err != nil {
		return nil, fmt.Errorf("re-encoding credential claims: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding credential claims: %w", err)
	}
	return payload, nil
}
