package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/rl1809/parts-inventory/internal/core/domain"
)

type changeFields struct {
	Manufacturer string `mapstructure:"manufacturer"`
	Part         string `mapstructure:"part"`
	Model        string `mapstructure:"model"`
	Quantity     any    `mapstructure:"quantity"`
	Action       string `mapstructure:"action"`
}

// ExtractChanges decodes a {"changes": [...]} payload into a batch, keeping order.
// Missing quantity defaults to 1 and missing action to add. Only the envelope is
// checked here: an element that cannot be decoded stays in the batch with
// Invalid set, for the reconciler to report.
func ExtractChanges(raw string) (domain.ChangeBatch, error) {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, &ResponseParseError{Raw: raw, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ResponseParseError{Raw: raw, Err: errors.New("unexpected data after JSON value")}
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, &SchemaViolationError{Raw: raw, Reason: "top-level value is not an object"}
	}
	field, ok := obj["changes"]
	if !ok {
		return nil, &SchemaViolationError{Raw: raw, Reason: `missing "changes" field`}
	}
	items, ok := field.([]any)
	if !ok {
		return nil, &SchemaViolationError{Raw: raw, Reason: `"changes" is not an array`}
	}

	batch := make(domain.ChangeBatch, 0, len(items))
	for _, item := range items {
		batch = append(batch, decodeChange(item))
	}
	return batch, nil
}

func decodeChange(item any) domain.ChangeRequest {
	if _, ok := item.(map[string]any); !ok {
		return domain.ChangeRequest{Invalid: fmt.Sprintf("expected object, got %s", jsonKind(item))}
	}

	var fields changeFields
	var problems []string

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           &fields,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return domain.ChangeRequest{Invalid: err.Error()}
	}
	if err := decoder.Decode(item); err != nil {
		var merr *mapstructure.Error
		if errors.As(err, &merr) {
			problems = append(problems, merr.Errors...)
		} else {
			problems = append(problems, err.Error())
		}
	}

	quantity, err := parseQuantity(fields.Quantity)
	if err != nil {
		problems = append(problems, err.Error())
	}
	action, _ := domain.ParseAction(fields.Action)

	return domain.ChangeRequest{
		Manufacturer: fields.Manufacturer,
		Part:         fields.Part,
		Model:        fields.Model,
		Quantity:     quantity,
		Action:       action,
		Invalid:      strings.Join(problems, "; "),
	}
}

// parseQuantity accepts whole numbers that fit the quantity column, as JSON
// numbers or numeric strings. 2.0 is accepted as 2; 2.7 is rejected.
func parseQuantity(v any) (int, error) {
	var text string
	switch q := v.(type) {
	case nil:
		return domain.DefaultQuantity, nil
	case json.Number:
		text = q.String()
	case string:
		text = strings.TrimSpace(q)
	default:
		return 0, fmt.Errorf("quantity %v is not a number", v)
	}

	if n, err := strconv.ParseInt(text, 10, 32); err == nil {
		return int(n), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("quantity %q is not a number", text)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("quantity %s is not a whole number", text)
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("quantity %s is out of range", text)
	}
	return int(f), nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case json.Number:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
