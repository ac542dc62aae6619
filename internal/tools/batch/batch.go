package batch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result represents the result of a single operation in a batch.
// Index is the position of the item in the request.
type Result struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status"` // "success" or "error"
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// BatchResult represents the aggregated results of a batch operation
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ErrorFormatter renders an item error for the result list.
type ErrorFormatter func(error) string

// ParseStringOrArray parses a parameter that can be either a single string or an array of strings
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		// Some clients send arrays as a JSON-encoded string.
		if strings.HasPrefix(strings.TrimSpace(v), "[") {
			var items []interface{}
			if err := json.Unmarshal([]byte(v), &items); err == nil {
				return ParseStringOrArray(items, paramName)
			}
		}
		result = []string{v}
	case []string:
		items := make([]interface{}, len(v))
		for i, s := range v {
			items[i] = s
		}
		return ParseStringOrArray(items, paramName)
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return result, nil
}

// Summarize aggregates results, keeping their order.
func Summarize(results []Result) BatchResult {
	br := BatchResult{
		Total:   len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}
	return br
}

// FormatResults creates a formatted JSON string from batch results
func FormatResults(results []Result) string {
	jsonBytes, _ := json.MarshalIndent(Summarize(results), "", "  ")
	return string(jsonBytes)
}

// Process runs fn on every item in order and collects one result per item.
// A failing item never stops the items after it.
func Process[T any](items []T, fn func(index int, item T) (id string, result any, err error), formatErr ErrorFormatter) []Result {
	if formatErr == nil {
		formatErr = func(err error) string { return err.Error() }
	}
	results := make([]Result, 0, len(items))
	for i, item := range items {
		id, res, err := fn(i, item)
		if err != nil {
			results = append(results, Result{Index: i, ID: id, Status: StatusError, Error: formatErr(err)})
			continue
		}
		results = append(results, Result{Index: i, ID: id, Status: StatusSuccess, Result: res})
	}
	return results
}

// ProcessBatch executes fn on each ID and collects results.
func ProcessBatch(ids []string, fn func(id string) (any, error), formatErr ErrorFormatter) []Result {
	return Process(ids, func(_ int, id string) (string, any, error) {
		res, err := fn(id)
		return id, res, err
	}, formatErr)
}

// NewSuccessResult creates a success result
func NewSuccessResult(index int, id string, result any) Result {
	return Result{
		Index:  index,
		ID:     id,
		Status: StatusSuccess,
		Result: result,
	}
}

// NewErrorResult creates an error result
func NewErrorResult(index int, id string, message string) Result {
	return Result{
		Index:  index,
		ID:     id,
		Status: StatusError,
		Error:  message,
	}
}
