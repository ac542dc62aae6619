package batch

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		paramName string
		want      []string
		wantErr   bool
	}{
		{
			name:      "single string",
			input:     "test123",
			paramName: "testParam",
			want:      []string{"test123"},
			wantErr:   false,
		},
		{
			name:      "array of strings",
			input:     []interface{}{"id1", "id2", "id3"},
			paramName: "testParam",
			want:      []string{"id1", "id2", "id3"},
			wantErr:   false,
		},
		{
			name:      "nil input",
			input:     nil,
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "empty string",
			input:     "",
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "empty array",
			input:     []interface{}{},
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "array with non-string",
			input:     []interface{}{"id1", 123, "id3"},
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "array with empty string",
			input:     []interface{}{"id1", "", "id3"},
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "string slice",
			input:     []string{"id1", "id2"},
			paramName: "testParam",
			want:      []string{"id1", "id2"},
			wantErr:   false,
		},
		{
			name:      "invalid type",
			input:     123,
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "JSON string array",
			input:     `["id1", "id2", "id3"]`,
			paramName: "testParam",
			want:      []string{"id1", "id2", "id3"},
			wantErr:   false,
		},
		{
			name:      "JSON string array of task ids",
			input:     `["63b7bebb91c0a5474805fcd4", "63b7bebb91c0a5474805fcd5", "63b7bebb91c0a5474805fcd6"]`,
			paramName: "testParam",
			want:      []string{"63b7bebb91c0a5474805fcd4", "63b7bebb91c0a5474805fcd5", "63b7bebb91c0a5474805fcd6"},
			wantErr:   false,
		},
		{
			name:      "JSON string single element array",
			input:     `["63b7bebb91c0a5474805fcd4"]`,
			paramName: "testParam",
			want:      []string{"63b7bebb91c0a5474805fcd4"},
			wantErr:   false,
		},
		{
			name:      "JSON string empty array",
			input:     `[]`,
			paramName: "testParam",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "invalid JSON string",
			input:     `[invalid json`,
			paramName: "testParam",
			want:      []string{`[invalid json`},
			wantErr:   false,
		},
		{
			name:      "string starting with bracket (not JSON)",
			input:     `[draft] renew passport`,
			paramName: "testParam",
			want:      []string{`[draft] renew passport`},
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, tt.paramName)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		NewSuccessResult(0, "id1", map[string]string{"title": "Buy milk"}),
		NewErrorResult(1, "", "validation error: title is required"),
		NewSuccessResult(2, "id3", nil),
	}

	output := FormatResults(results)

	var br BatchResult
	require.NoError(t, json.Unmarshal([]byte(output), &br))
	assert.Equal(t, 3, br.Total)
	assert.Equal(t, 2, br.Successful)
	assert.Equal(t, 1, br.Failed)
	require.Len(t, br.Results, 3)
	for i, r := range br.Results {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, "validation error: title is required", br.Results[1].Error)
}

func TestProcess_FailSoftAndOrdered(t *testing.T) {
	items := []string{"a", "", "c"}
	var seen []int

	results := Process(items, func(i int, item string) (string, any, error) {
		seen = append(seen, i)
		if item == "" {
			return "", nil, errors.New("title is required")
		}
		return "id-" + item, item, nil
	}, func(err error) string { return "validation error: " + err.Error() })

	require.Equal(t, []int{0, 1, 2}, seen)
	want := []struct {
		status string
		id     string
		err    string
	}{
		{StatusSuccess, "id-a", ""},
		{StatusError, "", "validation error: title is required"},
		{StatusSuccess, "id-c", ""},
	}
	require.Len(t, results, len(want))
	for i, w := range want {
		r := results[i]
		assert.Equal(t, i, r.Index)
		assert.Equal(t, w.status, r.Status)
		assert.Equal(t, w.id, r.ID)
		assert.Equal(t, w.err, r.Error)
	}
}

func TestProcessBatch(t *testing.T) {
	ids := []string{"id1", "id2", "id3"}
	fn := func(id string) (any, error) {
		if id == "id2" {
			return nil, errors.New("not found")
		}
		return "deleted " + id, nil
	}

	results := ProcessBatch(ids, fn, nil)

	require.Len(t, results, 3)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, "deleted id1", results[0].Result)
	assert.Equal(t, StatusError, results[1].Status)
	assert.Equal(t, "not found", results[1].Error)
	assert.Equal(t, "id2", results[1].ID)
	assert.Equal(t, 2, results[2].Index)
}
