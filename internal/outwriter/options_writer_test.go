package outwriter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/huangsam/reviewdash/core"
	"github.com/huangsam/reviewdash/internal/contract"
	"github.com/huangsam/reviewdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleVocabulary() *core.VocabularySet {
	var v core.VocabularySet
	v.Merge([]string{"alice", "<bob>"}, []string{"api"}, schema.FilterSelection{})
	return &v
}

func TestWriteOptions(t *testing.T) {
	t.Run("text lists both columns", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &contract.Config{Output: schema.TextOut}
		require.NoError(t, writeOptionsTo(&buf, sampleVocabulary().Options(EscaperFor(cfg.Output)), cfg))
		assert.Contains(t, buf.String(), "alice")
		assert.Contains(t, buf.String(), "<bob>")
		assert.Contains(t, buf.String(), "api")
	})

	t.Run("text without values", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeOptionsTo(&buf, schema.FilterOptions{}, &contract.Config{Output: schema.TextOut}))
		assert.Contains(t, buf.String(), NoDataText)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &contract.Config{Output: schema.JSONOut}
		require.NoError(t, writeOptionsTo(&buf, sampleVocabulary().Options(EscaperFor(cfg.Output)), cfg))
		var decoded schema.FilterOptions
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, []string{"&lt;bob&gt;", "alice"}, decoded.Authors)
		assert.Equal(t, []string{"api"}, decoded.ProjectNames)
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := &contract.Config{Output: schema.CSVOut}
		require.NoError(t, writeOptionsTo(&buf, sampleVocabulary().Options(EscaperFor(cfg.Output)), cfg))
		assert.Equal(t, "field,value\nauthor,&lt;bob&gt;\nauthor,alice\nproject_name,api\n", buf.String())
	})

	t.Run("parquet is rejected", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, writeOptionsTo(&buf, schema.FilterOptions{}, &contract.Config{Output: schema.ParquetOut}))
	})
}
