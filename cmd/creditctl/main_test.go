package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrediTech/internal/domain/models"
)

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.Bytes()
}

func TestAssessCommand(t *testing.T) {
	out := run(t, "assess", "--seed", "3", "--compare=false",
		"--age", "35", "--income", "8000", "--score", "750", "--profession", "servidor",
		"--purpose", "veiculo", "--amount", "30000", "--tenure", "36", "--relationship", "60")

	var res struct {
		Assessment models.RiskAssessment         `json:"assessment"`
		Comparison *models.HistoricalComparison `json:"comparison"`
	}
	require.NoError(t, json.Unmarshal(out, &res))
	assert.NotEmpty(t, res.Assessment.Classification)
	assert.Nil(t, res.Comparison)
}

func TestClustersCommand(t *testing.T) {
	out := run(t, "clusters", "--seed", "3", "-k", "3", "-n", "200")

	var set models.ClusterSet
	require.NoError(t, json.Unmarshal(out, &set))
	assert.Equal(t, 200, set.PopulationSize)
	assert.NotEmpty(t, set.Clusters)
}

func TestForecastOffline(t *testing.T) {
	out := run(t, "forecast", "--seed", "3", "--offline", "--epochs", "1", "--days", "3")

	var res struct {
		Source   string          `json:"source"`
		Forecast models.Forecast `json:"forecast"`
	}
	require.NoError(t, json.Unmarshal(out, &res))
	assert.Equal(t, "synthesized", res.Source)
	assert.Len(t, res.Forecast.Points, 3)
}

func TestForecastUnknownCategory(t *testing.T) {
	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"forecast", "--offline", "--category", "consignado"})
	assert.Error(t, cmd.Execute())
}
