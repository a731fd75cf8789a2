package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsCSV(t *testing.T) {
	data, err := CountsCSV([]CountRow{
		{Value: "Reclamação", Count: 12},
		{Value: "Elogio", Count: 3},
	})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "BOM prefix for Excel")

	body := string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	lines := strings.Split(strings.TrimRight(body, "\r\n"), "\r\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "valor;quantidade", lines[0])
	assert.Equal(t, "Reclamação;12", lines[1])
	assert.Equal(t, "Elogio;3", lines[2])
}

func TestCountsCSVEmpty(t *testing.T) {
	data, err := CountsCSV(nil)
	require.NoError(t, err)
	body := string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	assert.Equal(t, "valor;quantidade", strings.TrimRight(body, "\r\n"), "header only")
}
