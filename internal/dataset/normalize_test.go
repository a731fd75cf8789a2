package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: "Área", want: "Área"},
		{name: "surrounding spaces", raw: "  Resposta à Pesquisa ", want: "Resposta à Pesquisa"},
		{name: "utf8 bom", raw: "\uFEFFData de Abertura", want: "Data de Abertura"},
		{name: "latin1 decoded bom", raw: "ï»¿Tipo", want: "Tipo"},
		{name: "zero width space", raw: "Tipo\u200B de Manifestação", want: "Tipo de Manifestação"},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeHeader(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeHeader(got), "must be idempotent")
		})
	}
}

func TestCleanCell(t *testing.T) {
	junk := []string{"?? "}

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "mangled prefix", raw: "?? Muito satisfeito", want: "Muito satisfeito"},
		{name: "already clean", raw: "Muito satisfeito", want: "Muito satisfeito"},
		{name: "junk mid-string", raw: "Muito ?? satisfeito", want: "Muito satisfeito"},
		{name: "only junk", raw: "?? ", want: ""},
		{name: "trims after removal", raw: "  ?? Satisfeito  ", want: "Satisfeito"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanCell(tt.raw, junk)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, CleanCell(got, junk), "must be idempotent")
		})
	}
}

func TestCleanCellIgnoresEmptyJunk(t *testing.T) {
	assert.Equal(t, "abc", CleanCell("abc", []string{""}))
}
