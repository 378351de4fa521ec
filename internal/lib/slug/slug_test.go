package slug

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Edital de Cultura 2024", "edital-de-cultura-2024"},
		{"Educação Ambiental", "educacao-ambiental"},
		{"  Saúde -- na   Praça!  ", "saude-na-praca"},
		{"Ação_Jovem/Çidade", "acao-jovem-cidade"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestUnique(t *testing.T) {
	used := map[string]bool{"horta": true, "horta-2": true}

	got, err := Unique("horta", func(c string) (bool, error) { return used[c], nil })
	require.NoError(t, err)
	assert.Equal(t, "horta-3", got)

	got, err = Unique("praca", func(c string) (bool, error) { return used[c], nil })
	require.NoError(t, err)
	assert.Equal(t, "praca", got)
}

func TestUnique_Error(t *testing.T) {
	boom := errors.New("boom")

	_, err := Unique("x", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
