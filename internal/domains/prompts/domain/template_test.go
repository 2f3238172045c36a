package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		values     map[string]string
		want       string
		unresolved []string
	}{
		{
			name:   "substitutes known placeholders",
			text:   "A {breed} {animal} in {outfit}",
			values: map[string]string{"breed": "Poodle", "animal": "dog", "outfit": "Santa Suit"},
			want:   "A Poodle dog in Santa Suit",
		},
		{
			name:   "missing values collapse whitespace",
			text:   "A  {personality}   {breed}\n{animal} , posing",
			values: map[string]string{"breed": "Poodle", "animal": "dog"},
			want:   "A Poodle dog, posing",
		},
		{
			name:       "unknown placeholders stay verbatim",
			text:       "{breed} with {hat} and {hat} in {mood}",
			values:     map[string]string{"breed": "Poodle"},
			want:       "Poodle with {hat} and {hat} in {mood}",
			unresolved: []string{"hat", "mood"},
		},
		{
			name:   "empty parenthetical removed",
			text:   "a {coat} ({pattern}) coat",
			values: map[string]string{"coat": "Black"},
			want:   "a Black coat",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Template{Name: "t", Text: tc.text}.Render(tc.values)
			require.Equal(t, tc.want, got.Text)
			require.Equal(t, tc.unresolved, got.Unresolved)
		})
	}
}

func TestNewTemplate_Validates(t *testing.T) {
	_, err := NewTemplate(" ", "x")
	require.ErrorIs(t, err, ErrUnnamedTemplate)
	_, err = NewTemplate("p", "  ")
	require.ErrorIs(t, err, ErrEmptyTemplate)
	tpl, err := NewTemplate(" p ", "{breed}")
	require.NoError(t, err)
	require.Equal(t, "p", tpl.Name)
}

func TestDefaultTemplateUsesOnlyKnownPlaceholders(t *testing.T) {
	got := Template{Name: DefaultTemplateName, Text: DefaultTemplateText}.Render(nil)
	require.Empty(t, got.Unresolved)
}
