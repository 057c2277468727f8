package placeholder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mergeflow/pkg/placeholder"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		required []string
		optional []string
	}{
		{
			name:     "no tokens",
			text:     "Hello, World!",
			required: []string{},
			optional: []string{},
		},
		{
			name:     "required and optional",
			text:     "Hi {{Name}}, {{?Title}} welcome",
			required: []string{"Name"},
			optional: []string{"Title"},
		},
		{
			name:     "whitespace is trimmed",
			text:     "{{ City }} {{? Address2 }} {{ ?State}}",
			required: []string{"City"},
			optional: []string{"Address2", "State"},
		},
		{
			name:     "duplicates collapse",
			text:     "{{Name}} and {{Name}} and {{ Name }}",
			required: []string{"Name"},
			optional: []string{},
		},
		{
			name:     "empty token is ignored",
			text:     "{{}} {{ }} {{?}} {{Email}}",
			required: []string{"Email"},
			optional: []string{},
		},
		{
			name:     "single braces are not tokens",
			text:     "{Name} {{Name}",
			required: []string{},
			optional: []string{},
		},
		{
			name:     "names with spaces",
			text:     "{{First Name}}",
			required: []string{"First Name"},
			optional: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := placeholder.Parse(tt.text)

			assert.Equal(t, tt.required, m.Required())
			assert.Equal(t, tt.optional, m.Optional())
		})
	}
}

func TestParse_OptionalWinsOverRequired(t *testing.T) {
	t.Parallel()

	m := placeholder.Parse("{{Address2}} {{?Address2}} {{City}}")

	assert.Equal(t, []string{"City"}, m.Required())
	assert.Equal(t, []string{"Address2"}, m.Optional())
	assert.Equal(t, []string{"Address2"}, m.Conflicts())
	assert.False(t, m.IsRequired("Address2"))
	assert.True(t, m.IsOptional("Address2"))
}

func TestParse_Deterministic(t *testing.T) {
	t.Parallel()

	text := "{{Zip}} {{City}} {{?Apt}} {{Name}} {{?Suite}}"

	first := placeholder.Parse(text)
	second := placeholder.Parse(text)

	assert.Equal(t, first.Fields(), second.Fields())
	assert.Equal(t, []string{"Apt", "City", "Name", "Suite", "Zip"}, first.Fields())
}

func TestTokens(t *testing.T) {
	t.Parallel()

	tokens := placeholder.Tokens("Dear {{ FirstName }}, {{?Title}}{{}}")

	require.Len(t, tokens, 2)
	assert.Equal(t, placeholder.Token{Raw: "{{ FirstName }}", Name: "FirstName"}, tokens[0])
	assert.Equal(t, placeholder.Token{Raw: "{{?Title}}", Name: "Title", Optional: true}, tokens[1])
}

func TestManifest_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, placeholder.Parse("no fields here").Empty())
	assert.False(t, placeholder.Parse("{{?Only}}").Empty())
}
