package css_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"webparse/internal/css"
)

func TestParseColor(t *testing.T) {
	t.Parallel()

	valid := []struct {
		in   string
		want css.Color
	}{
		{in: "cc0000", want: css.Color{R: 204, G: 0, B: 0, A: 255}},
		{in: "cc0000ff", want: css.Color{R: 204, G: 0, B: 0, A: 255}},
		{in: "#0a0B0c", want: css.Color{R: 10, G: 11, B: 12, A: 255}},
		{in: "#00000000", want: css.Color{}},
	}
	for _, tt := range valid {
		got, err := css.ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, in := range []string{"zz0000", "abc", "", "#", "cc00000", "cc0000f", "cc0000ffff", "gg0000ff"} {
		_, err := css.ParseColor(in)
		assert.Error(t, err, in)
	}
}

func TestColor_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#cc0000", css.Color{R: 204, A: 255}.String())
	assert.Equal(t, "#cc000080", css.Color{R: 204, A: 128}.String())
}

func TestSpecificity_Compare(t *testing.T) {
	t.Parallel()

	id := css.Specificity{IDs: 1}
	classes := css.Specificity{Classes: 2}
	tagSpec := css.Specificity{Tags: 1}

	assert.Equal(t, 1, id.Compare(classes))
	assert.Equal(t, 1, classes.Compare(tagSpec))
	assert.Equal(t, -1, tagSpec.Compare(id))
	assert.Equal(t, 0, classes.Compare(css.Specificity{Classes: 2}))
	assert.Equal(t, 1, css.Specificity{Classes: 1, Tags: 1}.Compare(css.Specificity{Classes: 1}))
	assert.Equal(t, "(1,0,0)", id.String())
}

func TestSimpleSelector_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "*", css.SimpleSelector{}.String())
	assert.Equal(t, "div#main.a.b", css.SimpleSelector{TagName: "div", ID: "main", Classes: []string{"a", "b"}}.String())
	assert.Equal(t, css.Specificity{IDs: 1, Classes: 2, Tags: 1},
		css.SimpleSelector{TagName: "div", ID: "main", Classes: []string{"a", "b"}}.Specificity())
}

func TestValue_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "auto", css.Keyword("auto").String())
	assert.Equal(t, "20px", css.Length{Value: 20, Unit: css.Px}.String())
	assert.Equal(t, "0.5px", css.Length{Value: 0.5, Unit: css.Px}.String())
	assert.Equal(t, "color: #cc0000", css.Declaration{Name: "color", Value: css.Color{R: 204, A: 255}}.String())

	_, err := css.ParseUnit("em")
	assert.Error(t, err)
}

func TestStylesheet_RulesBySelector(t *testing.T) {
	t.Parallel()

	sheet := parse(t, sampleCSS)
	assert.Len(t, sheet.RulesBySelector("h2"), 1)
	assert.Len(t, sheet.RulesBySelector("div.note"), 1)
	assert.Empty(t, sheet.RulesBySelector("span"))
	assert.Equal(t, 5, sheet.SelectorCount())
}

func TestFprint(t *testing.T) {
	t.Parallel()

	sheet := parse(t, "p, #x { margin: auto; width: 20px; }\n.a{color:#cc0000;}")

	var buf bytes.Buffer
	require.NoError(t, css.Fprint(&buf, sheet))

	want := "#x, p {\n  margin: auto;\n  width: 20px;\n}\n\n.a {\n  color: #cc0000;\n}\n"
	assert.Equal(t, want, buf.String())

	again := parse(t, buf.String())
	assert.Equal(t, sheet, again)
}

func TestMarshalYAML(t *testing.T) {
	t.Parallel()

	out, err := css.MarshalYAML(parse(t, "h1, #x { margin: auto; width: 20px; }"))
	require.NoError(t, err)

	var doc struct {
		Rules []struct {
			Selectors []struct {
				Selector    string `yaml:"selector"`
				Specificity string `yaml:"specificity"`
			} `yaml:"selectors"`
			Declarations []struct {
				Property string `yaml:"property"`
				Kind     string `yaml:"kind"`
				Value    string `yaml:"value"`
			} `yaml:"declarations"`
		} `yaml:"rules"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	require.Len(t, doc.Rules, 1)

	rule := doc.Rules[0]
	require.Len(t, rule.Selectors, 2)
	assert.Equal(t, "#x", rule.Selectors[0].Selector)
	assert.Equal(t, "(1,0,0)", rule.Selectors[0].Specificity)
	require.Len(t, rule.Declarations, 2)
	assert.Equal(t, "keyword", rule.Declarations[0].Kind)
	assert.Equal(t, "length", rule.Declarations[1].Kind)
	assert.Equal(t, "20px", rule.Declarations[1].Value)
}
