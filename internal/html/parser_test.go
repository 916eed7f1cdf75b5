package html_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webparse/internal/cursor"
	"webparse/internal/html"
)

func parse(t *testing.T, input string) html.Node {
	t.Helper()
	root, err := html.NewParser(zap.NewNop()).Parse(input)
	require.NoError(t, err)
	return root
}

func elem(tag string, attrs html.AttrMap, children ...html.Node) *html.Element {
	if len(children) == 0 {
		return html.NewElement(tag, attrs, nil)
	}
	return html.NewElement(tag, attrs, children)
}

func text(s string) *html.Text {
	return html.NewText(s)
}

const simplePage = `<html lang="en">
  <body>
    <h1>Title</h1>
    <div id="main" class="test">
      <p>Hello <em>world</em>!</p>
    </div>
  </body>
</html>
`

func TestParser_SimplePage(t *testing.T) {
	t.Parallel()

	want := elem("html", html.AttrMap{"lang": "en"},
		elem("body", nil,
			elem("h1", nil, text("Title")),
			elem("div", html.AttrMap{"id": "main", "class": "test"},
				elem("p", nil,
					text("Hello "),
					elem("em", nil, text("world")),
					text("!"),
				),
			),
		),
	)

	assert.Equal(t, want, parse(t, simplePage))
}

const scriptPage = `<html lang="en">
<head>
    <title>Simple HTML Page</title>
    <style>
        h1 {
            color: blue;
        }
    </style>
</head>
<body>
    <button onclick="showMessage()">Click Me</button>
    <script>
        function showMessage() {
            alert('Hello, world!');
        }
    </script>
</body>
</html>`

func TestParser_RawTextIsKeptVerbatim(t *testing.T) {
	t.Parallel()

	want := elem("html", html.AttrMap{"lang": "en"},
		elem("head", nil,
			elem("title", nil, text("Simple HTML Page")),
			elem("style", nil, text("h1 {\n            color: blue;\n        }\n    ")),
		),
		elem("body", nil,
			elem("button", html.AttrMap{"onclick": "showMessage()"}, text("Click Me")),
			elem("script", nil, text("function showMessage() {\n            alert('Hello, world!');\n        }\n    ")),
		),
	)

	assert.Equal(t, want, parse(t, scriptPage))
}

func TestParser_SingleRootIsNotWrapped(t *testing.T) {
	t.Parallel()

	root := parse(t, `<div class="x"><p>one</p></div>`)

	el, ok := root.(*html.Element)
	require.True(t, ok, "root should be an element, got %T", root)
	assert.Equal(t, "div", el.TagName)
	assert.Equal(t, html.AttrMap{"class": "x"}, el.Attrs)
	assert.Len(t, el.Children, 1)
}

func TestParser_ImplicitRoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  html.Node
	}{
		{
			name:  "two siblings",
			input: "<p>a</p>\n\n<p>b</p>",
			want:  elem("html", nil, elem("p", nil, text("a")), elem("p", nil, text("b"))),
		},
		{
			name:  "element and text",
			input: "<h1>x</h1>tail",
			want:  elem("html", nil, elem("h1", nil, text("x")), text("tail")),
		},
		{
			name:  "empty document",
			input: "  \n ",
			want:  elem("html", nil),
		},
		{
			name:  "only text",
			input: "hello world",
			want:  text("hello world"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, parse(t, tt.input))
		})
	}
}

func TestParser_Whitespace(t *testing.T) {
	t.Parallel()

	root := parse(t, "<ul>\n  <li>a</li>\n  <li>  b  c  </li>\n</ul>")

	want := elem("ul", nil,
		elem("li", nil, text("a")),
		elem("li", nil, text("b  c  ")),
	)
	assert.Equal(t, want, root)
}

func TestParser_MultiByteText(t *testing.T) {
	t.Parallel()

	root := parse(t, "<p>héllo, 世界</p>")
	assert.Equal(t, elem("p", nil, text("héllo, 世界")), root)
}

func TestParser_Attributes(t *testing.T) {
	t.Parallel()

	root := parse(t, `<a href='/x' title="a 'quoted' b"   data1="1" data1="2">t</a>`)

	el := root.(*html.Element)
	assert.Equal(t, html.AttrMap{
		"href":  "/x",
		"title": "a 'quoted' b",
		"data1": "2",
	}, el.Attrs)

	href, ok := el.Attr("href")
	assert.True(t, ok)
	assert.Equal(t, "/x", href)
}

func TestParser_Comments(t *testing.T) {
	t.Parallel()

	t.Run("before root", func(t *testing.T) {
		t.Parallel()
		root := parse(t, "<!-- a comment --> <div></div>")
		assert.Equal(t, elem("div", nil), root)
	})

	t.Run("between children", func(t *testing.T) {
		t.Parallel()
		root := parse(t, "<div><p>a</p><!-- note -->\n<p>b</p></div>")
		assert.Equal(t, elem("div", nil, elem("p", nil, text("a")), elem("p", nil, text("b"))), root)
	})

	t.Run("dash in body is not supported", func(t *testing.T) {
		t.Parallel()
		_, err := html.NewParser(nil).Parse("<!-- a-b --><div></div>")
		require.Error(t, err)
		assert.ErrorIs(t, err, cursor.ErrMismatch)
	})
}

func TestParser_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		kind     cursor.Kind
		offset   int
		expected string
	}{
		{name: "mismatched closing tag", input: "<div>text</span>", kind: cursor.KindMismatch, offset: 11, expected: `"div"`},
		{name: "closing tag case", input: "<div></DIV>", kind: cursor.KindMismatch, offset: 7, expected: `"div"`},
		{name: "closing tag prefix", input: "<p></pre>", kind: cursor.KindMismatch, offset: 6, expected: `">"`},
		{name: "missing closing tag", input: "<div><p>x</p>", kind: cursor.KindMismatch, offset: 13, expected: `"</"`},
		{name: "unquoted attribute", input: "<div id=main></div>", kind: cursor.KindMismatch, offset: 8},
		{name: "attribute without value", input: "<div hidden></div>", kind: cursor.KindMismatch, offset: 11, expected: `"="`},
		{name: "mismatched quotes", input: `<div id="main'></div>`, kind: cursor.KindMismatch, offset: 21, expected: `"\""`},
		{name: "eof in tag", input: "<div id='a'", kind: cursor.KindEOF, offset: 11},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root, err := html.NewParser(zap.NewNop()).Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, root, "no partial tree on failure")

			var perr *cursor.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.kind, perr.Kind)
			assert.Equal(t, tt.offset, perr.Offset)
			if tt.expected != "" {
				assert.Equal(t, tt.expected, perr.Expected)
			}
		})
	}
}

func TestCountNodes(t *testing.T) {
	t.Parallel()

	elements, texts := html.CountNodes(parse(t, simplePage))
	assert.Equal(t, 6, elements)
	assert.Equal(t, 4, texts)
}
