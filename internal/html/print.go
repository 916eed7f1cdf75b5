package html

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// Fprint writes an indented outline of the tree rooted at n, one node per
// line. Attributes are listed sorted by name.
func Fprint(w io.Writer, n Node) error {
	return fprint(w, n, "")
}

func fprint(w io.Writer, n Node, prefix string) error {
	switch n := n.(type) {
	case *Text:
		_, err := fmt.Fprintf(w, "%s├── %q\n", prefix, n.Data)
		return err
	case *Element:
		if _, err := fmt.Fprintf(w, "%s├── <%s%s>\n", prefix, n.TagName, formatAttrs(n.Attrs)); err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := fprint(w, child, prefix+"   "); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unexpected node type %T", n)
	}
}

func formatAttrs(attrs AttrMap) string {
	if len(attrs) == 0 {
		return ""
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	slices.Sort(names)

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, " %s=%q", name, attrs[name])
	}
	return sb.String()
}
