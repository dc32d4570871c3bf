package adapters

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tabkit/tabkit/pkg/errors"
	"github.com/tabkit/tabkit/pkg/tree"
	"github.com/tabkit/tabkit/pkg/util"
)

// ReadYAML parses a YAML document into a tree, transparently
// decompressing gzip input.
func ReadYAML(path string) (*tree.Tree, error) {
	r, cleanup, err := util.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeFileNotFound, "open %s", path)
	}
	defer cleanup()

	return ParseYAML(r)
}

// ParseYAML decodes the first YAML document from a reader. The walk
// goes over yaml.Node rather than decoded maps so mapping order and
// scalar literals survive.
func ParseYAML(r io.Reader) (*tree.Tree, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return tree.New(), nil
		}
		return nil, errors.Wrap(err, errors.CodeParseFailed, "decode yaml")
	}

	root := &doc
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root = doc.Content[0]
	}

	w := &yamlWalker{expanding: make(map[*yaml.Node]bool)}
	node, err := w.node(root, "")
	if err != nil {
		return nil, err
	}

	t := tree.New()
	if node.Kind == tree.KindObject || node.Kind == tree.KindArray {
		t.Root = node
	} else {
		t.Root.AddChild(node)
	}
	return t, nil
}

// yamlWalker tracks which nodes are on the current expansion path so
// recursive anchors fail instead of looping.
type yamlWalker struct {
	expanding map[*yaml.Node]bool
}

func (w *yamlWalker) node(y *yaml.Node, name string) (*tree.Node, error) {
	if w.expanding[y] {
		return nil, errors.New(errors.CodeParseFailed, "yaml alias cycle")
	}

	switch y.Kind {
	case yaml.MappingNode:
		w.expanding[y] = true
		defer delete(w.expanding, y)

		n := tree.NewNode(name, tree.KindObject)
		for i := 0; i+1 < len(y.Content); i += 2 {
			child, err := w.node(y.Content[i+1], y.Content[i].Value)
			if err != nil {
				return nil, err
			}
			n.AddChild(child)
		}
		return n, nil
	case yaml.SequenceNode:
		w.expanding[y] = true
		defer delete(w.expanding, y)

		n := tree.NewNode(name, tree.KindArray)
		for _, item := range y.Content {
			child, err := w.node(item, "")
			if err != nil {
				return nil, err
			}
			n.AddChild(child)
		}
		return n, nil
	case yaml.ScalarNode:
		return tree.NewScalar(name, yamlScalarKind(y), yamlScalarValue(y)), nil
	case yaml.AliasNode:
		if y.Alias == nil {
			return nil, errors.New(errors.CodeParseFailed, "unresolved yaml alias")
		}
		return w.node(y.Alias, name)
	}
	return nil, errors.Newf(errors.CodeParseFailed, "unsupported yaml node kind %d", y.Kind)
}

func yamlScalarKind(y *yaml.Node) tree.Kind {
	switch y.ShortTag() {
	case "!!int", "!!float":
		return tree.KindNumber
	case "!!bool":
		return tree.KindBool
	case "!!null":
		return tree.KindNull
	default:
		return tree.KindString
	}
}

func yamlScalarValue(y *yaml.Node) string {
	if y.ShortTag() == "!!null" {
		return ""
	}
	return y.Value
}

// WriteYAML serializes the tree to path as a YAML document.
func WriteYAML(t *tree.Tree, path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlFromTree(t.Root)); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "encode yaml")
	}

	if err := util.WriteBytes(path, buf.Bytes()); err != nil {
		return errors.Wrapf(err, errors.CodeWriteFailed, "write %s", path)
	}
	return nil
}

func yamlFromTree(n *tree.Node) *yaml.Node {
	switch n.Kind {
	case tree.KindObject:
		y := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, c := range n.Children {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Name}
			y.Content = append(y.Content, key, yamlFromTree(c))
		}
		return y
	case tree.KindArray:
		y := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, c := range n.Children {
			y.Content = append(y.Content, yamlFromTree(c))
		}
		return y
	case tree.KindNumber:
		// Tag left empty so the encoder resolves int vs float from
		// the literal.
		return &yaml.Node{Kind: yaml.ScalarNode, Value: n.Value}
	case tree.KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: n.Value}
	case tree.KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.Value}
	}
}
