package adapters

import (
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/tabkit/tabkit/pkg/errors"
	"github.com/tabkit/tabkit/pkg/tree"
	"github.com/tabkit/tabkit/pkg/util"
)

// ReadXML parses an XML document into a tree, transparently
// decompressing gzip input.
func ReadXML(path string) (*tree.Tree, error) {
	r, cleanup, err := util.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeFileNotFound, "open %s", path)
	}
	defer cleanup()

	return ParseXML(r)
}

// ParseXML decodes an XML document from a reader. The document element
// becomes a named child of the tree root, so paths start with its tag.
// Elements without child elements map to string leaves holding their
// trimmed text; mixed content loses the text around child elements.
func ParseXML(r io.Reader) (*tree.Tree, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailed, "decode xml")
	}

	t := tree.New()
	if root := doc.Root(); root != nil {
		t.Root.AddChild(xmlNode(root))
	}
	return t, nil
}

func xmlNode(el *etree.Element) *tree.Node {
	var n *tree.Node
	children := el.ChildElements()
	if len(children) == 0 {
		n = tree.NewScalar(el.Tag, tree.KindString, strings.TrimSpace(el.Text()))
	} else {
		n = tree.NewNode(el.Tag, tree.KindObject)
		for _, c := range children {
			n.AddChild(xmlNode(c))
		}
	}
	for _, a := range el.Attr {
		n.SetAttr(xmlAttrKey(a), a.Value)
	}
	return n
}

func xmlAttrKey(a etree.Attr) string {
	if a.Space != "" {
		return a.Space + ":" + a.Key
	}
	return a.Key
}

// WriteXML serializes the tree to path as indented XML. The tree root
// must hold exactly one child, which becomes the document element.
func WriteXML(t *tree.Tree, path string) error {
	if len(t.Root.Children) != 1 {
		return errors.Newf(errors.CodeWriteFailed, "xml document needs exactly one root element, have %d", len(t.Root.Children))
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	appendXML(&doc.Element, t.Root.Children[0].Name, t.Root.Children[0])
	doc.Indent(2)

	data, err := doc.WriteToBytes()
	if err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "encode xml")
	}
	if err := util.WriteBytes(path, data); err != nil {
		return errors.Wrapf(err, errors.CodeWriteFailed, "write %s", path)
	}
	return nil
}

// appendXML emits n under parent. Array nodes have no XML equivalent;
// their members repeat as sibling elements under the array's name.
func appendXML(parent *etree.Element, name string, n *tree.Node) {
	if name == "" {
		name = "item"
	}

	switch n.Kind {
	case tree.KindArray:
		for _, c := range n.Children {
			childName := c.Name
			if childName == "" {
				childName = name
			}
			appendXML(parent, childName, c)
		}
	case tree.KindObject:
		el := parent.CreateElement(name)
		for _, a := range n.Attrs {
			el.CreateAttr(a.Key, a.Value)
		}
		for _, c := range n.Children {
			appendXML(el, c.Name, c)
		}
	default:
		el := parent.CreateElement(name)
		for _, a := range n.Attrs {
			el.CreateAttr(a.Key, a.Value)
		}
		el.SetText(n.Text())
	}
}
