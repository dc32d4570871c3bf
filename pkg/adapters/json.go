package adapters

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/tabkit/tabkit/pkg/errors"
	"github.com/tabkit/tabkit/pkg/tree"
	"github.com/tabkit/tabkit/pkg/util"
)

// ReadJSON parses a JSON document into a tree, transparently
// decompressing gzip input.
func ReadJSON(path string) (*tree.Tree, error) {
	r, cleanup, err := util.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeFileNotFound, "open %s", path)
	}
	defer cleanup()

	return ParseJSON(r)
}

// ParseJSON decodes one JSON document from a reader. Object member
// order is preserved and number literals keep their source text, so a
// written-back document round-trips values exactly.
func ParseJSON(r io.Reader) (*tree.Tree, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return tree.New(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailed, "decode json")
	}

	root, err := decodeJSONValue(dec, "", tok)
	if err != nil {
		return nil, err
	}
	if extra, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeParseFailed, "decode json")
		}
		return nil, errors.Newf(errors.CodeParseFailed, "trailing content after document: %v", extra)
	}

	t := tree.New()
	if root.Kind == tree.KindObject || root.Kind == tree.KindArray {
		t.Root = root
	} else {
		t.Root.AddChild(root)
	}
	return t, nil
}

func decodeJSONValue(dec *json.Decoder, name string, tok json.Token) (*tree.Node, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			n := tree.NewNode(name, tree.KindObject)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, errors.Wrap(err, errors.CodeParseFailed, "decode json")
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, errors.Newf(errors.CodeParseFailed, "expected object key, got %v", keyTok)
				}
				valTok, err := dec.Token()
				if err != nil {
					return nil, errors.Wrap(err, errors.CodeParseFailed, "decode json")
				}
				child, err := decodeJSONValue(dec, key, valTok)
				if err != nil {
					return nil, err
				}
				n.AddChild(child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, errors.Wrap(err, errors.CodeParseFailed, "decode json")
			}
			return n, nil
		case '[':
			n := tree.NewNode(name, tree.KindArray)
			for dec.More() {
				valTok, err := dec.Token()
				if err != nil {
					return nil, errors.Wrap(err, errors.CodeParseFailed, "decode json")
				}
				child, err := decodeJSONValue(dec, "", valTok)
				if err != nil {
					return nil, err
				}
				n.AddChild(child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, errors.Wrap(err, errors.CodeParseFailed, "decode json")
			}
			return n, nil
		}
		return nil, errors.Newf(errors.CodeParseFailed, "unexpected delimiter %q", v.String())
	case string:
		return tree.NewScalar(name, tree.KindString, v), nil
	case json.Number:
		return tree.NewScalar(name, tree.KindNumber, v.String()), nil
	case bool:
		return tree.NewScalar(name, tree.KindBool, strconv.FormatBool(v)), nil
	case nil:
		return tree.NewScalar(name, tree.KindNull, ""), nil
	}
	return nil, errors.Newf(errors.CodeParseFailed, "unexpected token %v", tok)
}

// WriteJSON serializes the tree to path as compact JSON.
func WriteJSON(t *tree.Tree, path string) error {
	data := []byte(t.Root.JSON() + "\n")
	if err := util.WriteBytes(path, data); err != nil {
		return errors.Wrapf(err, errors.CodeWriteFailed, "write %s", path)
	}
	return nil
}
