package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// docNode is one value of a parsed snapshot, with children kept in document
// order so delta emission follows the order the model wrote fields in.
type docNode struct {
	path      Path
	value     interface{}
	container bool
	children  []*docNode
}

// parseTree decodes a snapshot into an ordered value tree.
func parseTree(data []byte) (*docNode, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	root, err := parseValue(dec, Path{})
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after document")
	}
	return root, nil
}

func parseValue(dec *json.Decoder, path Path) (*docNode, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return &docNode{path: path, value: tok}, nil
	}

	switch delim {
	case '{':
		node := &docNode{path: path, container: true}
		value := map[string]interface{}{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is not a string: %v", keyTok)
			}
			child, err := parseValue(dec, path.Child(Field(key)))
			if err != nil {
				return nil, err
			}
			node.children = append(node.children, child)
			value[key] = child.value
		}
		if _, err := dec.Token(); err != nil { // closing '}'
			return nil, err
		}
		node.value = value
		return node, nil

	case '[':
		node := &docNode{path: path, container: true}
		value := []interface{}{}
		for i := 0; dec.More(); i++ {
			child, err := parseValue(dec, path.Child(Elem(i)))
			if err != nil {
				return nil, err
			}
			node.children = append(node.children, child)
			value = append(value, child.value)
		}
		if _, err := dec.Token(); err != nil { // closing ']'
			return nil, err
		}
		node.value = value
		return node, nil
	}

	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}
