// Package yaml is the YAML driver. Documents are parsed into yaml.v3 nodes and
// converted to ordered wire values, so mapping order and non-string keys survive.
package yaml

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/internal/tree"
)

// Format is the YAML wire format.
var Format wc.Format = format{}

type format struct{}

func (format) Name() string        { return "yaml" }
func (format) ContentType() string { return "application/yaml" }

func (format) NewDecoder(r io.Reader, opt wc.DecodeOpt) (wc.Decoder, error) {
	v, err := Parse(r, opt)
	if err != nil {
		return nil, err
	}
	return wc.NewValueDecoder(v), nil
}

func (format) Marshal(wire any) ([]byte, error) { return Marshal(wire) }

// Parse reads one YAML document and returns it as a wire value.
func Parse(r io.Reader, opt wc.DecodeOpt) (any, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	c := converter{limits: tree.NewLimits(opt)}
	return c.value(&doc, "", 0)
}

type converter struct {
	limits tree.Limits
}

func (c converter) value(n *yaml.Node, ptr string, depth int) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return c.value(n.Content[0], ptr, depth)
	case yaml.AliasNode:
		if err := c.limits.Enter(ptr, depth+1); err != nil {
			return nil, err
		}
		return c.value(n.Alias, ptr, depth+1)
	case yaml.SequenceNode:
		if err := c.limits.Enter(ptr, depth+1); err != nil {
			return nil, err
		}
		out := make([]any, 0, len(n.Content))
		for i, e := range n.Content {
			v, err := c.value(e, tree.Join(ptr, i), depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		if err := c.limits.Enter(ptr, depth+1); err != nil {
			return nil, err
		}
		keys := c.limits.Keys()
		out := wc.NewMap(len(n.Content) / 2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := c.value(n.Content[i], ptr, depth+1)
			if err != nil {
				return nil, err
			}
			kptr := tree.Join(ptr, k)
			if err := keys.Add(kptr, k); err != nil {
				return nil, err
			}
			v, err := c.value(n.Content[i+1], kptr, depth+1)
			if err != nil {
				return nil, err
			}
			out.Entries = append(out.Entries, wc.Entry{Key: k, Value: v})
		}
		return out, nil
	case yaml.ScalarNode:
		return scalar(n, ptr)
	}
	return nil, fmt.Errorf("yaml: unsupported node kind %v at %s", n.Kind, tree.Pointer(ptr))
}

func scalar(n *yaml.Node, ptr string) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, &wc.InputError{Code: wc.CodeParseError, Pointer: tree.Pointer(ptr), Message: err.Error()}
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return f, nil
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(n.Value)
		if err != nil {
			return nil, &wc.InputError{Code: wc.CodeParseError, Pointer: tree.Pointer(ptr), Message: err.Error()}
		}
		return b, nil
	}
	return n.Value, nil
}

// Marshal renders a wire value as a YAML document, keeping mapping order.
// Non-finite doubles use YAML's .nan and .inf; bytes are tagged !!binary.
func Marshal(wire any) ([]byte, error) {
	n, err := node(wire)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(n)
}

func node(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(x)}, nil
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(x, 10)}, nil
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(x)}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: x}, nil
	case []byte:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!binary", Value: base64.StdEncoding.EncodeToString(x)}, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, e := range x {
			en, err := node(e)
			if err != nil {
				return nil, wc.AtIndex(err, i)
			}
			n.Content = append(n.Content, en)
		}
		return n, nil
	case *wc.Map:
		if x == nil {
			return node(nil)
		}
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range x.Entries {
			kn, err := node(e.Key)
			if err != nil {
				return nil, err
			}
			vn, err := node(e.Value)
			if err != nil {
				return nil, wc.AtPath(err, fmt.Sprint(e.Key))
			}
			n.Content = append(n.Content, kn, vn)
		}
		return n, nil
	}
	w, err := wc.Encode(v)
	if err != nil {
		return nil, err
	}
	return node(w)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// keep the value a float when read back
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			return s
		}
	}
	return s + ".0"
}
