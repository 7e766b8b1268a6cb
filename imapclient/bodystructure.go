package imapclient

import (
	"fmt"
	"strings"

	"github.com/mailwire/imapflow/imapwire"
)

// parseBodyStructure decodes a BODYSTRUCTURE fetch item into a recursive,
// path-tracked node tree (§4.D.4).
func parseBodyStructure(v imapwire.Attribute) (*BodyStructure, error) {
	return parseBodyStructureNode(v, "")
}

func parseBodyStructureNode(v imapwire.Attribute, path string) (*BodyStructure, error) {
	if v.Kind != imapwire.KindList || len(v.List) == 0 {
		return nil, fmt.Errorf("imapclient: malformed BODYSTRUCTURE")
	}
	items := v.List

	if items[0].Kind == imapwire.KindList {
		return parseMultipartNode(items, path)
	}
	return parseLeafNode(items, path)
}

func parseMultipartNode(items []imapwire.Attribute, path string) (*BodyStructure, error) {
	node := &BodyStructure{Part: path}
	idx, childIdx := 0, 1
	for idx < len(items) && items[idx].Kind == imapwire.KindList {
		child, err := parseBodyStructureNode(items[idx], joinBodyPath(path, childIdx))
		if err == nil {
			node.ChildNodes = append(node.ChildNodes, child)
		}
		idx++
		childIdx++
	}
	if idx < len(items) {
		node.Type = "multipart/" + strings.ToLower(attrString(items[idx]))
		idx++
	}
	if idx < len(items) && items[idx].Kind == imapwire.KindList {
		node.Parameters = parseParamList(items[idx])
		idx++
	}
	parseSharedExtension(node, items, idx)
	return node, nil
}

func parseLeafNode(items []imapwire.Attribute, path string) (*BodyStructure, error) {
	node := &BodyStructure{Part: path}
	idx := 0

	typ := strings.ToLower(attrString(itemAt(items, idx)))
	idx++
	subtype := strings.ToLower(attrString(itemAt(items, idx)))
	idx++
	node.Type = typ + "/" + subtype

	if idx < len(items) && items[idx].Kind == imapwire.KindList {
		node.Parameters = parseParamList(items[idx])
	}
	idx++
	node.ID = attrString(itemAt(items, idx))
	idx++
	node.Description = attrString(itemAt(items, idx))
	idx++
	node.Encoding = strings.ToLower(attrString(itemAt(items, idx)))
	idx++
	if n, ok := itemAt(items, idx).Uint(); ok {
		node.Size = n
	}
	idx++

	switch {
	case typ == "message" && subtype == "rfc822":
		if idx < len(items) {
			if env, err := parseEnvelope(items[idx]); err == nil {
				node.Envelope = env
			}
			idx++
		}
		if idx < len(items) {
			childPath := path
			if childPath == "" {
				childPath = "1"
			}
			if child, err := parseBodyStructureNode(items[idx], childPath); err == nil {
				node.ChildNodes = []*BodyStructure{child}
			}
			idx++
		}
		if idx < len(items) {
			if n, ok := items[idx].Uint(); ok {
				node.LineCount = n
			}
			idx++
		}
	case typ == "text":
		if idx < len(items) {
			if n, ok := items[idx].Uint(); ok {
				node.LineCount = n
			}
			idx++
		}
	}

	if idx < len(items) && !items[idx].IsNil() {
		node.MD5 = attrString(items[idx])
	}
	idx++

	parseSharedExtension(node, items, idx)
	return node, nil
}

// parseSharedExtension decodes the optional disposition/language/location
// extension fields common to both multipart and leaf nodes. The parser is
// tolerant: any missing trailing fields are left unset.
func parseSharedExtension(node *BodyStructure, items []imapwire.Attribute, idx int) {
	if idx < len(items) {
		d := items[idx]
		if d.Kind == imapwire.KindList && len(d.List) >= 1 {
			node.Disposition = strings.ToLower(attrString(d.List[0]))
			if len(d.List) >= 2 {
				node.DispositionParameters = parseParamList(d.List[1])
			}
		}
		idx++
	}
	if idx < len(items) {
		l := items[idx]
		switch {
		case l.Kind == imapwire.KindList:
			langs := make([]string, 0, len(l.List))
			for _, x := range l.List {
				langs = append(langs, strings.ToLower(attrString(x)))
			}
			node.Language = langs
		case !l.IsNil():
			node.Language = []string{strings.ToLower(attrString(l))}
		}
		idx++
	}
	if idx < len(items) {
		node.Location = attrString(items[idx])
	}
}

func parseParamList(v imapwire.Attribute) map[string]string {
	out := map[string]string{}
	if v.Kind != imapwire.KindList {
		return out
	}
	for i := 0; i+1 < len(v.List); i += 2 {
		out[strings.ToLower(attrString(v.List[i]))] = attrString(v.List[i+1])
	}
	return out
}

func itemAt(items []imapwire.Attribute, idx int) imapwire.Attribute {
	if idx < 0 || idx >= len(items) {
		return imapwire.Nil()
	}
	return items[idx]
}
