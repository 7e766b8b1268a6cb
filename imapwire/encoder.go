package imapwire

import (
	"fmt"
	"strings"
)

// EncodeCommand serializes a tagged command into the bytes written to the
// socket, including the trailing CRLF. Strings containing CR or LF are
// sent as literals; all other strings are quoted.
func EncodeCommand(tag string, cmd Command) []byte {
	var b strings.Builder
	b.WriteString(tag)
	b.WriteByte(' ')
	b.WriteString(cmd.Name)
	for _, a := range cmd.Attributes {
		b.WriteByte(' ')
		encodeAttribute(&b, a)
	}
	b.WriteString("\r\n")
	return []byte(b.String())
}

// Encode renders a single attribute the way EncodeCommand would, without
// a surrounding tag/command.
func Encode(a Attribute) string {
	var b strings.Builder
	encodeAttribute(&b, a)
	return b.String()
}

func encodeAttribute(b *strings.Builder, a Attribute) {
	switch a.Kind {
	case KindAtom:
		b.WriteString(a.Value)
		if a.Section != nil {
			b.WriteByte('[')
			encodeList(b, a.Section)
			b.WriteByte(']')
		}
		if a.Partial != nil {
			fmt.Fprintf(b, "<%d.%d>", a.Partial.Offset, a.Partial.Length)
		}
	case KindString:
		encodeString(b, a.Value)
	case KindSequence:
		b.WriteString(a.Value)
	case KindNumber:
		b.WriteString(a.Value)
	case KindNil:
		b.WriteString("NIL")
	case KindList:
		b.WriteByte('(')
		encodeList(b, a.List)
		b.WriteByte(')')
	}
}

func encodeList(b *strings.Builder, items []Attribute) {
	for i, it := range items {
		if i > 0 {
			b.WriteByte(' ')
		}
		encodeAttribute(b, it)
	}
}

// encodeString renders a STRING attribute as a quoted string, or — when
// the value can't be safely quoted (contains CR/LF) — as a literal.
func encodeString(b *strings.Builder, s string) {
	if strings.ContainsAny(s, "\r\n") {
		fmt.Fprintf(b, "{%d}\r\n%s", len(s), s)
		return
	}
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
}

// CanonicalKey lowercases an attribute's atom name and, if present, its
// bracketed section, matching what a FETCH response's item key reduces to
// once re-serialized through the wire codec (§4.D.2). The partial suffix,
// if any, is dropped: it identifies a byte range, not the item kind.
func CanonicalKey(a Attribute) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(a.Value))
	if a.Section != nil {
		b.WriteByte('[')
		encodeLowerList(&b, a.Section)
		b.WriteByte(']')
	}
	return b.String()
}

// MessageKey is CanonicalKey plus the original partial suffix, the form
// used as the key in a parsed Message map (§8 invariant 8).
func MessageKey(a Attribute) string {
	key := CanonicalKey(a)
	if a.Partial != nil {
		key += fmt.Sprintf("<%d.%d>", a.Partial.Offset, a.Partial.Length)
	}
	return key
}

func encodeLowerList(b *strings.Builder, items []Attribute) {
	for i, it := range items {
		if i > 0 {
			b.WriteByte(' ')
		}
		encodeLowerAttribute(b, it)
	}
}

func encodeLowerAttribute(b *strings.Builder, a Attribute) {
	switch a.Kind {
	case KindList:
		b.WriteByte('(')
		encodeLowerList(b, a.List)
		b.WriteByte(')')
	case KindString:
		encodeString(b, a.Value)
	default:
		b.WriteString(strings.ToLower(a.Value))
	}
}
