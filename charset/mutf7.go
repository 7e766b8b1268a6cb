// Package charset holds the small set of text-decoding helpers the core
// treats as external collaborators (§1): modified UTF-7 for mailbox
// names and RFC 2047 encoded-word decoding for envelope fields. Neither
// is part of the protocol state machine; both are consumed by it.
package charset

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/transform"
)

// mutf7Encoding is the modified base64 alphabet RFC 3501 §5.1.3 uses in
// place of standard base64: "," replaces "/", and there is no padding.
var mutf7Encoding = base64.NewEncoding("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+,").WithPadding(base64.NoPadding)

// DecodeMailboxName decodes an IMAP mailbox name encoded in modified
// UTF-7 into a plain Go string.
func DecodeMailboxName(s string) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(s) {
		ch := s[i]
		if ch != '&' {
			out.WriteByte(ch)
			i++
			continue
		}

		end := strings.IndexByte(s[i+1:], '-')
		if end < 0 {
			return "", fmt.Errorf("charset: unterminated modified UTF-7 shift sequence at %d", i)
		}
		end += i + 1

		if end == i+1 {
			// "&-" is the escape for a literal ampersand.
			out.WriteByte('&')
			i = end + 1
			continue
		}

		encoded := s[i+1 : end]
		decoded, err := decodeShiftedRun(encoded)
		if err != nil {
			return "", err
		}
		out.WriteString(decoded)
		i = end + 1
	}
	return out.String(), nil
}

func decodeShiftedRun(encoded string) (string, error) {
	raw, err := mutf7Encoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("charset: invalid modified UTF-7 run %q: %w", encoded, err)
	}
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}
	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
	}
	return string(utf16.Decode(units)), nil
}

// EncodeMailboxName encodes a plain Go string into modified UTF-7.
func EncodeMailboxName(s string) string {
	var out strings.Builder
	var run []uint16

	flush := func() {
		if len(run) == 0 {
			return
		}
		raw := make([]byte, 0, len(run)*2)
		for _, u := range run {
			raw = append(raw, byte(u>>8), byte(u))
		}
		out.WriteByte('&')
		out.WriteString(mutf7Encoding.EncodeToString(raw))
		out.WriteByte('-')
		run = run[:0]
	}

	for _, r := range s {
		if r == '&' {
			flush()
			out.WriteString("&-")
			continue
		}
		if r >= 0x20 && r <= 0x7e {
			flush()
			out.WriteRune(r)
			continue
		}
		run = append(run, utf16.Encode([]rune{r})...)
	}
	flush()
	return out.String()
}

// MUTF7Decoder adapts DecodeMailboxName to the golang.org/x/text/transform
// streaming interface, the shape the rest of the pack's IMAP clients use
// for charset decoders (Options.WordDecoder et al.).
type MUTF7Decoder struct{ transform.NopResetter }

// Transform implements transform.Transformer by buffering the full input
// (mailbox names are short, bounded by IMAP's line length) and decoding
// it in one shot.
func (MUTF7Decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if !atEOF {
		return 0, 0, transform.ErrShortSrc
	}
	decoded, derr := DecodeMailboxName(string(src))
	if derr != nil {
		return 0, 0, derr
	}
	if len(dst) < len(decoded) {
		return 0, 0, transform.ErrShortDst
	}
	n := copy(dst, decoded)
	return n, len(src), nil
}

// DecodeWord decodes RFC 2047 encoded-word text (envelope subject/name
// fields) using the standard library's MIME word decoder.
func DecodeWord(s string) string {
	dec := &mime.WordDecoder{}
	out, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}
