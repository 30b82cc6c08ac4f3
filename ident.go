package edn

import (
	"bytes"

	"github.com/KimNorgaard/go-edn/internal/scan"
)

// splitName splits an identifier body at its first '/'. A lone "/" is a
// name, and "ns//" has the name "/". It returns a non-empty message when
// the body is malformed.
func splitName(body []byte) (ns, name []byte, msg string) {
	if len(body) == 0 {
		return nil, nil, "empty name"
	}
	if bytes.Contains(body, []byte("::")) {
		return nil, nil, "'::' in identifier"
	}
	if len(body) == 1 && body[0] == '/' {
		return nil, body, ""
	}
	slash := bytes.IndexByte(body, '/')
	if slash < 0 {
		return nil, body, ""
	}
	ns, name = body[:slash], body[slash+1:]
	switch {
	case len(ns) == 0:
		return nil, nil, "empty namespace"
	case len(name) == 0:
		return nil, nil, "empty name after '/'"
	case len(name) > 1 && bytes.IndexByte(name, '/') >= 0:
		return nil, nil, "more than one '/' in identifier"
	}
	return ns, name, ""
}

// validStart reports whether the first bytes of a symbol body are allowed:
// no leading digit, and no digit after a leading sign or '.'.
func validStart(body []byte) bool {
	c := body[0]
	if c == ':' || scan.IsDigit(c) || scan.ClassOf(c) != scan.Ident && scan.ClassOf(c) != scan.Sign {
		return false
	}
	if (c == '+' || c == '-' || c == '.') && len(body) > 1 && scan.IsDigit(body[1]) {
		return false
	}
	return true
}

// validTag reports whether tag can follow '#': a symbol starting with a
// letter.
func validTag(tag []byte) bool {
	if len(tag) == 0 || !isAlpha(tag[0]) {
		return false
	}
	if scan.Default.IndexDelimiter(tag) != len(tag) {
		return false
	}
	_, _, msg := splitName(tag)
	return msg == ""
}

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c >= 0x80
}

// readIdent reads a symbol, keyword or reserved word at r.pos.
func (r *reader) readIdent() (Value, error) {
	start := r.pos
	end := start + scan.Default.IndexDelimiter(r.src[start:])
	tok := r.src[start:end]
	r.pos = end

	if tok[0] == ':' {
		if len(tok) > 1 && tok[1] == ':' {
			return nil, r.errorAt(ErrInvalidSyntax, start, "invalid keyword %q", tok)
		}
		ns, name, msg := splitName(tok[1:])
		if msg != "" {
			return nil, r.errorAt(ErrInvalidSyntax, start, "invalid keyword %q: %s", tok, msg)
		}
		k := r.a.newKeyword(ns, name)
		if k == nil {
			return nil, r.oom(start)
		}
		return k, nil
	}

	switch string(tok) {
	case "nil":
		return Nil, nil
	case "true":
		return True, nil
	case "false":
		return False, nil
	}
	if !validStart(tok) {
		return nil, r.errorAt(ErrInvalidSyntax, start, "invalid symbol %q", tok)
	}
	ns, name, msg := splitName(tok)
	if msg != "" {
		return nil, r.errorAt(ErrInvalidSyntax, start, "invalid symbol %q: %s", tok, msg)
	}
	s := r.a.newSymbol(ns, name)
	if s == nil {
		return nil, r.oom(start)
	}
	return s, nil
}
