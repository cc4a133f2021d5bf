package zone

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/miekg/dns"
)

var (
	// First line of an SOA record: owner, optional TTL, optional class.
	soaLineRE = regexp.MustCompile(`(?i)^([^\s;]+\s+(?:[0-9]+\s+)?(?:IN\s+)?SOA)\s`)
	originRE  = regexp.MustCompile(`(?i)^\$ORIGIN\s+([^\s;]+)\.\s*(?:;.*)?$`)
)

// Parse builds a ZoneFile from raw zone text. The zone name comes from
// the first $ORIGIN directive before the SOA record if present, otherwise
// from the file name. The serial comes from the first SOA record, which
// may span lines with parenthesis continuation and ; comments.
func Parse(p string, text []byte) (*ZoneFile, error) {
	z := &ZoneFile{Path: p, Text: text}
	z.Origin = originDirective(text)
	if z.Origin != "" {
		z.Name = z.Origin
	} else {
		z.Name = Stem(p)
	}
	if _, ok := dns.IsDomainName(dns.Fqdn(z.Name)); !ok || z.Name == "" {
		return nil, &ParseError{Path: p, Message: "cannot determine a valid zone name"}
	}

	serial, err := soaSerial(p, z.Name, text)
	if err != nil {
		return nil, err
	}
	z.Serial = serial
	return z, nil
}

// originDirective returns the lowercased argument of the first $ORIGIN
// directive appearing before the SOA record, without the trailing dot.
// An $ORIGIN after the SOA renames subsequent records, not the zone.
func originDirective(text []byte) string {
	for _, line := range strings.Split(string(text), "\n") {
		if soaLineRE.MatchString(line) {
			break
		}
		if m := originRE.FindStringSubmatch(line); m != nil {
			return strings.ToLower(m[1])
		}
	}
	return ""
}

// soaSerial extracts the serial of the first SOA record using the full
// zone parser, so continuation lines, comments and directives are all
// handled the same way the server side handles them.
func soaSerial(p, name string, text []byte) (uint32, error) {
	zp := dns.NewZoneParser(bytes.NewReader(text), dns.Fqdn(name), p)
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		if soa, ok := rr.(*dns.SOA); ok {
			return soa.Serial, nil
		}
	}
	if err := zp.Err(); err != nil {
		return 0, &ParseError{Path: p, Message: "malformed zone file", Detail: err.Error()}
	}
	return 0, &ParseError{Path: p, Message: "no SOA record found"}
}

// serialToken locates the byte range of the serial field in the first SOA
// record. The zone parser above carries no source positions, so rewriting
// a serial needs this textual scan. It understands parenthesis
// continuation and ; comments, nothing more.
func serialToken(text []byte) (start, end int, ok bool) {
	lineStart := 0
	for lineStart < len(text) {
		lineEnd := bytes.IndexByte(text[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += lineStart
		}
		if m := soaLineRE.FindSubmatchIndex(text[lineStart:lineEnd]); m != nil {
			return scanSerial(text, lineStart+m[3])
		}
		lineStart = lineEnd + 1
	}
	return 0, 0, false
}

// scanSerial walks tokens after the SOA type field. The serial is the
// third token (after MNAME and RNAME). Outside parentheses the record
// ends at the first newline.
func scanSerial(text []byte, pos int) (start, end int, ok bool) {
	depth := 0
	field := 0
	for pos < len(text) {
		switch c := text[pos]; {
		case c == ';':
			for pos < len(text) && text[pos] != '\n' {
				pos++
			}
		case c == '\n':
			if depth == 0 {
				return 0, 0, false
			}
			pos++
		case c == '(':
			depth++
			pos++
		case c == ')':
			depth--
			pos++
		case c == ' ' || c == '\t' || c == '\r':
			pos++
		default:
			tokStart := pos
			for pos < len(text) && !isTokenEnd(text[pos]) {
				pos++
			}
			field++
			if field == 3 {
				return tokStart, pos, true
			}
		}
	}
	return 0, 0, false
}

func isTokenEnd(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '(', ')', ';':
		return true
	}
	return false
}
