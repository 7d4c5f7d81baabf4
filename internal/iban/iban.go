// Package iban validates and formats International Bank Account Numbers.
package iban

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	genericRe = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{1,30}$`)
	trRe      = regexp.MustCompile(`^TR\d{24}$`)
)

// Normalize strips all whitespace and uppercases the input.
func Normalize(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

// Pretty formats a normalized IBAN with a space every 4 characters.
// No validation is performed.
func Pretty(raw string) string {
	s := Normalize(raw)
	if s == "" {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(s); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 4
		if end > len(s) {
			end = len(s)
		}
		b.WriteString(s[i:end])
	}
	return b.String()
}

// Validate reports whether raw is a structurally valid IBAN with a
// correct ISO 7064 mod-97 checksum. Turkish IBANs must be exactly
// "TR" followed by 24 digits; other countries are checked against the
// generic shape (2 letters, 2 digits, 1-30 alphanumerics, total length
// 15-34).
func Validate(raw string) bool {
	n := Normalize(raw)
	if n == "" {
		return false
	}
	if strings.HasPrefix(n, "TR") {
		if !trRe.MatchString(n) || len(n) != 26 {
			return false
		}
		return mod97(n)
	}
	if !genericRe.MatchString(n) || len(n) < 15 || len(n) > 34 {
		return false
	}
	return mod97(n)
}

// mod97 rearranges the IBAN (first 4 chars moved to the end), expands
// letters to two-digit values (A=10 .. Z=35) and reduces the resulting
// number mod 97 in 9-digit chunks, carrying the remainder forward.
func mod97(iban string) bool {
	rearranged := iban[4:] + iban[:4]
	var expanded strings.Builder
	for i := 0; i < len(rearranged); i++ {
		ch := rearranged[i]
		switch {
		case ch >= 'A' && ch <= 'Z':
			expanded.WriteString(strconv.Itoa(int(ch-'A') + 10))
		case ch >= '0' && ch <= '9':
			expanded.WriteByte(ch)
		default:
			return false
		}
	}
	remainder := 0
	str := expanded.String()
	for len(str) > 0 {
		take := 9
		if take > len(str) {
			take = len(str)
		}
		piece := strconv.Itoa(remainder) + str[:take]
		val, err := strconv.ParseInt(piece, 10, 64)
		if err != nil {
			return false
		}
		remainder = int(val % 97)
		str = str[take:]
	}
	return remainder == 1
}
