package core

// Character codes used by the lexers.
const (
	CharEOF       rune = 0
	CharTAB       rune = 9
	CharLF        rune = 10
	CharVTAB      rune = 11
	CharFF        rune = 12
	CharCR        rune = 13
	CharSPACE     rune = 32
	CharBANG      rune = 33
	CharDQ        rune = 34
	CharHASH      rune = 35
	CharDollar    rune = 36
	CharPERCENT   rune = 37
	CharAMPERSAND rune = 38
	CharSQ        rune = 39
	CharLPAREN    rune = 40
	CharRPAREN    rune = 41
	CharSTAR      rune = 42
	CharPLUS      rune = 43
	CharCOMMA     rune = 44
	CharMINUS     rune = 45
	CharPERIOD    rune = 46
	CharSLASH     rune = 47
	CharCOLON     rune = 58
	CharSEMICOLON rune = 59
	CharLT        rune = 60
	CharEQ        rune = 61
	CharGT        rune = 62
	CharQUESTION  rune = 63

	Char0 rune = 48
	Char9 rune = 57

	CharA rune = 65
	CharE rune = 69
	CharZ rune = 90

	CharLBRACKET   rune = 91
	CharBACKSLASH  rune = 92
	CharRBRACKET   rune = 93
	CharCARET      rune = 94
	CharUnderscore rune = 95
	CharBT         rune = 96

	CharLowerA rune = 97
	CharLowerE rune = 101
	CharLowerF rune = 102
	CharLowerN rune = 110
	CharLowerR rune = 114
	CharLowerT rune = 116
	CharLowerU rune = 117
	CharLowerV rune = 118
	CharLowerZ rune = 122

	CharLBRACE rune = 123
	CharBAR    rune = 124
	CharRBRACE rune = 125
	CharNBSP   rune = 160
)

// IsWhitespace reports whether code is an ASCII control/space character or a
// non-breaking space.
func IsWhitespace(code rune) bool {
	return (code >= CharTAB && code <= CharSPACE) || code == CharNBSP
}

func IsDigit(code rune) bool {
	return Char0 <= code && code <= Char9
}

func IsAsciiLetter(code rune) bool {
	return (code >= CharLowerA && code <= CharLowerZ) || (code >= CharA && code <= CharZ)
}

func IsQuote(code rune) bool {
	return code == CharSQ || code == CharDQ || code == CharBT
}
