package users

import "regexp"

// thaiMobileRe matches Thai mobile numbers: a leading zero, then 6/8/9,
// then eight more digits.
var thaiMobileRe = regexp.MustCompile(`^0[689][0-9]{8}$`)

// ValidPhone reports whether raw is a well-formed Thai mobile number.
func ValidPhone(raw string) bool {
	return thaiMobileRe.MatchString(raw)
}
