package utils

import "regexp"

// Mobile numbers are accepted in the local 11-digit form with the
// fixed "09" prefix, e.g. 09123456789.
var mobileRegex = regexp.MustCompile(`^09\d{9}$`)

// IsMobilePhone reports whether number is a well-formed local mobile number.
func IsMobilePhone(number string) bool {
	return mobileRegex.MatchString(number)
}
