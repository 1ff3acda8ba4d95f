package utils

import "strconv"

// StringToInt parses s as a base-10 int. Anything unparsable, including
// the empty string, comes back as 0; callers treat that as absent and
// apply their own default.
func StringToInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
