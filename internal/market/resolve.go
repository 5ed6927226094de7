package market

import "strings"

var (
	numericMarkets = []string{"1", "0", "116"}
	alphaMarkets   = []string{"105", "106", "107", "155"}
)

// Resolve turns a user code into the comma-joined secid list sent to the
// provider. A code starting with x/X is passed through without its marker;
// otherwise every plausible market is probed at once: Shanghai, Shenzhen and
// Hong Kong for digit-only codes, the US segments and London for the rest.
func Resolve(code string) string {
	if rest, ok := stripManualMarker(code); ok {
		return rest
	}
	markets := alphaMarkets
	if isDigits(code) {
		markets = numericMarkets
	}
	secids := make([]string, 0, len(markets))
	for _, m := range markets {
		secids = append(secids, m+"."+code)
	}
	return strings.Join(secids, ",")
}

func stripManualMarker(code string) (string, bool) {
	if code == "" {
		return code, false
	}
	if c := code[0]; c == 'x' || c == 'X' {
		return code[1:], true
	}
	return code, false
}

// StripManualMarker removes one leading x/X if present.
func StripManualMarker(code string) string {
	rest, _ := stripManualMarker(code)
	return rest
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
