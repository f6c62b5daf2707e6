package scanner

// evaluateRules runs response against a probe's match rules in declaration
// order. A hard match short-circuits and wins outright. A soft match is
// only provisional: a later soft match overwrites an earlier one, and the
// sentinel service name "unknown" is never recorded as a soft match at all
// — it exists in the nmap dialect purely to mark "matched something, but
// don't commit to a name", which this evaluator treats as no match.
func evaluateRules(rules []ServiceProbeMatchRule, response []byte) (uint16, bool) {
	var soft uint16
	haveSoft := false

	for _, rule := range rules {
		if !IsMatch(rule.Pattern, response) {
			continue
		}
		if !rule.IsSoftMatch {
			return rule.ServiceNameIndex, true
		}
		if ServiceName(rule.ServiceNameIndex) == "unknown" {
			continue
		}
		soft = rule.ServiceNameIndex
		haveSoft = true
	}

	return soft, haveSoft
}
