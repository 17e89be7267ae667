package config

// FormatRuleID formats a rule identifier based on the given format.
// Falls back to the rule name when the plugin is empty.
func FormatRuleID(format RuleFormat, plugin, rule string) string {
	if plugin == "" {
		return rule
	}

	switch format {
	case RuleFormatName:
		return rule
	case RuleFormatQualified:
		return QualifiedRuleName(plugin, rule)
	default:
		return QualifiedRuleName(plugin, rule)
	}
}
