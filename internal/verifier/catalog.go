package verifier

// DefaultCatalog returns the built-in scenarios in run order. Later
// scenarios depend on state captured by earlier ones.
func DefaultCatalog() []Scenario {
	var out []Scenario
	out = append(out, coreScenarios()...)
	out = append(out, partyScenarios()...)
	out = append(out, guestbookScenarios()...)
	out = append(out, themeScenarios()...)
	out = append(out, integrationScenarios()...)
	return out
}
