package limits

import "fmt"

// Describe renders an effective quota as short display strings, one per
// limit kind.
func (e Effective) Describe() []string {
	out := []string{
		fmt.Sprintf("Requests: %d/min (of %d nominal)", e.EffectiveRequests, e.Nominal.RequestsPerMinute),
		fmt.Sprintf("Input tokens: %s/min", formatCount(e.Nominal.InputTokensPerMinute)),
		fmt.Sprintf("Output tokens: %s/min", formatCount(e.Nominal.OutputTokensPerMinute)),
	}
	if e.Nominal.RequestsPerDay > 0 {
		out = append(out, fmt.Sprintf("Requests: %d/day", e.Nominal.RequestsPerDay))
	}
	return out
}

// formatCount renders large token counts with a K/M suffix.
func formatCount(n int64) string {
	switch {
	case n >= 1_000_000 && n%1_000_000 == 0:
		return fmt.Sprintf("%dM", n/1_000_000)
	case n >= 1_000 && n%1_000 == 0:
		return fmt.Sprintf("%dK", n/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
