package record

// Classify maps a severity token to a Level. Matching is exact and
// case-sensitive; unknown tokens, including the empty string, are Verbose.
func Classify(token string) Level {
	switch token {
	case "INFO":
		return Information
	case "WARNING":
		return Warning
	case "CRITICAL":
		return Critical
	case "ERROR":
		return Error
	default:
		return Verbose
	}
}
