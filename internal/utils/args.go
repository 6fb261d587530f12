package utils

import "strings"

// NormalizeGCShorthand rewrites the -gc shorthand to --groups, which pflag cannot express
// as a two-letter short flag.
func NormalizeGCShorthand(args []string) []string {
	output := make([]string, 0, len(args))
	for _, original := range args {
		if original == "-gc" {
			output = append(output, "--groups")
			continue
		}
		if strings.HasPrefix(original, "-gc=") {
			output = append(output, "--groups="+original[len("-gc="):])
			continue
		}
		output = append(output, original)
	}
	return output
}

// SplitCommaList flattens repeated and comma-separated flag values, dropping blanks.
func SplitCommaList(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, value := range raw {
		for _, piece := range strings.Split(value, ",") {
			trimmed := strings.TrimSpace(piece)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func ToLowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
