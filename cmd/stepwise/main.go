package main

import (
	"os"
	"strings"

	"github.com/arditxhaka2000/smart-dynamic-checklist/internal/cli"
)

func isStepID(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "step-") {
		return false
	}
	// Keep it permissive; ids are generated but users may paste variants.
	return len(s) > len("step-")
}

// rewriteDirectStepLookupArgs makes `stepwise <step-id>` work like
// `stepwise steps show <step-id>`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
// before parsing. Persistent flags may come first (`stepwise --dir ... <id>`),
// so we look for the first positional token, not just argv[1].
func rewriteDirectStepLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--workspace": true,
		"--format":    true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	for i := 1; i < len(argv); i++ {
		a := argv[i]
		if strings.HasPrefix(a, "--") {
			if eq := strings.IndexByte(a, '='); eq >= 0 {
				a = a[:eq]
			} else if valueFlags[a] {
				i++ // skip the flag's value
			}
			if valueFlags[a] || boolFlags[a] {
				continue
			}
			// Unknown flag: skip the token only, never its value, so we
			// cannot accidentally consume the step id.
			continue
		}

		if isStepID(a) {
			out := make([]string, 0, len(argv)+2)
			out = append(out, argv[:i]...)
			out = append(out, "steps", "show")
			out = append(out, argv[i:]...)
			return out
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectStepLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
