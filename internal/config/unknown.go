package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxLevenshteinDistance is the maximum edit distance for "did you mean?"
// suggestions when unknown config keys are detected.
const maxLevenshteinDistance = 3

// knownKeys lists the valid keys of every config section.
var knownKeys = map[string][]string{
	"auth":     {"client_id", "client_secret", "tenant_id"},
	"drive":    {"drive_id", "path_prefix"},
	"metadata": {"fallback", "file_name", "local_path", "max_size"},
	"server":   {"cors_origins", "listen", "privacy_page", "read_header_timeout", "shutdown_timeout"},
	"network":  {"graph_base_url", "request_timeout", "token_url", "user_agent"},
	"tree":     {"max_depth", "walk_timeout"},
	"logging":  {"log_format", "log_level"},
}

// knownSectionsList is the sorted list of section names, sorted for
// deterministic suggestions when two candidates have the same distance.
var knownSectionsList = func() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}()

// checkUnknownKeys inspects TOML metadata for undecoded keys and returns
// an error with "did you mean?" suggestions for each unknown key. An unknown
// section is reported once, not once per key inside it.
func checkUnknownKeys(md *toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}

	var errs []error

	reportedSections := make(map[string]bool)

	for _, key := range undecoded {
		section := key[0]

		fields, ok := knownKeys[section]
		if !ok || len(key) == 1 {
			if reportedSections[section] {
				continue
			}

			reportedSections[section] = true
			errs = append(errs, unknownKeyError("config section", section, knownSectionsList))

			continue
		}

		errs = append(errs, unknownKeyError("config key", strings.Join(key, "."), prefixed(section, fields)))
	}

	return errors.Join(errs...)
}

// unknownKeyError builds the error for one unknown name, suggesting the
// closest candidate when one is near enough.
func unknownKeyError(what, name string, candidates []string) error {
	if suggestion := closestMatch(name, candidates); suggestion != "" {
		return fmt.Errorf("unknown %s %q, did you mean %q?", what, name, suggestion)
	}

	return fmt.Errorf("unknown %s %q", what, name)
}

func prefixed(section string, fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = section + "." + f
	}

	return out
}

// closestMatch finds the closest known key by Levenshtein distance.
// Returns empty string if no match is within maxLevenshteinDistance.
func closestMatch(unknown string, known []string) string {
	best := ""
	bestDist := maxLevenshteinDistance + 1

	for _, k := range known {
		d := levenshtein(unknown, k)
		if d < bestDist {
			bestDist = d
			best = k
		}
	}

	if bestDist <= maxLevenshteinDistance {
		return best
	}

	return ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}

	if b == "" {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := range len(a) {
		curr[0] = i + 1

		for j := range len(b) {
			cost := 1
			if a[i] == b[j] {
				cost = 0
			}

			curr[j+1] = min(curr[j]+1, prev[j+1]+1, prev[j]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(b)]
}
