package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// resolveJourneyID accepts a full journey ID or a unique prefix of one.
func resolveJourneyID(ctx context.Context, app *App, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("journey ID is required")
	}

	journeys, err := app.Journeys.List(ctx, "")
	if err != nil {
		return "", err
	}

	for _, j := range journeys {
		if j.ID == input {
			return j.ID, nil
		}
	}

	var matches []string
	for _, j := range journeys {
		if strings.HasPrefix(j.ID, input) {
			matches = append(matches, j.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("journey not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("journey ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveRef accepts a 1-based position or an ID prefix and returns the
// matching ID from ids. kind names the item in errors.
func resolveRef(kind string, ids []string, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%s is required", kind)
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(ids) {
			return "", fmt.Errorf("%s %d is out of range (1-%d)", kind, n, len(ids))
		}
		return ids[n-1], nil
	}
	var match string
	for _, id := range ids {
		if strings.HasPrefix(id, ref) {
			if match != "" {
				return "", fmt.Errorf("%s ID prefix %q is ambiguous", kind, ref)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("%s not found: %q", kind, ref)
	}
	return match, nil
}
