package routing

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ErrUnknownAction is returned for actions absent from the table,
// including the empty action.
var ErrUnknownAction = errors.New("unknown action")

// Immutable action -> upstream URL map, built once at startup. Targets
// may be absolute URLs or paths resolved against a base, because
// deployments differ (fully-qualified webhook URLs vs a shared host).
type Table struct {
	targets map[string]string
}

func NewTable(baseURL string, routes map[string]string) (*Table, error) {
	var base *url.URL
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid upstream base URL %q: %w", baseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("upstream base URL %q must be absolute", baseURL)
		}
		base = parsed
	}

	targets := make(map[string]string, len(routes))
	for action, target := range routes {
		if action == "" {
			return nil, errors.New("route with empty action name")
		}

		resolved, err := resolve(base, target)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", action, err)
		}
		targets[action] = resolved
	}

	return &Table{targets: targets}, nil
}

// Resolve maps an action name to its upstream URL. Unknown actions are
// rejected, never silently forwarded anywhere.
func (t *Table) Resolve(action string) (string, error) {
	target, ok := t.targets[action]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return target, nil
}

// Actions returns the configured action names, sorted.
func (t *Table) Actions() []string {
	actions := make([]string, 0, len(t.targets))
	for action := range t.targets {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

func resolve(base *url.URL, target string) (string, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target %q: %w", target, err)
	}

	if parsed.Scheme != "" && parsed.Host != "" {
		return parsed.String(), nil
	}

	if base == nil {
		return "", fmt.Errorf("relative target %q requires a base URL", target)
	}

	if !strings.HasPrefix(parsed.Path, "/") {
		parsed.Path = "/" + parsed.Path
	}

	return base.ResolveReference(parsed).String(), nil
}
