package devcontainer

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Command is a lifecycle command in one of the three schema forms:
//
//	string form: run through the shell ("/bin/sh -c ...")
//	array form:  exec'd directly without a shell
//	object form: named commands, run in parallel
//
// Exactly one of Shell, Args, or Named is populated.
type Command struct {
	// Shell is the string form.
	Shell string

	// Args is the array form.
	Args []string

	// Named is the object form. Values are themselves string- or
	// array-form commands.
	Named map[string]Command
}

// IsZero reports whether no form is populated.
func (c *Command) IsZero() bool {
	return c == nil || (c.Shell == "" && len(c.Args) == 0 && len(c.Named) == 0)
}

// UnmarshalJSON implements json.Unmarshaler for the three forms.
func (c *Command) UnmarshalJSON(data []byte) error {
	var shell string
	if err := json.Unmarshal(data, &shell); err == nil {
		c.Shell = shell
		return nil
	}

	var args []string
	if err := json.Unmarshal(data, &args); err == nil {
		c.Args = args
		return nil
	}

	var named map[string]json.RawMessage
	if err := json.Unmarshal(data, &named); err != nil {
		return fmt.Errorf("expected string, array, or object command")
	}

	c.Named = make(map[string]Command, len(named))
	for name, raw := range named {
		var sub Command
		if err := json.Unmarshal(raw, &sub); err != nil {
			return fmt.Errorf("command %q: %w", name, err)
		}
		if len(sub.Named) > 0 {
			return fmt.Errorf("command %q: object commands cannot nest", name)
		}
		c.Named[name] = sub
	}
	return nil
}

// MarshalJSON writes the command back in its original form.
func (c Command) MarshalJSON() ([]byte, error) {
	switch {
	case len(c.Named) > 0:
		out := make(map[string]Command, len(c.Named))
		for name, sub := range c.Named {
			out[name] = sub
		}
		return json.Marshal(out)
	case len(c.Args) > 0:
		return json.Marshal(c.Args)
	default:
		return json.Marshal(c.Shell)
	}
}

// Argv returns the command as an argv slice for execution. String-form
// commands go through the shell. Object-form commands have no single
// argv; callers iterate Named instead.
func (c Command) Argv() []string {
	if len(c.Args) > 0 {
		return c.Args
	}
	if c.Shell != "" {
		return []string{"/bin/sh", "-c", c.Shell}
	}
	return nil
}

// NamedOrder returns the object-form command names sorted, so parallel
// launches and log output are deterministic.
func (c Command) NamedOrder() []string {
	names := make([]string, 0, len(c.Named))
	for name := range c.Named {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String renders a short human-readable form for logs.
func (c Command) String() string {
	switch {
	case len(c.Named) > 0:
		return fmt.Sprintf("%d parallel commands", len(c.Named))
	case len(c.Args) > 0:
		return fmt.Sprintf("%v", c.Args)
	default:
		return c.Shell
	}
}
