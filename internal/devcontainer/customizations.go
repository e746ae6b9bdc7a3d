package devcontainer

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON splits the vscode block out of the customizations map
// and keeps everything else opaque in Other.
func (c *Customizations) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("expected customizations object: %w", err)
	}

	for tool, body := range raw {
		if tool == "vscode" {
			var vs VSCodeCustomizations
			if err := json.Unmarshal(body, &vs); err != nil {
				return fmt.Errorf("vscode customizations: %w", err)
			}
			c.VSCode = &vs
			continue
		}

		if c.Other == nil {
			c.Other = make(map[string]any)
		}
		var value any
		if err := json.Unmarshal(body, &value); err != nil {
			return fmt.Errorf("customizations %q: %w", tool, err)
		}
		c.Other[tool] = value
	}

	return nil
}

// MarshalJSON reassembles the vscode block and opaque tool blocks.
func (c Customizations) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Other)+1)
	for tool, value := range c.Other {
		out[tool] = value
	}
	if c.VSCode != nil {
		out["vscode"] = c.VSCode
	}
	return json.Marshal(out)
}

// IsZero reports whether no customizations are present.
func (c Customizations) IsZero() bool {
	return c.VSCode == nil && len(c.Other) == 0
}
