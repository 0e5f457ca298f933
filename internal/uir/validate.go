package uir

import "fmt"

// Validate checks the UIR-Req invariants listed in spec §3:
//   - exactly one of data/url on an image part
//   - a tool-role message carries exactly one tool_result part
//   - a tool_result's toolCallId must reference an earlier tool_call
func (r *Request) Validate() error {
	seen := map[string]bool{}
	for mi, m := range r.Messages {
		if m.Role == RoleTool {
			resultParts := 0
			for _, p := range m.Parts {
				if p.Type == PartToolResult {
					resultParts++
				}
			}
			if resultParts != 1 {
				return fmt.Errorf("message[%d]: tool role must carry exactly one tool_result part, got %d", mi, resultParts)
			}
		}
		for pi, p := range m.Parts {
			switch p.Type {
			case PartImage:
				hasData := len(p.Data) > 0
				hasURL := p.URL != ""
				if hasData == hasURL {
					return fmt.Errorf("message[%d].parts[%d]: image part must set exactly one of data/url", mi, pi)
				}
			case PartToolCall:
				seen[p.ToolCallID] = true
			case PartToolResult:
				if p.ToolResultForID != "" && !seen[p.ToolResultForID] {
					return fmt.Errorf("message[%d].parts[%d]: tool_result references unknown tool_call id %q", mi, pi, p.ToolResultForID)
				}
			}
		}
	}
	return nil
}
