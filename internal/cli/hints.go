// Package cli provides actionable next-step hints for CLI commands.
package cli

import (
	"fmt"
	"io"
)

// HintContext provides context for generating relevant next steps.
type HintContext struct {
	// Action is the command that was executed (e.g., "seed", "list", "cancel").
	Action string

	// OrderNo is the order involved (if any).
	OrderNo string

	// WaybillType is the category code the command ran against.
	WaybillType string

	// Page is the last page fetched (for list).
	Page int

	// HasMore reports whether further pages exist (for list).
	HasMore bool
}

// PrintNextSteps prints contextual next steps after a successful command.
// Does nothing if JSON output is enabled.
func PrintNextSteps(out io.Writer, ctx HintContext) {
	if IsJSONOutput() || IsJSONLOutput() {
		return
	}

	hints := generateHints(ctx)
	if len(hints) == 0 {
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	for _, hint := range hints {
		fmt.Fprintf(out, "  %s\n", hint)
	}
}

func generateHints(ctx HintContext) []string {
	switch ctx.Action {
	case "seed":
		return []string{
			"waybill list --type ship",
			"waybill   # open the interactive page",
		}
	case "list":
		if !ctx.HasMore {
			return nil
		}
		return []string{fmt.Sprintf("waybill list --type %s --page %d", ctx.WaybillType, ctx.Page+1)}
	case "cancel":
		return []string{"waybill list --type ship --order-type 1"}
	case "query":
		if ctx.OrderNo == "" {
			return nil
		}
		return []string{"waybill cancel " + ctx.OrderNo}
	default:
		return nil
	}
}
