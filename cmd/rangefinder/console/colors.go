package console

import "github.com/fatih/color"

var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	White  = color.New(color.FgHiWhite).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// Flag renders a boolean status flag, red when raised.
func Flag(raised bool) string {
	if raised {
		return Red("yes")
	}
	return Green("no")
}

func Health(ok bool) string {
	if ok {
		return Green("yes")
	}
	return Red("no")
}
