// Package pages holds the page bodies rendered inside templates.Layout.
package pages

import "strconv"

// Element ids of the JSON script blocks read by the inline page scripts.
const (
	ExaminePayloadID = "examine-payload"
	PostMessageID    = "post-message"
)

func countOf(n int, one, many string) string {
	if n == 1 {
		return strconv.Itoa(n) + " " + one
	}
	return strconv.Itoa(n) + " " + many
}

func statusHeading(status string) string {
	switch status {
	case "success":
		return "Success"
	case "fail":
		return "Something went wrong"
	default:
		return "Status"
	}
}
