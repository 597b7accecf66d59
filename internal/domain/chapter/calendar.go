package chapter

import (
	"fmt"
	"net/url"
	"strings"
)

const calendarBaseURL = "https://www.google.com/calendar/render"

// CalendarURL builds a calendar event template carrying the chapter's consent
// status and checklist.
func CalendarURL(c Chapter) string {
	var tasks []string
	for _, m := range c.Milestones {
		mark := "⭕"
		if m.Done {
			mark = "✅"
		}
		tasks = append(tasks, fmt.Sprintf("%s %s", mark, m.Text))
	}
	taskList := "No nodes defined"
	if len(tasks) > 0 {
		taskList = strings.Join(tasks, "\n")
	}

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", "[SYNC-US] "+c.Title)
	q.Set("details", fmt.Sprintf("Status: %s\n\nTasks:\n%s", c.ConsentStatus, taskList))
	return calendarBaseURL + "?" + q.Encode()
}
