package mcp

import (
	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/domain/stream"
)

type emptyParams struct{}

type IDParams struct {
	ID string `json:"id" jsonschema:"record id"`
}

type SetStatusParams struct {
	Status string `json:"status" jsonschema:"one of STEADY, ALONE, SYNC"`
}

type PostNoteParams struct {
	Text string `json:"text" jsonschema:"note text; a URL makes it a link entry"`
}

type CreateChapterParams struct {
	Title string `json:"title" jsonschema:"chapter title"`
}

type UpdateChapterParams struct {
	ID       string  `json:"id" jsonschema:"chapter id"`
	Title    *string `json:"title,omitempty" jsonschema:"new title"`
	Progress *int    `json:"progress,omitempty" jsonschema:"progress percentage 0-100"`
}

type SetConsentParams struct {
	ID     string `json:"id" jsonschema:"chapter id"`
	Status string `json:"status" jsonschema:"AGREED or ALTERNATIVE"`
	Note   string `json:"note,omitempty" jsonschema:"counter-proposal, required for ALTERNATIVE"`
}

type AddMilestoneParams struct {
	ChapterID string `json:"chapter_id" jsonschema:"chapter id"`
	Text      string `json:"text" jsonschema:"milestone text"`
	Date      string `json:"date,omitempty" jsonschema:"optional date YYYY-MM-DD"`
}

type MilestoneParams struct {
	ChapterID   string `json:"chapter_id" jsonschema:"chapter id"`
	MilestoneID int64  `json:"milestone_id" jsonschema:"milestone id"`
}

type ScheduleMilestoneParams struct {
	ChapterID   string `json:"chapter_id" jsonschema:"chapter id"`
	MilestoneID int64  `json:"milestone_id" jsonschema:"milestone id"`
	Date        string `json:"date" jsonschema:"date YYYY-MM-DD, empty to clear"`
}

type SetFinishedParams struct {
	ID       string `json:"id" jsonschema:"chapter id"`
	Finished bool   `json:"finished" jsonschema:"true to archive, false to reopen"`
}

type DeleteChapterParams struct {
	ID      string `json:"id" jsonschema:"chapter id"`
	Confirm bool   `json:"confirm" jsonschema:"must be true; deletion is irreversible"`
}

type SearchMediaParams struct {
	Query string `json:"query" jsonschema:"title search, at least 3 characters"`
}

type AddMediaParams struct {
	Title      string `json:"title" jsonschema:"title"`
	ExternalID string `json:"external_id" jsonschema:"catalogue id, e.g. an IMDb id"`
	Poster     string `json:"poster,omitempty" jsonschema:"poster URL"`
	Type       string `json:"type,omitempty" jsonschema:"movie or series; defaults to movie"`
}

// ChapterDetail is a chapter with its derived calendar link.
type ChapterDetail struct {
	chapter.Chapter
	CalendarURL string `json:"calendar_url"`
}

type noteResult struct {
	Entry *stream.Entry `json:"entry"`
}

type okResult struct {
	OK bool `json:"ok"`
}

type searchResult struct {
	Candidates []media.Candidate `json:"candidates"`
}
