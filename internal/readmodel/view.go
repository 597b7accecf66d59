package readmodel

import (
	"time"

	"github.com/rpggio/syncus/internal/domain/chapter"
	"github.com/rpggio/syncus/internal/domain/media"
	"github.com/rpggio/syncus/internal/domain/party"
	"github.com/rpggio/syncus/internal/domain/status"
	"github.com/rpggio/syncus/internal/domain/stream"
)

// View is the read-only state presented to one party.
type View struct {
	Identity      party.Identity    `json:"identity"`
	Loaded        bool              `json:"loaded"`
	MyStatus      status.Value      `json:"my_status"`
	PartnerStatus status.Value      `json:"partner_status"`
	Chapters      []chapter.Chapter `json:"chapters"`
	Active        []chapter.Chapter `json:"active_chapters"`
	Finished      []chapter.Chapter `json:"finished_chapters"`
	Stream        []stream.Entry    `json:"stream"`
	Media         []media.Entry     `json:"media"`
	RefreshedAt   time.Time         `json:"refreshed_at,omitzero"`
}

func derive(id party.Identity, snap Snapshot, loaded bool, tentative *status.Status) View {
	v := View{
		Identity:      id,
		Loaded:        loaded,
		MyStatus:      status.Value{Status: status.Find(snap.Statuses, id.MyID)},
		PartnerStatus: status.Value{Status: status.Find(snap.Statuses, id.PartnerID)},
		Chapters:      snap.Chapters,
		Active:        []chapter.Chapter{},
		Finished:      []chapter.Chapter{},
		Stream:        snap.Stream,
		Media:         media.SortForDisplay(snap.Media),
		RefreshedAt:   snap.RefreshedAt,
	}
	if tentative != nil {
		v.MyStatus = status.Value{Status: *tentative, Tentative: true}
	}

	active, finished := chapter.Split(snap.Chapters)
	if active != nil {
		v.Active = active
	}
	if finished != nil {
		v.Finished = finished
	}
	return v
}

// Chapter returns the chapter with the given id.
func (v View) Chapter(id string) (chapter.Chapter, bool) {
	for _, ch := range v.Chapters {
		if ch.ID == id {
			return ch, true
		}
	}
	return chapter.Chapter{}, false
}
