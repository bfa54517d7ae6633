// Package media keeps track of screenshot files once they land on shared storage.
package media

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mobile-next/nativescreenshot/utils"
)

// Entry describes one indexed file.
type Entry struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Path      string    `json:"path" gorm:"index;not null"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// Sink receives every new entry.
type Sink interface {
	Add(entry Entry) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(entry Entry) error

func (f SinkFunc) Add(entry Entry) error {
	return f(entry)
}

// Notifier fans a new file out to all sinks. It never fails the caller.
type Notifier struct {
	Sinks []Sink
	now   func() time.Time
}

func NewNotifier(sinks ...Sink) *Notifier {
	return &Notifier{Sinks: sinks, now: time.Now}
}

// AddSink registers another sink. Call it before the notifier is handed to the bridge.
func (n *Notifier) AddSink(sink Sink) {
	n.Sinks = append(n.Sinks, sink)
}

func (n *Notifier) NotifyNewFile(path string) {
	entry := Entry{
		ID:        uuid.New().String(),
		Path:      path,
		Name:      filepath.Base(path),
		CreatedAt: n.now(),
	}

	if info, err := os.Stat(path); err == nil {
		entry.Size = info.Size()
	} else {
		utils.Verbose("media scan: cannot stat %s: %v", path, err)
	}

	for _, sink := range n.Sinks {
		if err := sink.Add(entry); err != nil {
			utils.Error("Error indexing %s: %v", path, err)
		}
	}

	utils.Verbose("media scan: indexed %s", path)
}
