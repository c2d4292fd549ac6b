package core

import (
	"strings"

	"github.com/google/uuid"
)

// Kind identifies what a transport is asking for.
type Kind string

const (
	KindStart         Kind = "start"
	KindHelp          Kind = "help"
	KindChangeDir     Kind = "cd"
	KindHome          Kind = "home"
	KindPwd           Kind = "pwd"
	KindStatus        Kind = "status"
	KindDevice        Kind = "device"
	KindListBookmarks Kind = "bookmark"
	KindRawCommand    Kind = "raw"
	KindButtonPress   Kind = "button"
)

// Event is one inbound request from a transport.
type Event struct {
	ID        string
	Principal string
	Kind      Kind
	// Args holds the command arguments, the raw shell text for KindRawCommand,
	// or the action tag for KindButtonPress.
	Args string
}

// NewEvent creates an event with a fresh request id.
func NewEvent(principal string, kind Kind, args string) Event {
	return Event{
		ID:        uuid.New().String(),
		Principal: principal,
		Kind:      kind,
		Args:      args,
	}
}

// Verb is one of the bookmark actions a reply can offer.
type Verb string

const (
	VerbBookmarkAdd    Verb = "bookmark_add"
	VerbBookmarkJump   Verb = "bookmark_cd"
	VerbBookmarkRemove Verb = "bookmark_rm"
)

// Action is an affordance attached to a reply, e.g. a button.
type Action struct {
	Verb Verb
	Path string
}

// Tag encodes the action as "<verb>:<path>".
func (a Action) Tag() string {
	return string(a.Verb) + ":" + a.Path
}

// ParseAction decodes a tag produced by Action.Tag.
func ParseAction(tag string) (Action, bool) {
	verb, path, ok := strings.Cut(tag, ":")
	if !ok {
		return Action{}, false
	}
	switch Verb(verb) {
	case VerbBookmarkAdd, VerbBookmarkJump, VerbBookmarkRemove:
		return Action{Verb: Verb(verb), Path: path}, true
	}
	return Action{}, false
}

// OfferBookmark returns the single-row action set offering to bookmark path.
func OfferBookmark(path string) [][]Action {
	return [][]Action{{{Verb: VerbBookmarkAdd, Path: path}}}
}

// BookmarkList returns one row per bookmark with a jump and a remove action.
func BookmarkList(entries []string) [][]Action {
	rows := make([][]Action, 0, len(entries))
	for _, p := range entries {
		rows = append(rows, []Action{
			{Verb: VerbBookmarkJump, Path: p},
			{Verb: VerbBookmarkRemove, Path: p},
		})
	}
	return rows
}

// Reply is the render-agnostic result of handling an event.
type Reply struct {
	Text string
	// Output marks Text as raw command output.
	Output bool
	// Silent replies are not rendered at all.
	Silent bool
	// Edit asks the transport to replace the message a button belonged to.
	Edit    bool
	Actions [][]Action
	// Err is the failure behind the reply, if any.
	Err error
}
