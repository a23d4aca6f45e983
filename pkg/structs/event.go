package structs

// EventType classifies what triggered a pipeline run.
type EventType string

const (
	// EventPush is a branch push
	EventPush EventType = "push"

	// EventPullRequest is a pull / merge request update
	EventPullRequest EventType = "pull_request"

	// EventRelease is a release lifecycle change (see Event.Action)
	EventRelease EventType = "release"

	// EventSchedule is a cron-fired trigger
	EventSchedule EventType = "schedule"

	// EventDispatch is a manual trigger
	EventDispatch EventType = "workflow_dispatch"
)

// Event is the trigger a run's job predicates are evaluated against.
//
// Events are immutable; the values captured at trigger time apply for the
// whole life of the run.
type Event struct {
	// Type is what kind of trigger this is.
	//
	// Required.
	Type EventType `json:"type"`

	// Branch the event refers to, if any (push, pull_request).
	Branch string `json:"branch,omitempty"`

	// Tag the event refers to, if any (release).
	Tag string `json:"tag,omitempty"`

	// Action qualifies the event, eg. a release event with action "published".
	Action string `json:"action,omitempty"`
}

func ToEventType(s string) EventType {
	switch s {
	case "push":
		return EventPush
	case "pull_request":
		return EventPullRequest
	case "release":
		return EventRelease
	case "schedule":
		return EventSchedule
	case "workflow_dispatch":
		return EventDispatch
	default:
		return ""
	}
}
