package subscription

import (
	"context"
	"fmt"
)

// Kind identifies what a live feed carries.
type Kind string

const (
	KindStandings Kind = "standings"
	KindTeams     Kind = "teams"
)

// Topic keys a live feed. Round and Group are zero when not applicable.
type Topic struct {
	Kind  Kind
	Round int
	Group int
}

func StandingsTopic(round, group int) Topic {
	return Topic{Kind: KindStandings, Round: round, Group: group}
}

func TeamsTopic() Topic {
	return Topic{Kind: KindTeams}
}

func (t Topic) String() string {
	switch t.Kind {
	case KindStandings:
		return fmt.Sprintf("%s:round=%d:group=%d", t.Kind, t.Round, t.Group)
	default:
		return string(t.Kind)
	}
}

// Publisher delivers payloads to the subscribers of a topic.
type Publisher interface {
	Publish(ctx context.Context, topic Topic, payload any) error
}
