package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

type fakeNATS struct {
	subjects []string
	payloads [][]byte
	drained  bool
}

func (f *fakeNATS) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeNATS) Drain() error {
	f.drained = true
	return nil
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

var sample = Event{
	Type:     PostCreated,
	ActorID:  "user-1",
	PostID:   "post-1",
	AuthorID: "user-1",
	Time:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
}

func TestNATSPublish(t *testing.T) {
	fake := &fakeNATS{}
	n := &NATS{conn: fake, prefix: "yatube"}
	if err := n.Publish(context.Background(), sample); err != nil {
		t.Fatal(err)
	}
	if len(fake.subjects) != 1 || fake.subjects[0] != "yatube.post.created" {
		t.Fatalf("subjects = %v", fake.subjects)
	}

	var got Event
	if err := json.Unmarshal(fake.payloads[0], &got); err != nil {
		t.Fatal(err)
	}
	if got.PostID != "post-1" || got.Type != PostCreated || !got.Time.Equal(sample.Time) {
		t.Errorf("payload = %+v", got)
	}

	if err := n.Close(); err != nil || !fake.drained {
		t.Errorf("Close: %v drained=%v", err, fake.drained)
	}
}

func TestNATSSubjectWithoutPrefix(t *testing.T) {
	n := &NATS{}
	if s := n.subject(FollowDeleted); s != "follow.deleted" {
		t.Errorf("subject = %q", s)
	}
}

func TestKafkaPublish(t *testing.T) {
	fake := &fakeWriter{}
	k := &Kafka{writer: fake}

	follow := Event{Type: FollowCreated, ActorID: "u1", AuthorID: "u2"}
	for _, e := range []Event{sample, follow} {
		if err := k.Publish(context.Background(), e); err != nil {
			t.Fatal(err)
		}
	}
	if len(fake.msgs) != 2 {
		t.Fatalf("got %d messages", len(fake.msgs))
	}
	if string(fake.msgs[0].Key) != "post-1" || string(fake.msgs[1].Key) != "u2" {
		t.Errorf("keys = %q, %q", fake.msgs[0].Key, fake.msgs[1].Key)
	}
	if h := fake.msgs[1].Headers[0]; h.Key != "type" || string(h.Value) != "follow.created" {
		t.Errorf("header = %+v", h)
	}

	fake.err = errors.New("leader not available")
	if err := k.Publish(context.Background(), sample); err == nil {
		t.Error("expected write error")
	}
}

func TestEventKey(t *testing.T) {
	if k := (Event{ActorID: "a"}).Key(); k != "a" {
		t.Errorf("Key = %q", k)
	}
}
