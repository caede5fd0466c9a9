package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui-guide-go/pkg/tasks"
)

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

func TestPublishFeedback(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "ui-guide-feedback"}

	task := tasks.StepFeedbackTask{GuideID: "g1", Step: 2, StepText: "Open settings", Vote: tasks.VoteDown, SubmittedAt: time.Unix(0, 0).UTC()}
	require.NoError(t, p.PublishFeedback(context.Background(), task))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "g1", string(w.msgs[0].Key))
	var got tasks.StepFeedbackTask
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, task, got)
}

func TestPublishFeedbackError(t *testing.T) {
	p := &Producer{writer: &fakeWriter{err: errors.New("no brokers")}, topic: "t"}
	err := p.PublishFeedback(context.Background(), tasks.StepFeedbackTask{GuideID: "g1"})
	assert.ErrorContains(t, err, "no brokers")
}
