package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCallbackQueueDefersNestedRequests(t *testing.T) {
	var q CallbackQueue
	var fired []string

	q.Add(func(time.Duration, Frame) {
		fired = append(fired, "first")
		q.Add(func(time.Duration, Frame) { fired = append(fired, "nested") })
	})

	assert.Equal(t, 1, q.Run(0, nil))
	assert.Equal(t, []string{"first"}, fired)
	assert.Equal(t, 1, q.Len())

	assert.Equal(t, 1, q.Run(time.Millisecond, nil))
	assert.Equal(t, []string{"first", "nested"}, fired)
	assert.Equal(t, 0, q.Len())
}

func TestCallbackQueueCancel(t *testing.T) {
	var q CallbackQueue
	ran := false
	id := q.Add(func(time.Duration, Frame) { ran = true })
	assert.NotZero(t, id)

	q.Cancel(id)
	q.Cancel(id + 100)

	assert.Equal(t, 0, q.Run(0, nil))
	assert.False(t, ran)
}

func TestHasFeature(t *testing.T) {
	granted := []Feature{FeatureHitTest, FeatureLocal}
	assert.True(t, HasFeature(granted, FeatureHitTest))
	assert.False(t, HasFeature(granted, FeatureDOMOverlay))
}
