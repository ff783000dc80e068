package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanups(t *testing.T) {
	t.Parallel()

	t.Run("released in reverse order", func(t *testing.T) {
		t.Parallel()
		var (
			order   []string
			release cleanups
		)
		release.add(func() { order = append(order, "pool") })
		release.add(func() { order = append(order, "redis") })

		release.run()
		assert.Equal(t, []string{"redis", "pool"}, order)

		release.run()
		assert.Len(t, order, 2, "a second run is a no-op")
	})

	t.Run("nothing released after hand-off", func(t *testing.T) {
		t.Parallel()
		closed := false
		release := cleanups{}
		release.add(func() { closed = true })

		release = nil
		release.run()
		assert.False(t, closed)
	})
}
