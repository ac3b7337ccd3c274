package broadcast_test

import (
	"bidhub/broadcast"
	"context"
	"os"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

// TEST_REDIS_SERVICE, e.g. 127.0.0.1:6379
func TestRedisRelay(t *testing.T) {
	RegisterTestingT(t)

	addr := os.Getenv("TEST_REDIS_SERVICE")
	if addr == "" {
		t.Skip("TEST_REDIS_SERVICE is not set")
	}

	t.Run("should relay pushes into the hub", func(t *testing.T) {
		client, err := broadcast.NewRedisClient(addr, "", 0)
		Expect(err).To(BeNil())
		defer client.Close()

		hub := broadcast.NewHub(8)
		sub := hub.Subscribe("notifications:10")
		defer sub.Close()

		relay := broadcast.NewRedisRelay(client)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- relay.Run(ctx, hub) }()

		Eventually(func() string {
			_ = relay.Push("notifications:10", `{"message":"hi"}`)
			return receive(sub)
		}, 5*time.Second).Should(MatchJSON(`{"message":"hi"}`))

		cancel()
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))
	})
}
