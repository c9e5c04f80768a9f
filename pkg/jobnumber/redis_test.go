package jobnumber

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
)

// memoryRedis answers SETNX and INCR from a map through a go-redis hook, so
// commands never reach the network.
type memoryRedis struct {
	mu   sync.Mutex
	keys map[string]int64
}

func (m *memoryRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, fmt.Errorf("dial %s: not expected in tests", addr)
	}
}

func (m *memoryRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		args := cmd.Args()
		key := fmt.Sprint(args[1])
		switch c := cmd.(type) {
		case *redis.BoolCmd:
			if _, ok := m.keys[key]; ok {
				c.SetVal(false)
				return nil
			}
			v, err := strconv.ParseInt(fmt.Sprint(args[2]), 10, 64)
			if err != nil {
				return err
			}
			m.keys[key] = v
			c.SetVal(true)
		case *redis.IntCmd:
			m.keys[key]++
			c.SetVal(m.keys[key])
		default:
			return fmt.Errorf("unexpected command %s", cmd.Name())
		}
		return nil
	}
}

func (m *memoryRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func newTestRedis(t *testing.T) (*redis.Client, *memoryRedis) {
	t.Helper()
	mem := &memoryRedis{keys: map[string]int64{}}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	rdb.AddHook(mem)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mem
}

func TestRedisCounterStartsAtStart(t *testing.T) {
	rdb, _ := newTestRedis(t)
	ctx := context.Background()

	c, err := NewRedisCounter(ctx, rdb, "oilcall:job_number", 1000)
	if err != nil {
		t.Fatalf("NewRedisCounter() error = %v", err)
	}
	for want := int64(1000); want < 1003; want++ {
		got, err := c.Next(ctx)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if got != want {
			t.Errorf("Next() = %d, want %d", got, want)
		}
	}
}

func TestRedisCounterKeepsExistingValue(t *testing.T) {
	rdb, mem := newTestRedis(t)
	ctx := context.Background()
	mem.keys["oilcall:job_number"] = 4200

	c, err := NewRedisCounter(ctx, rdb, "oilcall:job_number", 1000)
	if err != nil {
		t.Fatalf("NewRedisCounter() error = %v", err)
	}
	if got, _ := c.Next(ctx); got != 4201 {
		t.Errorf("Next() = %d after restart, want 4201", got)
	}
}
