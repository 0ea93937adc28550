package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	pkgerrors "github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/errors"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &Client{rdb: rdb, logger: zap.NewNop()}, mr
}

func TestAcquireJobLock_Exclusive(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	release, err := c.AcquireJobLock(ctx, "slots", "job-1", time.Minute)
	if err != nil {
		t.Fatalf("首次加锁应成功: %v", err)
	}

	if _, err := c.AcquireJobLock(ctx, "slots", "job-1", time.Minute); !errors.Is(err, pkgerrors.ErrLockNotAcquired) {
		t.Errorf("重复加锁期望 ErrLockNotAcquired，实际: %v", err)
	}

	// 不同项目互不影响
	releaseOther, err := c.AcquireJobLock(ctx, "slots", "job-2", time.Minute)
	if err != nil {
		t.Fatalf("其他项目加锁应成功: %v", err)
	}
	releaseOther()

	release()
	release2, err := c.AcquireJobLock(ctx, "slots", "job-1", time.Minute)
	if err != nil {
		t.Fatalf("释放后重新加锁应成功: %v", err)
	}
	release2()
}

func TestAcquireJobLock_ReleaseDoesNotDropForeignLock(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	release, err := c.AcquireJobLock(ctx, "slots", "job-1", time.Second)
	if err != nil {
		t.Fatalf("加锁应成功: %v", err)
	}

	// 锁过期后被其他持有者获取
	mr.FastForward(2 * time.Second)
	if _, err := c.AcquireJobLock(ctx, "slots", "job-1", time.Minute); err != nil {
		t.Fatalf("过期后加锁应成功: %v", err)
	}

	release()
	if !mr.Exists(jobLockPrefix + "slots:job-1") {
		t.Error("旧持有者释放时不应删除新持有者的锁")
	}
}

func TestCheckRateLimit(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := c.CheckRateLimit(ctx, "rate_limit:test", 3, time.Minute)
		if err != nil {
			t.Fatalf("限流计数应成功: %v", err)
		}
		if !allowed {
			t.Fatalf("第 %d 次请求应放行", i+1)
		}
	}

	allowed, err := c.CheckRateLimit(ctx, "rate_limit:test", 3, time.Minute)
	if err != nil {
		t.Fatalf("限流计数应成功: %v", err)
	}
	if allowed {
		t.Error("超过上限的请求应被拒绝")
	}

	// 不同 key 独立计数
	if allowed, _ := c.CheckRateLimit(ctx, "rate_limit:other", 3, time.Minute); !allowed {
		t.Error("其他 key 的请求应放行")
	}
}
