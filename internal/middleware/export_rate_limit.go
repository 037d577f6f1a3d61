package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== ExportRateLimiter 导出限流器 ====================

// ExportRateLimiter 导出动作限流器
// 防止用户对同一商品狂点导出把 Shopee API 打穿
type ExportRateLimiter struct {
	locks sync.Map // key -> *lockEntry
}

type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalLimiter = &ExportRateLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *ExportRateLimiter {
	return globalLimiter
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时顺带更新最后执行时间
// key: 限流键，如 "export:shopee:23"
func (r *ExportRateLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)
	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的限流
func (r *ExportRateLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ExportKey 生成商品导出限流 Key
func ExportKey(marketplace string, productID int64) string {
	return fmt.Sprintf("export:%s:%d", marketplace, productID)
}

// DefaultExportInterval 同一商品同一市场的导出冷却时间
const DefaultExportInterval = 30 * time.Second
