package stats

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// PathSeparator joins group names into a path.
	PathSeparator = " / "

	// highestTrackableMillis 是直方图可记录的最大耗时（1 小时）。
	highestTrackableMillis = int64(time.Hour / time.Millisecond)
	significantFigures     = 3
)

// GroupStats 是单个分组的聚合结果。
type GroupStats struct {
	Path      string        `json:"path"`
	Hierarchy []string      `json:"hierarchy"`
	Count     int64         `json:"count"`
	Failures  int64         `json:"failures"`
	Min       time.Duration `json:"min"`
	Max       time.Duration `json:"max"`
	Mean      time.Duration `json:"mean"`
	P50       time.Duration `json:"p50"`
	P95       time.Duration `json:"p95"`
	P99       time.Duration `json:"p99"`
}

// groupData 保存分组的原始数据。
type groupData struct {
	hierarchy []string
	failures  int64
	histogram *hdrhistogram.Histogram
}

// GroupCollector 按分组层级收集耗时，可被多个 VU 并发调用。
type GroupCollector struct {
	groups map[string]*groupData
	mu     sync.Mutex
}

// NewGroupCollector 创建一个新的分组收集器。
func NewGroupCollector() *GroupCollector {
	return &GroupCollector{
		groups: make(map[string]*groupData),
	}
}

// Path 将分组层级拼接为路径。
func Path(hierarchy []string) string {
	return strings.Join(hierarchy, PathSeparator)
}

// Record 记录一次分组执行。耗时以毫秒精度记录，超出范围的值会被截断。
func (c *GroupCollector) Record(hierarchy []string, d time.Duration, failed bool) {
	if len(hierarchy) == 0 {
		return
	}

	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	if ms > highestTrackableMillis {
		ms = highestTrackableMillis
	}

	path := Path(hierarchy)

	c.mu.Lock()
	defer c.mu.Unlock()

	data, exists := c.groups[path]
	if !exists {
		h := make([]string, len(hierarchy))
		copy(h, hierarchy)
		data = &groupData{
			hierarchy: h,
			histogram: hdrhistogram.New(1, highestTrackableMillis, significantFigures),
		}
		c.groups[path] = data
	}

	_ = data.histogram.RecordValue(ms)
	if failed {
		data.failures++
	}
}

// Snapshot 返回按路径排序的所有分组统计。
func (c *GroupCollector) Snapshot() []GroupStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]GroupStats, 0, len(c.groups))
	for path, data := range c.groups {
		out = append(out, data.stats(path))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}

// Get 返回指定路径的分组统计。
func (c *GroupCollector) Get(hierarchy []string) (GroupStats, bool) {
	path := Path(hierarchy)

	c.mu.Lock()
	defer c.mu.Unlock()

	data, exists := c.groups[path]
	if !exists {
		return GroupStats{}, false
	}
	return data.stats(path), true
}

// Reset 清空所有已收集的数据。
func (c *GroupCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.groups = make(map[string]*groupData)
}

func (d *groupData) stats(path string) GroupStats {
	h := d.histogram
	hierarchy := make([]string, len(d.hierarchy))
	copy(hierarchy, d.hierarchy)

	return GroupStats{
		Path:      path,
		Hierarchy: hierarchy,
		Count:     h.TotalCount(),
		Failures:  d.failures,
		Min:       millis(h.Min()),
		Max:       millis(h.Max()),
		Mean:      time.Duration(h.Mean() * float64(time.Millisecond)),
		P50:       millis(h.ValueAtQuantile(50)),
		P95:       millis(h.ValueAtQuantile(95)),
		P99:       millis(h.ValueAtQuantile(99)),
	}
}

func millis(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}
