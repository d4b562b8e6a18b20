package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"hecos/internal/model"
)

var (
	// ErrIndexOutOfRange 数据表序号不在目录范围内
	ErrIndexOutOfRange = errors.New("sheet index out of range")
	// ErrClosed 控制器已关闭
	ErrClosed = errors.New("controller closed")
)

// DefaultTickInterval 时钟刷新间隔
const DefaultTickInterval = time.Second

// Fetcher 拉取一个数据源（ingest.Client 实现）
type Fetcher interface {
	Fetch(ctx context.Context, url string) (model.DataSet, error)
}

// Config 控制器配置
type Config struct {
	Sources      []model.SheetSource
	Fetcher      Fetcher
	Logger       *zap.Logger
	TickInterval time.Duration
	Now          func() time.Time
}

// SheetView 某个数据表当前的状态与数据
type SheetView struct {
	Index     int               `json:"index"`
	Source    model.SheetSource `json:"source"`
	State     model.FetchState  `json:"state"`
	HasData   bool              `json:"hasData"`
	Rows      int               `json:"rows"`
	RequestID string            `json:"requestId,omitempty"`
	FetchedAt *time.Time        `json:"fetchedAt,omitempty"`
	Error     string            `json:"error,omitempty"`
	Data      model.DataSet     `json:"-"`
}

// Snapshot 当前选中数据表的视图 + 时钟
type Snapshot struct {
	SheetView
	Clock time.Time `json:"clock"`
}

// Controller 数据表选择控制器
// 持有当前选中序号、按序号缓存的数据集和拉取状态；所有状态由同一把锁保护
type Controller struct {
	sources []model.SheetSource
	fetcher Fetcher
	logger  *zap.Logger
	tick    time.Duration
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	active   int
	cache    map[int]model.DataSet
	inflight map[int]bool
	errs     map[int]error
	clock    time.Time
	subs     map[int]chan Snapshot
	nextSub  int
	started  bool
	closed   bool
}

// New 创建控制器；调用 Start 之前不会启动任何后台任务
func New(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		sources:  cfg.Sources,
		fetcher:  cfg.Fetcher,
		logger:   cfg.Logger,
		tick:     cfg.TickInterval,
		now:      cfg.Now,
		ctx:      ctx,
		cancel:   cancel,
		cache:    make(map[int]model.DataSet),
		inflight: make(map[int]bool),
		errs:     make(map[int]error),
		clock:    cfg.Now(),
		subs:     make(map[int]chan Snapshot),
	}
}

// Sources 数据表目录
func (c *Controller) Sources() []model.SheetSource {
	out := make([]model.SheetSource, len(c.sources))
	copy(out, c.sources)
	return out
}

// Start 启动时钟并拉取初始数据表；parent 取消时等同于 Close 的取消效果
func (c *Controller) Start(parent context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.started {
		return nil
	}
	c.started = true

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		select {
		case <-parent.Done():
			c.cancel()
		case <-c.ctx.Done():
		}
	}()
	go func() {
		defer c.wg.Done()
		c.runClock()
	}()

	if len(c.sources) > 0 {
		c.ensureLocked(c.active, false)
	}
	c.notifyLocked()
	return nil
}

func (c *Controller) runClock() {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			c.clock = c.now()
			c.notifyLocked()
			c.mu.Unlock()
		}
	}
}

// Select 切换当前数据表；已缓存或正在拉取时不会重复请求
func (c *Controller) Select(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked(index); err != nil {
		return err
	}
	if c.active != index {
		c.logger.Info("sheet selected", zap.Int("index", index), zap.String("label", c.sources[index].Label))
	}
	c.active = index
	c.ensureLocked(index, false)
	c.notifyLocked()
	return nil
}

// Refresh 强制重新拉取指定数据表（已有请求在途时忽略）
func (c *Controller) Refresh(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked(index); err != nil {
		return err
	}
	c.ensureLocked(index, true)
	c.notifyLocked()
	return nil
}

func (c *Controller) checkLocked(index int) error {
	if c.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(c.sources) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return nil
}

// ensureLocked 需要时为 index 发起一次拉取；同一序号同时最多一个请求
func (c *Controller) ensureLocked(index int, force bool) {
	if c.inflight[index] {
		return
	}
	if _, cached := c.cache[index]; cached && !force {
		return
	}
	c.inflight[index] = true

	src := c.sources[index]
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ds, err := c.fetcher.Fetch(c.ctx, src.URL)
		c.complete(index, ds, err)
	}()
}

// complete 结果只写入发起时的序号，不影响其他数据表的展示
func (c *Controller) complete(index int, ds model.DataSet, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inflight, index)
	if c.closed || c.ctx.Err() != nil {
		return
	}

	if err != nil {
		c.errs[index] = err
		c.logger.Warn("sheet load failed",
			zap.Int("index", index),
			zap.String("label", c.sources[index].Label),
			zap.Error(err),
		)
	} else {
		c.cache[index] = ds
		delete(c.errs, index)
		c.logger.Info("sheet loaded",
			zap.Int("index", index),
			zap.String("label", c.sources[index].Label),
			zap.Int("rows", len(ds.Rows)),
			zap.String("request_id", ds.RequestID),
		)
	}
	c.notifyLocked()
}

// View 返回指定数据表的状态
func (c *Controller) View(index int) (SheetView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.sources) {
		return SheetView{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return c.viewLocked(index), nil
}

// Snapshot 当前选中数据表的状态
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{Clock: c.clock}
	if len(c.sources) > 0 {
		s.SheetView = c.viewLocked(c.active)
	}
	return s
}

func (c *Controller) viewLocked(index int) SheetView {
	v := SheetView{
		Index:  index,
		Source: c.sources[index],
		State:  model.FetchStateIdle,
	}

	ds, cached := c.cache[index]
	if cached {
		v.HasData = true
		v.Data = ds
		v.Rows = len(ds.Rows)
		v.RequestID = ds.RequestID
		if !ds.FetchedAt.IsZero() {
			at := ds.FetchedAt
			v.FetchedAt = &at
		}
	}
	err := c.errs[index]
	if err != nil {
		v.Error = err.Error()
	}

	switch {
	case c.inflight[index]:
		v.State = model.FetchStateLoading
	case err != nil:
		v.State = model.FetchStateFailed
	case cached:
		v.State = model.FetchStateReady
	}
	return v
}

// Subscribe 订阅状态变化与时钟推送；返回的函数用于取消订阅
// 消费过慢时丢弃旧快照，只保留最新状态
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

func (c *Controller) notifyLocked() {
	if len(c.subs) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// Close 取消时钟与在途请求并等待其退出
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.mu.Unlock()

	c.wg.Wait()
}
