package logger

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"time"
)

// Publisher ships a digest batch to a topic.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type CollectionConfig struct {
	TimeInterval   time.Duration // flush period
	CountThreshold int           // distinct entries that force an early flush
	Topic          string
	Publisher      Publisher
}

// DigestEntry counts repeated occurrences of the same error line.
type DigestEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogCollector folds identical error lines into counted digest entries and
// publishes them periodically.
type LogCollector struct {
	config  *CollectionConfig
	mu      sync.Mutex
	entries map[uint64]*DigestEntry
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	if config.TimeInterval <= 0 {
		config.TimeInterval = 30 * time.Second
	}
	if config.CountThreshold <= 0 {
		config.CountThreshold = 100
	}
	c := &LogCollector{
		config:  config,
		entries: make(map[uint64]*DigestEntry),
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

func (c *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := digestKey(level, message, fields, caller)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		c.entries[key] = &DigestEntry{
			Level: level, Message: message, Fields: fields, Caller: caller,
			Count: 1, FirstSeen: now, LastSeen: now,
		}
	}
	var batch []DigestEntry
	if len(c.entries) >= c.config.CountThreshold {
		batch = c.drainLocked()
	}
	c.mu.Unlock()

	if batch != nil {
		go c.publish(batch)
	}
}

// Pending returns the number of distinct entries waiting for the next flush.
func (c *LogCollector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *LogCollector) loop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.config.TimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.done:
			c.flush()
			return
		}
	}
}

func (c *LogCollector) flush() {
	c.mu.Lock()
	batch := c.drainLocked()
	c.mu.Unlock()
	if len(batch) > 0 {
		c.publish(batch)
	}
}

func (c *LogCollector) drainLocked() []DigestEntry {
	if len(c.entries) == 0 {
		return nil
	}
	out := make([]DigestEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, *e)
	}
	c.entries = make(map[uint64]*DigestEntry)
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func (c *LogCollector) publish(batch []DigestEntry) {
	if c.config.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// nowhere left to report a failure; the next digest carries on
	_ = c.config.Publisher.PublishMessage(ctx, c.config.Topic, batch)
}

func (c *LogCollector) Close() {
	c.once.Do(func() {
		close(c.done)
		c.wg.Wait()
	})
}

func digestKey(level, message string, fields map[string]interface{}, caller string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(level))
	h.Write([]byte{0})
	h.Write([]byte(message))
	h.Write([]byte{0})
	h.Write([]byte(caller))
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b, err := json.Marshal(fields[k])
		if err != nil {
			b = []byte(strconv.Quote(k))
		}
		h.Write([]byte(k))
		h.Write(b)
	}
	return h.Sum64()
}
