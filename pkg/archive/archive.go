// Package archive persists error reports to S3 as JSON lines.
//
// S3Channel implements host.Channel: reports are buffered in memory and
// uploaded in batches, either when MaxBatch is reached or on every
// FlushInterval tick of Run.
//
//	client, err := archive.NewClient(ctx, archive.ClientConfig{Region: "us-east-1"})
//	if err != nil {
//		return err
//	}
//	ch := archive.NewS3Channel(client, archive.Config{Bucket: "my-bucket", Prefix: "faults/"})
//	go ch.Run(ctx)
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vango-dev/faultline/pkg/host"
)

// Defaults for Config.
const (
	DefaultMaxBatch      = 100
	DefaultFlushInterval = 30 * time.Second
)

// ErrNoBucket is returned by Config.Validate when no bucket is set.
var ErrNoBucket = errors.New("archive: bucket is required")

// PutObjectAPI is the subset of *s3.Client used by S3Channel.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config configures an S3Channel.
type Config struct {
	// Bucket is the destination bucket.
	Bucket string

	// Prefix is prepended to every object key (e.g. "faults/").
	Prefix string

	// MaxBatch triggers a flush when this many reports are buffered.
	MaxBatch int

	// FlushInterval is how often Run flushes.
	FlushInterval time.Duration

	// MaxBuffered caps the reports kept while uploads fail; the oldest are
	// dropped first (default: 10 * MaxBatch).
	MaxBuffered int

	// Logger receives upload failures (default: slog.Default()).
	Logger *slog.Logger
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Bucket == "" {
		return ErrNoBucket
	}
	if c.MaxBatch < 0 || c.MaxBuffered < 0 || c.FlushInterval < 0 {
		return fmt.Errorf("archive: negative limit (maxBatch=%d maxBuffered=%d flushInterval=%s)", c.MaxBatch, c.MaxBuffered, c.FlushInterval)
	}
	return nil
}

// S3Channel buffers reports and uploads them to S3.
type S3Channel struct {
	client PutObjectAPI
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	buf     []host.Report
	seq     uint64
	dropped uint64

	full chan struct{}
}

// NewS3Channel creates a channel uploading through client.
func NewS3Channel(client PutObjectAPI, cfg Config) *S3Channel {
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultMaxBatch
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.MaxBuffered < cfg.MaxBatch {
		cfg.MaxBuffered = 10 * cfg.MaxBatch
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Channel{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "archive"),
		now:    time.Now,
		full:   make(chan struct{}, 1),
	}
}

// WriteError implements host.Channel. It never blocks on the network.
func (c *S3Channel) WriteError(r host.Report) {
	c.mu.Lock()
	c.buf = append(c.buf, r)
	full := len(c.buf) >= c.cfg.MaxBatch
	c.mu.Unlock()

	if full {
		select {
		case c.full <- struct{}{}:
		default:
		}
	}
}

// Pending returns the number of buffered reports.
func (c *S3Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buf)
}

// Dropped returns how many reports were discarded because the buffer was
// full while uploads kept failing.
func (c *S3Channel) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Flush uploads all buffered reports as one object. On failure the reports
// are kept for the next attempt.
func (c *S3Channel) Flush(ctx context.Context) error {
	c.mu.Lock()
	batch := c.buf
	c.buf = nil
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, r := range batch {
		if err := enc.Encode(r); err != nil {
			c.requeue(batch)
			return fmt.Errorf("archive: encode report: %w", err)
		}
	}

	key := c.key(seq)
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
		Metadata: map[string]string{
			"report-count": strconv.Itoa(len(batch)),
			"upload-time":  c.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		c.requeue(batch)
		return fmt.Errorf("archive: put %s: %w", key, err)
	}
	return nil
}

// Run flushes on every FlushInterval and whenever a batch fills up, until
// ctx is done. A final flush is attempted on exit.
func (c *S3Channel) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := c.Flush(flushCtx); err != nil {
				c.logger.Error("final flush failed", "error", err, "pending", c.Pending())
			}
			return ctx.Err()
		case <-ticker.C:
		case <-c.full:
		}
		if err := c.Flush(ctx); err != nil {
			c.logger.Warn("flush failed", "error", err, "pending", c.Pending())
		}
	}
}

func (c *S3Channel) requeue(batch []host.Report) {
	c.mu.Lock()
	c.buf = append(batch, c.buf...)
	over := len(c.buf) - c.cfg.MaxBuffered
	if over > 0 {
		c.buf = append([]host.Report(nil), c.buf[over:]...)
		c.dropped += uint64(over)
	}
	total := c.dropped
	c.mu.Unlock()

	if over > 0 {
		c.logger.Warn("archive buffer full, dropped oldest reports", "dropped", over, "dropped_total", total)
	}
}

func (c *S3Channel) key(seq uint64) string {
	ts := c.now().UTC()
	return fmt.Sprintf("%s%s/%s-%06d.jsonl", c.cfg.Prefix, ts.Format("2006/01/02"), ts.Format("150405"), seq)
}
