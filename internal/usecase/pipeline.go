package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"VCScanner/internal/classify"
	"VCScanner/internal/config"
	"VCScanner/internal/domain"
	"VCScanner/internal/parser"
	"VCScanner/internal/ports"
	"VCScanner/internal/source"
)

// ErrNoSources is returned when a scan is requested with no channels
// configured; the scheduler skips the pass and retries on the next tick.
var ErrNoSources = errors.New("no channels configured")

// ScanReport summarizes one full pass across all configured channels.
type ScanReport struct {
	Sources  int
	Failed   int
	Scanned  int
	People   int
	Projects int
}

// PipelineDeps wires all collaborators into the extraction pipeline.
type PipelineDeps struct {
	Registry     *source.Registry
	Detector     *parser.Detector
	Extractor    *parser.Extractor
	Classifier   *classify.Classifier
	Store        ports.RecordStore
	Channels     []config.ChannelConfig
	MessageLimit int
	FetchDelay   time.Duration
	Logger       *zap.Logger
}

// Pipeline implements the message-ingestion workflow: fetch, detect, extract,
// classify, persist.
type Pipeline struct {
	registry   *source.Registry
	detector   *parser.Detector
	extractor  *parser.Extractor
	classifier *classify.Classifier
	store      ports.RecordStore
	channels   []config.ChannelConfig
	limit      int
	fetchDelay time.Duration
	logger     *zap.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		registry:   deps.Registry,
		detector:   deps.Detector,
		extractor:  deps.Extractor,
		classifier: deps.Classifier,
		store:      deps.Store,
		channels:   deps.Channels,
		limit:      deps.MessageLimit,
		fetchDelay: deps.FetchDelay,
		logger:     logger,
	}
}

// Enrich runs the classifier on an extracted record; usable standalone.
func (p *Pipeline) Enrich(rec *domain.Record) *domain.Record {
	return p.classifier.Enrich(rec)
}

// ProcessSource scans one channel on demand and returns the extracted,
// classified, persisted records in message order.
func (p *Pipeline) ProcessSource(ctx context.Context, channel string, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = p.limit
	}
	records, _, err := p.processChannel(ctx, p.channelConfig(channel), limit)
	return records, err
}

// ScanAll runs one pass over every configured channel. A failure in one
// channel is logged and skipped; it never aborts the remaining channels and
// leaves no run-history row for the failed one.
func (p *Pipeline) ScanAll(ctx context.Context) (ScanReport, error) {
	if len(p.channels) == 0 {
		return ScanReport{}, ErrNoSources
	}

	var report ScanReport
	report.Sources = len(p.channels)

	for i, ch := range p.channels {
		if i > 0 && p.fetchDelay > 0 {
			select {
			case <-time.After(p.fetchDelay):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}

		records, scanned, err := p.processChannel(ctx, ch, p.limit)
		if err != nil {
			report.Failed++
			p.logger.Error("channel scan failed", zap.String("channel", ch.Name), zap.Error(err))
			continue
		}

		people, projects := countKinds(records)
		report.Scanned += scanned
		report.People += people
		report.Projects += projects

		entry := domain.RunEntry{
			Source:        ch.Name,
			Scanned:       scanned,
			PeopleFound:   people,
			ProjectsFound: projects,
			ParsedAt:      time.Now(),
		}
		if err := p.store.RecordRun(ctx, entry); err != nil {
			p.logger.Error("record run failed", zap.String("channel", ch.Name), zap.Error(err))
		}
		p.logger.Info("channel scanned",
			zap.String("channel", ch.Name),
			zap.Int("messages", scanned),
			zap.Int("people", people),
			zap.Int("projects", projects))
	}

	return report, nil
}

func (p *Pipeline) processChannel(ctx context.Context, ch config.ChannelConfig, limit int) ([]domain.Record, int, error) {
	src, err := p.registry.Resolve(ch.Strategy)
	if err != nil {
		return nil, 0, err
	}

	messages, err := src.Fetch(ctx, ch.Name, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", ch.Name, err)
	}

	var records []domain.Record
	for _, msg := range messages {
		if msg.Text == "" {
			continue
		}

		sig := p.detector.Detect(msg.Text)
		if !sig.Relevant() {
			continue
		}

		rec := p.extractor.Extract(msg, sig)
		if rec == nil {
			continue
		}
		p.classifier.Enrich(rec)

		if err := p.persist(ctx, rec); err != nil {
			return nil, 0, fmt.Errorf("persist %s/%d: %w", msg.Source, msg.MessageID, err)
		}
		records = append(records, *rec)
	}

	return records, len(messages), nil
}

func (p *Pipeline) persist(ctx context.Context, rec *domain.Record) error {
	if p.store == nil {
		return nil
	}

	var (
		id  int64
		err error
	)
	if rec.Kind == domain.KindProject {
		id, err = p.store.UpsertProject(ctx, rec)
	} else {
		id, err = p.store.UpsertPerson(ctx, rec)
	}
	if err != nil {
		return err
	}
	rec.StoredID = id
	return nil
}

// channelConfig finds the configured strategy for a channel name, defaulting
// to mtproto for ad hoc requests.
func (p *Pipeline) channelConfig(channel string) config.ChannelConfig {
	for _, ch := range p.channels {
		if ch.Name == channel {
			return ch
		}
	}
	return config.ChannelConfig{Name: channel, Strategy: "mtproto"}
}

func countKinds(records []domain.Record) (people, projects int) {
	for _, rec := range records {
		if rec.Kind == domain.KindProject {
			projects++
		} else {
			people++
		}
	}
	return people, projects
}
