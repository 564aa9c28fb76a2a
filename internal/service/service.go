package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"prabandam/scraper/internal/client"
	"prabandam/scraper/internal/domain"
	"prabandam/scraper/internal/repository"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const progressInterval = 100

// Service drives the scrape: root structure, prabandam discovery, paasuram
// discovery, parallel extraction, output.
type Service struct {
	client     client.UvedaClient
	repository repository.RecordRepository
	maxWorkers int
}

// RunReport summarizes a completed run.
type RunReport struct {
	PrabandamCount int
	PaasuramCount  int
	RowsWritten    int
	Elapsed        time.Duration
}

func NewService(
	client client.UvedaClient,
	repository repository.RecordRepository,
	maxWorkers int,
) *Service {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Service{
		client:     client,
		repository: repository,
		maxWorkers: maxWorkers,
	}
}

// Run executes the full pipeline. A zero result at any discovery checkpoint
// aborts the run before any output is written; individual paasuram failures
// only drop that record.
func (s *Service) Run(ctx context.Context) (*RunReport, error) {
	start := time.Now()

	log.Info("Fetching initial structure...")
	initial := s.client.FetchJSON(ctx, s.client.BuildURL(client.ContentRoot))
	if len(initial) == 0 {
		return nil, fmt.Errorf("failed to fetch initial structure")
	}

	log.Info("Collecting prabandam URLs...")
	paths := s.client.FindURLPaths(initial)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no URL paths found in initial structure")
	}

	prabandamURLs := s.buildPrabandamURLs(paths)
	if len(prabandamURLs) == 0 {
		return nil, fmt.Errorf("no prabandam URLs generated")
	}
	log.Infof("📚 Found %d prabandam pages", len(prabandamURLs))

	log.Info("Analyzing prabandam structure...")
	paasuramURLs := s.collectPaasuramURLs(ctx, prabandamURLs)
	if len(paasuramURLs) == 0 {
		return nil, fmt.Errorf("no paasuram URLs found")
	}
	log.Infof("🎶 Found %d paasurams to download", len(paasuramURLs))

	records := s.extractRecords(ctx, paasuramURLs)
	if len(records) == 0 {
		return nil, fmt.Errorf("no paasuram data collected")
	}

	log.Info("Saving records...")
	rows, err := s.repository.SaveRecords(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to save records: %w", err)
	}

	report := &RunReport{
		PrabandamCount: len(prabandamURLs),
		PaasuramCount:  len(paasuramURLs),
		RowsWritten:    rows,
		Elapsed:        time.Since(start),
	}

	log.Infof("✅ Saved %d paasurams in %s", report.RowsWritten, report.Elapsed.Round(time.Millisecond))
	return report, nil
}

// buildPrabandamURLs maps each discovered path, trailing slashes trimmed, to
// its data endpoint.
func (s *Service) buildPrabandamURLs(paths []string) []string {
	urls := make([]string, 0, len(paths))
	for _, path := range paths {
		path = strings.TrimRight(path, "/")
		if path == "" {
			continue
		}
		urls = append(urls, s.client.BuildURL(path))
	}
	return urls
}

// collectPaasuramURLs runs leaf discovery for each prabandam sequentially.
// A prabandam with no usable structure contributes nothing; it never aborts
// the others.
func (s *Service) collectPaasuramURLs(ctx context.Context, prabandamURLs []string) []string {
	var urls []string
	for _, url := range prabandamURLs {
		urls = append(urls, s.client.DiscoverLeafURLs(ctx, url)...)
	}
	return urls
}

// extractRecords fetches leaf pages with a bounded worker pool, preserving
// discovery order in the result. Failed extractions leave gaps that are
// compacted away.
func (s *Service) extractRecords(ctx context.Context, urls []string) []domain.Paasuram {
	results := make([]*domain.Paasuram, len(urls))

	var done atomic.Int32
	total := len(urls)

	g := new(errgroup.Group)
	g.SetLimit(s.maxWorkers)

	for i, url := range urls {
		g.Go(func() error {
			record, ok := s.client.ExtractPaasuram(ctx, url)
			if ok {
				results[i] = &record
			}

			if n := done.Add(1); n%progressInterval == 0 || int(n) == total {
				log.Infof("⬇️ Downloaded %d/%d paasurams", n, total)
			}
			return nil
		})
	}

	// workers never return errors; failures are dropped per record
	_ = g.Wait()

	records := make([]domain.Paasuram, 0, total)
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	return records
}
