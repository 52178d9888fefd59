package admin

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/conflictgen/internal/models"
	"github.com/iudanet/conflictgen/internal/store"
)

// Sample один замер
type Sample struct {
	Op      string
	Region  string
	Index   int
	Total   int
	Elapsed time.Duration
}

// LatencyStats сводка по серии замеров
type LatencyStats struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P99   time.Duration
}

// LatencyReport результат замера
type LatencyReport struct {
	Region string
	Reads  LatencyStats
	Writes LatencyStats
}

// ProbeLatency выполняет ops чтений (запрос postalcode = 98052 в пределах
// партиции) и ops вставок через хендл h. onSample вызывается после каждой
// операции, может быть nil.
func ProbeLatency(ctx context.Context, h store.Handle, coll models.CollectionRef, ops int, onSample func(Sample), logger *slog.Logger) (*LatencyReport, error) {
	if ops <= 0 {
		return nil, fmt.Errorf("number of operations must be positive, got %d", ops)
	}
	region := h.Region()
	report := &LatencyReport{Region: region}

	// документ, который будут находить чтения
	if _, err := h.Create(ctx, coll, probeRecord(region)); err != nil {
		return nil, fmt.Errorf("failed to insert probe document: %w", err)
	}

	query := store.Query{
		Filters:      map[string]string{"postalcode": probePostalCode},
		PartitionKey: probePostalCode,
		Limit:        1,
	}

	reads := make([]time.Duration, 0, ops)
	for i := 0; i < ops; i++ {
		start := time.Now()
		if _, err := h.Query(ctx, coll, query); err != nil {
			return nil, fmt.Errorf("read %d failed: %w", i, err)
		}
		reads = append(reads, time.Since(start))
		notify(onSample, Sample{Op: "read", Region: region, Index: i, Total: ops, Elapsed: reads[i]})
	}
	report.Reads = Summarize(reads)

	writes := make([]time.Duration, 0, ops)
	for i := 0; i < ops; i++ {
		rec := probeRecord(region)
		start := time.Now()
		if _, err := h.Create(ctx, coll, rec); err != nil {
			return nil, fmt.Errorf("write %d failed: %w", i, err)
		}
		writes = append(writes, time.Since(start))
		notify(onSample, Sample{Op: "write", Region: region, Index: i, Total: ops, Elapsed: writes[i]})
	}
	report.Writes = Summarize(writes)

	logger.Info("Latency probe finished",
		"region", region,
		"ops", ops,
		"read_p50", report.Reads.P50,
		"write_p50", report.Writes.P50)

	return report, nil
}

const probePostalCode = "98052"

func probeRecord(region string) *models.Record {
	return &models.Record{
		ID:            uuid.NewString(),
		Name:          "Scott Guthrie",
		City:          "Redmond",
		PostalCode:    probePostalCode,
		UserDefinedID: 9,
		Region:        region,
	}
}

func notify(fn func(Sample), s Sample) {
	if fn != nil {
		fn(s)
	}
}

// Summarize считает min/max/mean и перцентили методом nearest-rank
func Summarize(samples []time.Duration) LatencyStats {
	if len(samples) == 0 {
		return LatencyStats{}
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	return LatencyStats{
		Count: len(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Mean:  sum / time.Duration(len(sorted)),
		P50:   percentile(sorted, 50),
		P99:   percentile(sorted, 99),
	}
}

func percentile(sorted []time.Duration, p int) time.Duration {
	// nearest-rank: ceil(p/100 * n)
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
