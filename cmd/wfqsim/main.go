// Command wfqsim replays a packet arrival trace through a weighted fair
// queueing scheduler and prints the resulting dispatch schedule.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"

	"github.com/nt-sched/wfq"
	"github.com/nt-sched/wfq/internal/metrics"
	"github.com/nt-sched/wfq/internal/pcaptrace"
	"github.com/nt-sched/wfq/internal/traceio"
)

// exit codes, per spec.md §7.
const (
	exitOK            = 0
	exitMalformedData = 1
	exitIOError       = 2
)

func main() {
	inputPath := flag.String("input", "-", "input trace file, or - for stdin")
	outputPath := flag.String("output", "-", "output schedule file, or - for stdout")
	pcapPath := flag.String("pcap", "", "optional path to write a synthetic PCAP trace of the schedule")
	metricsAddr := flag.String("metrics-addr", "", "optional address to serve Prometheus metrics on, e.g. :9100")
	maxFlows := flag.Int("max-flows", wfq.DefaultMaxFlows, "maximum number of distinct flows to track")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	runID := xid.New().String()
	logger := newApexLogger(log.Fields{"run": runID})
	log.WithField("run", runID).Info("wfqsim: starting")

	os.Exit(run(runOptions{
		inputPath:   *inputPath,
		outputPath:  *outputPath,
		pcapPath:    *pcapPath,
		metricsAddr: *metricsAddr,
		maxFlows:    *maxFlows,
		runID:       runID,
		logger:      logger,
	}))
}

type runOptions struct {
	inputPath   string
	outputPath  string
	pcapPath    string
	metricsAddr string
	maxFlows    int
	runID       string
	logger      wfq.Logger
}

func run(opts runOptions) int {
	in, closeIn, err := openInput(opts.inputPath)
	if err != nil {
		log.WithError(err).Error("wfqsim: cannot open input")
		return exitIOError
	}
	defer closeIn()

	out, closeOut, err := createOutput(opts.outputPath)
	if err != nil {
		log.WithError(err).Error("wfqsim: cannot open output")
		return exitIOError
	}
	defer closeOut()

	var pcapWriter *pcaptrace.Writer
	if opts.pcapPath != "" {
		f, err := os.Create(opts.pcapPath)
		if err != nil {
			log.WithError(err).Error("wfqsim: cannot create pcap file")
			return exitIOError
		}
		pcapWriter, err = pcaptrace.NewWriter(f, time.Unix(0, 0).UTC())
		if err != nil {
			f.Close()
			log.WithError(err).Error("wfqsim: cannot initialize pcap writer")
			return exitIOError
		}
		defer pcapWriter.Close()
	}

	var collector *metrics.Collector
	if opts.metricsAddr != "" {
		collector = metrics.NewCollector(prometheus.Labels{"run": opts.runID})
		reg := prometheus.NewRegistry()
		if err := reg.Register(collector); err != nil {
			log.WithError(err).Error("wfqsim: cannot register metrics collector")
			return exitIOError
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: opts.metricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Warn("wfqsim: metrics server stopped")
			}
		}()
		defer server.Close()
	}

	scheduler := wfq.NewScheduler(&wfq.SchedulerConfig{
		MaxFlows: opts.maxFlows,
		Logger:   opts.logger,
	})

	reader := traceio.NewReader(in)
	writer := traceio.NewWriter(out)

	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		var parseErr *traceio.ParseError
		if errors.As(err, &parseErr) {
			log.WithError(err).Error("wfqsim: malformed input")
			return exitMalformedData
		}
		if err != nil {
			log.WithError(err).Error("wfqsim: input read error")
			return exitIOError
		}
		scheduler.Arrive(rec)
	}

	var dispatched int64
	emitErr := scheduler.Run(func(d wfq.Dispatch) error {
		if err := writer.WriteDispatch(d); err != nil {
			return fmt.Errorf("wfqsim: output write error: %w", err)
		}
		if pcapWriter != nil {
			if err := pcapWriter.WriteDispatch(d); err != nil {
				return fmt.Errorf("wfqsim: pcap write error: %w", err)
			}
		}
		dispatched++
		if collector != nil {
			collector.UpdateFromScheduler(scheduler, dispatched)
		}
		return nil
	})
	if emitErr != nil {
		switch {
		case errors.Is(emitErr, wfq.ErrTooManyFlows), errors.Is(emitErr, wfq.ErrNegativeWeight):
			log.WithError(emitErr).Error("wfqsim: rejected input")
			return exitMalformedData
		case errors.Is(emitErr, wfq.ErrImpossibleState):
			log.WithError(emitErr).Error("wfqsim: internal invariant violated")
			return exitIOError
		default:
			log.WithError(emitErr).Error("wfqsim: output error")
			return exitIOError
		}
	}

	log.WithFields(log.Fields{
		"flows":      scheduler.FlowCount(),
		"dispatched": dispatched,
	}).Info("wfqsim: done")
	return exitOK
}

func openInput(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func createOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
