package scan

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts reader activity. A nil *Metrics records nothing.
type Metrics struct {
	TasksOpened    prometheus.Counter
	RowsRead       prometheus.Counter
	DecryptBatches prometheus.Counter
	FilesResolved  prometheus.Counter
	ReadFailures   prometheus.Counter
}

// NewMetrics creates reader counters and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tablescan",
			Subsystem: "scan",
			Name:      name,
			Help:      help,
		})
	}
	m := &Metrics{
		TasksOpened:    counter("tasks_opened_total", "File-read tasks opened by readers."),
		RowsRead:       counter("rows_read_total", "Rows produced by readers."),
		DecryptBatches: counter("decrypt_batches_total", "Batched decryption calls."),
		FilesResolved:  counter("files_resolved_total", "Distinct files resolved for units of work."),
		ReadFailures:   counter("read_failures_total", "Reads that ended with an error."),
	}
	if reg != nil {
		reg.MustRegister(m.TasksOpened, m.RowsRead, m.DecryptBatches, m.FilesResolved, m.ReadFailures)
	}
	return m
}

func (m *Metrics) taskOpened() {
	if m != nil {
		m.TasksOpened.Inc()
	}
}

func (m *Metrics) rowRead() {
	if m != nil {
		m.RowsRead.Inc()
	}
}

func (m *Metrics) resolved(files int) {
	if m != nil {
		m.DecryptBatches.Inc()
		m.FilesResolved.Add(float64(files))
	}
}

func (m *Metrics) failed() {
	if m != nil {
		m.ReadFailures.Inc()
	}
}
