package mirror

import (
	"context"
	"sync"
)

// Memory records mirror writes in process memory. Err, when set, is
// returned by every write instead of recording it.
type Memory struct {
	mu         sync.Mutex
	WorkOrders map[string]WorkOrderSummary
	Reports    map[string]Report
	Err        error
}

func NewMemory() *Memory {
	return &Memory{
		WorkOrders: make(map[string]WorkOrderSummary),
		Reports:    make(map[string]Report),
	}
}

func (m *Memory) UpsertWorkOrder(_ context.Context, s WorkOrderSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.WorkOrders[s.OsNumber] = s
	return nil
}

func (m *Memory) UpsertReport(_ context.Context, r Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Reports[ReportDocID(r.OsNumber, r.ID)] = r
	return nil
}

func (m *Memory) DeleteReport(_ context.Context, osNumber string, reportID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.Reports, ReportDocID(osNumber, reportID))
	return nil
}

func (m *Memory) Close(context.Context) error { return nil }

func (m *Memory) Report(osNumber string, reportID uint) (Report, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Reports[ReportDocID(osNumber, reportID)]
	return r, ok
}
