package triage

import (
	"context"
	"errors"

	"github.com/dkaryakin/inflow/internal/model"
	"github.com/dkaryakin/inflow/internal/reason"
	"github.com/dkaryakin/inflow/internal/store"
)

// fakeProvider is a scriptable reason.Provider for pipeline tests.
type fakeProvider struct {
	selectReply   *reason.SelectReply
	selectErr     error
	mapReply      *reason.MapReply
	mapErr        error
	identifyReply *reason.IdentifyReply
	identifyErr   error
	enrichReply   *reason.EnrichReply
	enrichErr     error

	selectCalls   int
	mapCalls      int
	identifyCalls int
	enrichCalls   int
	lastMapReq    reason.MapRequest
	lastSelectReq reason.SelectRequest
}

func (f *fakeProvider) Name() string                     { return "fake" }
func (f *fakeProvider) IsAvailable(context.Context) bool { return true }

func (f *fakeProvider) Classify(context.Context, reason.ClassifyRequest) (*model.Classification, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeProvider) SelectDestination(_ context.Context, req reason.SelectRequest) (*reason.SelectReply, error) {
	f.selectCalls++
	f.lastSelectReq = req
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.selectReply, nil
}

func (f *fakeProvider) MapFields(_ context.Context, req reason.MapRequest) (*reason.MapReply, error) {
	f.mapCalls++
	f.lastMapReq = req
	if f.mapErr != nil {
		return nil, f.mapErr
	}
	if f.mapReply == nil {
		return &reason.MapReply{}, nil
	}
	return f.mapReply, nil
}

func (f *fakeProvider) IdentifyResearchable(_ context.Context, req reason.IdentifyRequest) (*reason.IdentifyReply, error) {
	f.identifyCalls++
	if f.identifyErr != nil {
		return nil, f.identifyErr
	}
	if f.identifyReply == nil {
		return &reason.IdentifyReply{}, nil
	}
	return f.identifyReply, nil
}

func (f *fakeProvider) EnrichFields(_ context.Context, req reason.EnrichRequest) (*reason.EnrichReply, error) {
	f.enrichCalls++
	if f.enrichErr != nil {
		return nil, f.enrichErr
	}
	if f.enrichReply == nil {
		return &reason.EnrichReply{}, nil
	}
	return f.enrichReply, nil
}

// fakeDocs is a scriptable store.DocumentStore.
type fakeDocs struct {
	destinations []model.Destination
	listErr      error
	schemas      map[string][]model.FieldSchema
	schemaErr    error
	createInfo   *model.RecordInfo
	createErr    error
	status       model.ConnectionStatus

	listCalls   int
	schemaCalls []string
	createCalls []string
	createProps []map[string]model.FieldValue
}

func (f *fakeDocs) ListDestinations(context.Context, string) ([]model.Destination, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.destinations, nil
}

func (f *fakeDocs) FetchSchema(_ context.Context, id string) ([]model.FieldSchema, error) {
	f.schemaCalls = append(f.schemaCalls, id)
	if f.schemaErr != nil {
		return nil, f.schemaErr
	}
	return f.schemas[id], nil
}

func (f *fakeDocs) CreateRecord(_ context.Context, id string, props map[string]model.FieldValue) (*model.RecordInfo, error) {
	f.createCalls = append(f.createCalls, id)
	f.createProps = append(f.createProps, props)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createInfo != nil {
		info := *f.createInfo
		return &info, nil
	}
	return &model.RecordInfo{RecordID: "rec-" + id}, nil
}

func (f *fakeDocs) Status(context.Context) model.ConnectionStatus { return f.status }

// fakeCalendar is a scriptable store.CalendarStore.
type fakeCalendar struct {
	info      *model.EventInfo
	createErr error
	status    model.ConnectionStatus

	createCalls []store.EventRecord
}

func (f *fakeCalendar) CreateEvent(_ context.Context, event store.EventRecord) (*model.EventInfo, error) {
	f.createCalls = append(f.createCalls, event)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.info != nil {
		info := *f.info
		return &info, nil
	}
	return &model.EventInfo{Title: event.Title, EventID: "evt-1"}, nil
}

func (f *fakeCalendar) DeleteEvent(context.Context, string) error { return nil }

func (f *fakeCalendar) Status(context.Context) model.ConnectionStatus { return f.status }
