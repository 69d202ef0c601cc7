package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldbot/internal/flow"
)

type fakeMedia struct {
	data map[string][]byte
	err  map[string]error
}

func (f *fakeMedia) Fetch(_ context.Context, ref flow.PhotoRef) ([]byte, error) {
	if err, ok := f.err[ref.FileID]; ok {
		return nil, err
	}
	return f.data[ref.FileID], nil
}

type fakeSender struct {
	reports     []*Report
	attachments [][]Attachment
	err         error
}

func (f *fakeSender) Send(_ context.Context, rep *Report, atts []Attachment) error {
	f.reports = append(f.reports, rep)
	f.attachments = append(f.attachments, atts)
	return f.err
}

type fakeArchive struct {
	records []*Record
	err     error
}

func (f *fakeArchive) Save(_ context.Context, rec *Record) error {
	f.records = append(f.records, rec)
	return f.err
}

func TestDispatchSendsAndArchives(t *testing.T) {
	media := &fakeMedia{data: map[string][]byte{"a": []byte("img-a"), "b": []byte("img-b")}}
	sender := &fakeSender{}
	archive := &fakeArchive{}
	d := NewDispatcher(media, sender, archive)

	require.NoError(t, d.Dispatch(context.Background(), tankSession()))

	require.Len(t, sender.attachments, 1)
	atts := sender.attachments[0]
	require.Len(t, atts, 2)
	assert.Equal(t, "foto_1.jpg", atts[0].Filename)
	assert.Equal(t, []byte("img-a"), atts[0].Data)
	assert.Equal(t, "foto_2.jpg", atts[1].Filename)

	require.Len(t, archive.records, 1)
	rec := archive.records[0]
	assert.Equal(t, StatusSent, rec.Status)
	assert.Equal(t, int64(1), rec.ChatID)
	assert.Equal(t, string(flow.BranchTankService), rec.Branch)
	assert.Equal(t, 2, rec.PhotoCount)
	assert.Empty(t, rec.Error)
}

func TestDispatchSkipsUnfetchablePhoto(t *testing.T) {
	media := &fakeMedia{
		data: map[string][]byte{"b": []byte("img-b")},
		err:  map[string]error{"a": errors.New("file expired")},
	}
	sender := &fakeSender{}
	d := NewDispatcher(media, sender, &fakeArchive{})

	require.NoError(t, d.Dispatch(context.Background(), tankSession()))
	require.Len(t, sender.attachments, 1)
	require.Len(t, sender.attachments[0], 1)
	assert.Equal(t, []byte("img-b"), sender.attachments[0][0].Data)
}

func TestDispatchFailureIsArchivedAndReturned(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp: connection refused")}
	archive := &fakeArchive{}
	d := NewDispatcher(&fakeMedia{}, sender, archive)

	err := d.Dispatch(context.Background(), tankSession())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	require.Len(t, archive.records, 1)
	assert.Equal(t, StatusFailed, archive.records[0].Status)
	assert.Contains(t, archive.records[0].Error, "connection refused")
}

func TestDispatchWithoutArchive(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(&fakeMedia{}, sender, nil)
	require.NoError(t, d.Dispatch(context.Background(), tankSession()))
	require.Len(t, sender.reports, 1)
}

func TestArchiveFailureDoesNotMaskDelivery(t *testing.T) {
	sender := &fakeSender{}
	archive := &fakeArchive{err: errors.New("pq: relation does not exist")}
	d := NewDispatcher(&fakeMedia{}, sender, archive)
	require.NoError(t, d.Dispatch(context.Background(), tankSession()))
}
