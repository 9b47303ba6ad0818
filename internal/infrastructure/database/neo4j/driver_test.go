package neo4j

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/GraphSentinel/pkg/errors"
)

// ─────────────────────────────────────────────
// Fakes for the internal driver interfaces
// ─────────────────────────────────────────────

type fakeResult struct {
	records []*neo4j.Record
	pos     int
	err     error
}

func (r *fakeResult) Next(ctx context.Context) bool {
	if r.pos < len(r.records) {
		r.pos++
		return true
	}
	return false
}
func (r *fakeResult) Record() *neo4j.Record { return r.records[r.pos-1] }
func (r *fakeResult) Err() error            { return r.err }
func (r *fakeResult) Consume(ctx context.Context) (neo4j.ResultSummary, error) {
	return nil, r.err
}

type fakeTransaction struct {
	result *fakeResult
	err    error
	cypher string
}

func (t *fakeTransaction) Run(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	t.cypher = cypher
	if t.err != nil {
		return nil, t.err
	}
	return t.result, nil
}

type fakeSession struct {
	tx       *fakeTransaction
	execErr  error
	closed   bool
	closeErr error
}

func (s *fakeSession) ExecuteRead(ctx context.Context, work func(Transaction) (any, error)) (any, error) {
	if s.execErr != nil {
		return nil, s.execErr
	}
	return work(s.tx)
}
func (s *fakeSession) ExecuteWrite(ctx context.Context, work func(Transaction) (any, error)) (any, error) {
	if s.execErr != nil {
		return nil, s.execErr
	}
	return work(s.tx)
}
func (s *fakeSession) Close(ctx context.Context) error {
	s.closed = true
	return s.closeErr
}

type fakeDriver struct {
	session       *fakeSession
	verifyErr     error
	closeErr      error
	closeCalls    int
	sessionConfig neo4j.SessionConfig
}

func (d *fakeDriver) VerifyConnectivity(ctx context.Context) error { return d.verifyErr }
func (d *fakeDriver) NewSession(ctx context.Context, config neo4j.SessionConfig) internalSession {
	d.sessionConfig = config
	return d.session
}
func (d *fakeDriver) Close(ctx context.Context) error {
	d.closeCalls++
	return d.closeErr
}

func newTestDriver(fd *fakeDriver) *Driver {
	return &Driver{
		driver: fd,
		cfg:    Config{Database: "fraud"},
		logger: logging.NewNopLogger(),
	}
}

func record(values ...any) *neo4j.Record {
	return &neo4j.Record{Values: values}
}

// ─────────────────────────────────────────────
// Driver
// ─────────────────────────────────────────────

func TestDriver_Session_UsesConfiguredDatabase(t *testing.T) {
	fd := &fakeDriver{session: &fakeSession{}}
	d := newTestDriver(fd)

	d.Session(context.Background(), neo4j.AccessModeRead)

	assert.Equal(t, "fraud", fd.sessionConfig.DatabaseName)
	assert.Equal(t, neo4j.AccessModeRead, fd.sessionConfig.AccessMode)
}

func TestDriver_Session_DefaultsDatabaseName(t *testing.T) {
	fd := &fakeDriver{session: &fakeSession{}}
	d := newTestDriver(fd)
	d.cfg.Database = ""

	d.Session(context.Background(), neo4j.AccessModeWrite)

	assert.Equal(t, "neo4j", fd.sessionConfig.DatabaseName)
}

func TestDriver_ExecuteRead_ReturnsWorkResult(t *testing.T) {
	session := &fakeSession{tx: &fakeTransaction{result: &fakeResult{}}}
	d := newTestDriver(&fakeDriver{session: session})

	result, err := d.ExecuteRead(context.Background(), func(tx Transaction) (interface{}, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.True(t, session.closed)
}

func TestDriver_ExecuteRead_WrapsFailureAsStoreUnavailable(t *testing.T) {
	session := &fakeSession{execErr: errors.New("connection reset")}
	d := newTestDriver(&fakeDriver{session: session})

	_, err := d.ExecuteRead(context.Background(), func(tx Transaction) (interface{}, error) {
		return nil, nil
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStoreUnavailable))
	assert.True(t, session.closed)
}

func TestDriver_ExecuteWrite_WrapsFailureAsDatabaseError(t *testing.T) {
	session := &fakeSession{execErr: errors.New("constraint violation")}
	d := newTestDriver(&fakeDriver{session: session})

	_, err := d.ExecuteWrite(context.Background(), func(tx Transaction) (interface{}, error) {
		return nil, nil
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDatabaseError))
}

func TestDriver_HealthCheck_Success(t *testing.T) {
	tx := &fakeTransaction{result: &fakeResult{records: []*neo4j.Record{record(int64(1))}}}
	d := newTestDriver(&fakeDriver{session: &fakeSession{tx: tx}})

	err := d.HealthCheck(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "RETURN 1 AS health", tx.cypher)
}

func TestDriver_HealthCheck_ConnectivityFailure(t *testing.T) {
	d := newTestDriver(&fakeDriver{verifyErr: errors.New("refused")})

	err := d.HealthCheck(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeStoreUnavailable))
}

func TestDriver_Close_OnlyOnce(t *testing.T) {
	fd := &fakeDriver{}
	d := newTestDriver(fd)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	assert.Equal(t, 1, fd.closeCalls)
}

// ─────────────────────────────────────────────
// Record helpers
// ─────────────────────────────────────────────

func TestExtractSingleRecord_Found(t *testing.T) {
	result := &fakeResult{records: []*neo4j.Record{record("ACME-001")}}

	id, err := ExtractSingleRecord(context.Background(), result, func(r *neo4j.Record) (string, error) {
		return r.Values[0].(string), nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ACME-001", id)
}

func TestExtractSingleRecord_Empty(t *testing.T) {
	result := &fakeResult{}

	_, err := ExtractSingleRecord(context.Background(), result, func(r *neo4j.Record) (string, error) {
		return "", nil
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestExtractSingleRecord_ResultError(t *testing.T) {
	underlying := errors.New("cursor invalidated")
	result := &fakeResult{err: underlying}

	_, err := ExtractSingleRecord(context.Background(), result, func(r *neo4j.Record) (string, error) {
		return "", nil
	})

	assert.ErrorIs(t, err, underlying)
}

func TestCollectRecords_MapsAll(t *testing.T) {
	result := &fakeResult{records: []*neo4j.Record{
		record("A"), record("B"), record("C"),
	}}

	items, err := CollectRecords(context.Background(), result, func(r *neo4j.Record) (string, error) {
		return r.Values[0].(string), nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, items)
}

func TestCollectRecords_MapperErrorStops(t *testing.T) {
	result := &fakeResult{records: []*neo4j.Record{record("A"), record("B")}}
	boom := errors.New("bad record")

	_, err := CollectRecords(context.Background(), result, func(r *neo4j.Record) (string, error) {
		return "", boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestCollectRecords_Empty(t *testing.T) {
	result := &fakeResult{}

	items, err := CollectRecords(context.Background(), result, func(r *neo4j.Record) (string, error) {
		return r.Values[0].(string), nil
	})

	require.NoError(t, err)
	assert.Empty(t, items)
}
