//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/irl-covid-dashboard/internal/adapter/archive"
	"github.com/couchcryptid/irl-covid-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/irl-covid-dashboard/internal/adapter/opendata"
	"github.com/couchcryptid/irl-covid-dashboard/internal/config"
	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
	"github.com/couchcryptid/irl-covid-dashboard/internal/ingest"
	"github.com/couchcryptid/irl-covid-dashboard/internal/observability"
	"github.com/couchcryptid/irl-covid-dashboard/internal/refresh"
)

const (
	testTopic = "test-snapshots"

	countyCSV = "CountyName,TimeStamp,ConfirmedCovidCases,PopulationCensus16\n" +
		"Carlow,2020/03/21 00:00:00+00,4,56932\n" +
		"Carlow,2020/03/22 00:00:00+00,5,56932\n"
	nationalCSV = "Date,ConfirmedCovidCases,TotalConfirmedCovidCases,TotalCovidDeaths\n" +
		"2020/03/21 00:00:00+00,102,785,3\n" +
		"2020/03/22 00:00:00+00,121,906,4\n"
)

func openDataServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/county.csv", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, countyCSV) })
	mux.HandleFunc("/national.csv", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, nationalCSV) })
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestSnapshotPublish loads a dataset from a fake open data hub and checks
// the snapshot event that lands on the topic.
func TestSnapshotPublish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	srv := openDataServer(t)
	store, err := archive.NewFileStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaSnapshotTopic: testTopic}
	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()

	writer := kafka.NewWriter(cfg, logger)
	defer writer.Close()

	loader := ingest.NewLoader(
		opendata.NewClient(5*time.Second, logger),
		store,
		ingest.Sources{CountyURL: srv.URL + "/county.csv", NationalURL: srv.URL + "/national.csv"},
		clockwork.NewRealClock(), logger, metrics,
	)
	r := refresh.New(loader, writer, clockwork.NewRealClock(), 0, logger, metrics)
	require.NoError(t, r.Init(ctx))
	ds := r.Current()
	require.NotNil(t, ds)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	defer consumer.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read snapshot")

	assert.Equal(t, ds.ID, string(msg.Key))
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "2020/03/22", headers["latest_date"])

	var event domain.SnapshotEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, 2, event.CountyRows)
	assert.Equal(t, domain.Num(906), event.TotalConfirmed)
	assert.Equal(t, domain.OriginRemote, event.Origins[domain.TableNational])

	archived, err := store.Get(ctx, domain.TableNational)
	require.NoError(t, err)
	assert.Equal(t, nationalCSV, string(archived))
}
