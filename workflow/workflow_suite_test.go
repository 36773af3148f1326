package workflow_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/airbusgeo/scene-exporter/catalog"
	"github.com/airbusgeo/scene-exporter/common"
	icatalog "github.com/airbusgeo/scene-exporter/interface/catalog"
	"github.com/airbusgeo/scene-exporter/interface/catalog/gee"
	"github.com/airbusgeo/scene-exporter/interface/earthengine"
	"github.com/airbusgeo/scene-exporter/interface/exporter"
	"github.com/airbusgeo/scene-exporter/workflow"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"google.golang.org/api/option"
)

// MokeEarthEngine serves value:compute and image:export
type MokeEarthEngine struct {
	mu         sync.Mutex
	collection string          // Result of the collection queries
	statistics string          // Result of the region statistics
	failing    map[string]bool // Export descriptions to reject with a quota error
	exports    []earthengine.ExportImageRequest
}

func (m *MokeEarthEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/value:compute"):
		req := earthengine.ComputeValueRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Expression == nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Expression.Values[req.Expression.Result].DictionaryValue != nil {
			io.WriteString(w, `{"result": `+m.statistics+`}`)
			return
		}
		io.WriteString(w, `{"result": `+m.collection+`}`)
	case strings.HasSuffix(r.URL.Path, "/image:export"):
		req := earthengine.ExportImageRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if m.failing[req.Description] {
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"error": {"code": 429, "message": "Too many tasks already in the queue", "status": "RESOURCE_EXHAUSTED"}}`)
			return
		}
		m.exports = append(m.exports, req)
		io.WriteString(w, `{"name": "projects/ibirite-gis/operations/`+req.Description+`"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// MokeNotifier implements dispatcher.Notifier
type MokeNotifier struct {
	payloads []common.ExportTaskPayload
}

// Notify implements dispatcher.Notifier
func (n *MokeNotifier) Notify(ctx context.Context, payload common.ExportTaskPayload) error {
	n.payloads = append(n.payloads, payload)
	return nil
}

var ctx context.Context
var server *httptest.Server
var earthEngine = &MokeEarthEngine{}
var notifier = &MokeNotifier{}
var wf *workflow.Workflow

var _ = BeforeSuite(func() {
	ctx = context.Background()
	server = httptest.NewServer(earthEngine)

	client, err := earthengine.NewClient(ctx, "ibirite-gis", option.WithEndpoint(server.URL+"/"), option.WithoutAuthentication())
	Expect(err).NotTo(HaveOccurred())

	c := &catalog.Catalog{Providers: []icatalog.ScenesProvider{&gee.Provider{Client: client}}}
	wf = workflow.NewWorkflow(c, &earthengine.RegionStatistics{Client: client}, &exporter.EarthEngine{Client: client}, notifier)
})

func TestWorkflow(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Workflow Suite")
}

var _ = AfterSuite(func() {
	server.Close()
})
