// Package bridge is the HTTP host adapter. The platform pushes column
// snapshots into it and polls the shared variable back out; the action
// trigger goes the other way as an outbound webhook. The panel consumes the
// bridge only through the host interfaces.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/re3zy/chat-bubble-plugin/internal/host"
)

// Bridge holds the latest pushed snapshot and the shared variables. It
// implements host.Source, host.Variable (via Var) and host.Catalog.
type Bridge struct {
	log *logrus.Entry

	mu   sync.RWMutex
	snap host.Snapshot
	vars map[string]string
}

func New(log *logrus.Entry) *Bridge {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Bridge{
		log:  log,
		snap: host.Snapshot{Columns: map[string][]any{}},
		vars: map[string]string{},
	}
}

// Snapshot returns the most recently pushed snapshot. Replacement is atomic:
// a push swaps the whole column map, so readers never observe a partial one.
func (b *Bridge) Snapshot(ctx context.Context) (host.Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap, nil
}

// Columns derives column metadata from the stored snapshot.
func (b *Bridge) Columns(ctx context.Context) ([]host.Column, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cols := make([]host.Column, 0, len(b.snap.Columns))
	for id, cells := range b.snap.Columns {
		kind := "text"
		for _, cell := range cells {
			switch cell.(type) {
			case nil:
				continue
			case float64, int, int64:
				kind = "number"
			case bool:
				kind = "boolean"
			case time.Time:
				kind = "datetime"
			}
			break
		}
		cols = append(cols, host.Column{ID: id, Kind: kind})
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].ID < cols[j].ID })
	return cols, nil
}

// Var returns the named shared variable as a host.Variable handle.
func (b *Bridge) Var(name string) host.Variable {
	return bridgeVar{b: b, name: name}
}

type bridgeVar struct {
	b    *Bridge
	name string
}

func (v bridgeVar) Get(ctx context.Context) (string, error) {
	v.b.mu.RLock()
	defer v.b.mu.RUnlock()
	return v.b.vars[v.name], nil
}

func (v bridgeVar) Set(ctx context.Context, value string) error {
	v.b.mu.Lock()
	v.b.vars[v.name] = value
	v.b.mu.Unlock()
	return nil
}

type snapshotBody struct {
	Columns map[string][]any `json:"columns"`
}

type variableBody struct {
	Value string `json:"value"`
}

// Router builds the gin handler for the bridge endpoints.
func (b *Bridge) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/v1")

	v1.PUT("/snapshot", func(c *gin.Context) {
		var body snapshotBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if body.Columns == nil {
			body.Columns = map[string][]any{}
		}
		b.mu.Lock()
		b.snap = host.Snapshot{Columns: body.Columns}
		b.mu.Unlock()
		b.log.WithField("columns", len(body.Columns)).Debug("snapshot replaced")
		c.Status(http.StatusNoContent)
	})

	v1.GET("/snapshot", func(c *gin.Context) {
		b.mu.RLock()
		cols := b.snap.Columns
		b.mu.RUnlock()
		c.JSON(http.StatusOK, snapshotBody{Columns: cols})
	})

	v1.GET("/columns", func(c *gin.Context) {
		cols, _ := b.Columns(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"columns": cols})
	})

	v1.GET("/variables/:name", func(c *gin.Context) {
		val, _ := b.Var(c.Param("name")).Get(c.Request.Context())
		c.JSON(http.StatusOK, variableBody{Value: val})
	})

	v1.PUT("/variables/:name", func(c *gin.Context) {
		var body variableBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		_ = b.Var(c.Param("name")).Set(c.Request.Context(), body.Value)
		c.Status(http.StatusNoContent)
	})

	return r
}

// Serve runs the bridge HTTP server until ctx is cancelled.
func (b *Bridge) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: b.Router()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	b.log.WithField("addr", addr).Info("bridge listening")
	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

// WebhookTrigger invokes a host automation by POSTing to its URL. Any
// transport failure or non-2xx response counts as a rejection.
type WebhookTrigger struct {
	URL      string
	Variable string
	Client   *http.Client
	Log      *logrus.Entry
}

func (t WebhookTrigger) Invoke(ctx context.Context) error {
	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	payload, _ := json.Marshal(map[string]string{"variable": t.Variable})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bridge: trigger returned %s", resp.Status)
	}
	if t.Log != nil {
		t.Log.WithField("status", resp.StatusCode).Debug("trigger acknowledged")
	}
	return nil
}
