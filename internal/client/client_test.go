package client

import (
	"context"
	"encoding/json"
	"go/build"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"busmanager/internal/db"
	"busmanager/internal/db/dbtest"
	"busmanager/internal/domain"
	"busmanager/internal/gateway"
	"busmanager/internal/gateway/wire"
	"busmanager/internal/services"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLocalEntity(t *testing.T) {
	ctx := context.Background()
	g := gateway.New(services.NewFleet(dbtest.Open(t), db.DialectSQLite))
	routes := For(g, domain.EntityRoute)

	raw, err := routes.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "null", raw)

	raw, err = routes.Add(ctx, `{"ID":null,"Number":"12"}`)
	require.NoError(t, err)
	assert.Empty(t, wire.ErrorOf(raw))

	var added struct{ ID string }
	require.NoError(t, json.Unmarshal([]byte(raw), &added))

	raw, err = routes.Call(ctx, "GetDetailsById", added.ID)
	require.NoError(t, err)
	assert.Contains(t, raw, `"Number": "12"`)

	_, err = routes.Call(ctx, "Teleport")
	assert.ErrorIs(t, err, gateway.ErrUnknownProcedure)
}

func TestLocalCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := gateway.New(services.NewFleet(dbtest.Open(t), db.DialectSQLite))
	_, err := For(g, domain.EntityBus).GetAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// The remote client must build without the store: only the wire package
// of the gateway may be imported.
func TestClientImportsNoStore(t *testing.T) {
	pkg, err := build.ImportDir(".", 0)
	require.NoError(t, err)
	for _, imp := range pkg.Imports {
		switch {
		case imp == "busmanager/internal/gateway/wire":
		case strings.HasPrefix(imp, "busmanager/internal/gateway"),
			strings.HasPrefix(imp, "busmanager/internal/services"),
			strings.HasPrefix(imp, "busmanager/internal/repositories"),
			imp == "database/sql":
			t.Errorf("client imports %s", imp)
		}
	}
}

func TestHTTPCall(t *testing.T) {
	var gotPath string
	var gotBody RPCRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(`{"Response": "deleted"}`))
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL+"/", time.Second)
	defer c.Client.CloseIdleConnections()

	raw, err := For(c, domain.EntityBus).DeleteByID(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, `{"Response": "deleted"}`, raw)
	assert.Equal(t, "/api/rpc/bus/DeleteById", gotPath)
	assert.Equal(t, []string{"7"}, gotBody.Args)
}

func TestHTTPEmptyArgs(t *testing.T) {
	var raw []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte("null"))
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, time.Second)
	defer c.Client.CloseIdleConnections()

	got, err := For(c, domain.EntityStop).GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "null", got)
	assert.JSONEq(t, `{"args":[]}`, string(raw))
}

func TestHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"Error": "unknown procedure: bus.Fly"}`))
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, time.Second)
	defer c.Client.CloseIdleConnections()

	_, err := For(c, domain.EntityBus).Call(context.Background(), "Fly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown procedure")
}

func TestHTTPUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTP(url, time.Second)
	defer c.Client.CloseIdleConnections()

	_, err := For(c, domain.EntityBus).GetAll(context.Background())
	assert.Error(t, err)
}
