package ps

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickyhof/DemoDB/core"
)

const seedDocument = `{
  "shop": {
    "items": {
      "schema": [
        {"name": "id", "type": "int(11)", "null": false, "key": "PRI", "default": null, "extra": "AUTO_INCREMENT"},
        {"name": "price", "type": "decimal(10,2)", "null": false, "key": "", "default": null, "extra": ""}
      ],
      "data": [
        {"id": 1, "price": 9.5},
        {"id": 2, "price": 12, "note": null}
      ]
    }
  }
}`

func TestDetectScheme(t *testing.T) {
	tests := []struct {
		path string
		want urlScheme
	}{
		{"s3://bucket/key", schemeS3},
		{"S3://bucket/key", schemeS3},
		{"https://example.com/seed.json", schemeHTTPS},
		{"http://example.com/seed.json", schemeHTTP},
		{"file:///tmp/seed.json", schemeFile},
		{"/tmp/seed.json", schemeLocal},
		{"seed.json", schemeLocal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, detectScheme(tt.path), tt.path)
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := parseS3URL("s3://demo/seeds/server.json")
	require.NoError(t, err)
	assert.Equal(t, "demo", bucket)
	assert.Equal(t, "seeds/server.json", key)

	for _, bad := range []string{"s3://bucket", "s3://bucket/", "s3:///key"} {
		_, _, err := parseS3URL(bad)
		assert.Error(t, err, bad)
	}
}

func TestDecodeServer(t *testing.T) {
	server, err := DecodeServer(strings.NewReader(seedDocument))
	require.NoError(t, err)

	items := server["shop"]["items"]
	require.NotNil(t, items)
	assert.Equal(t, "items", items.Name)
	assert.Equal(t, 2, items.Rows)
	assert.Equal(t, core.DefaultEngine, items.Engine)
	assert.Equal(t, core.DefaultCollation, items.Collation)
	assert.Equal(t, int64(1), items.Data[0]["id"])
	assert.Equal(t, 9.5, items.Data[0]["price"])
	assert.Equal(t, int64(12), items.Data[1]["price"])
	assert.Nil(t, items.Data[1]["note"])
	assert.True(t, items.Schema[0].IsAutoIncrement())
}

func TestDecodeServerInvalid(t *testing.T) {
	_, err := DecodeServer(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestLoadSeedLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedDocument), 0644))

	for _, source := range []string{path, "file://" + path} {
		server, err := LoadSeed(context.Background(), source, nil)
		require.NoError(t, err, source)
		assert.Contains(t, server, "shop")
	}
}

func TestLoadSeedHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/seed.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, seedDocument)
	}))
	defer srv.Close()

	server, err := LoadSeed(context.Background(), srv.URL+"/seed.json", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, server["shop"]["items"].Rows)

	_, err = LoadSeed(context.Background(), srv.URL+"/missing.json", nil)
	assert.Error(t, err)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func TestExportSnapshotRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	restore := osCreate
	osCreate = func(path string) (io.WriteCloser, error) {
		return nopWriteCloser{&buf}, nil
	}
	defer func() { osCreate = restore }()

	require.NoError(t, ExportSnapshot(context.Background(), "snapshot.json", Seed(), nil))

	server, err := DecodeServer(&buf)
	require.NoError(t, err)
	assert.Equal(t, Seed(), server)
}

func TestExportSnapshotHTTPIsReadOnly(t *testing.T) {
	err := ExportSnapshot(context.Background(), "https://example.com/x.json", Seed(), nil)
	assert.Error(t, err)
}
