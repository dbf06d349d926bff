package presets_test

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/site-console/pkg/sitecontent"
	"github.com/tendant/site-console/pkg/sitecontent/presets"
)

func TestNewDevelopment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dev-data")
	svc, cleanup, err := presets.NewDevelopment(presets.WithDevStorageDir(dir))
	require.NoError(t, err)

	ctx := context.Background()
	ref, err := svc.Upload(ctx, sitecontent.File{Name: "manual.pdf", ContentType: "application/pdf", Reader: strings.NewReader("%PDF")})
	require.NoError(t, err)

	rc, _, err := svc.Download(ctx, ref)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	_, err = os.Stat(filepath.Join(dir, ref.Name()))
	require.NoError(t, err)

	cleanup()
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "storage directory should be removed by cleanup")
}

func TestNewTesting(t *testing.T) {
	svc := presets.NewTesting(t, presets.WithTestCollections(map[string]sitecontent.CollectionKind{
		"pages": sitecontent.KindContent,
	}))
	assert.Equal(t, []string{"pages"}, svc.Collections())

	doc, err := svc.CreateDocument(context.Background(), "pages",
		json.RawMessage(`{"title":"About","contents":[{"type":"title","data":"Us","order":0}]}`))
	require.NoError(t, err)

	_, err = svc.GetDocument(context.Background(), "pages", doc.ID)
	require.NoError(t, err)

	_, err = svc.ListDocuments(context.Background(), "services")
	assert.ErrorIs(t, err, sitecontent.ErrUnknownCollection)
}
